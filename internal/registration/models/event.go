// Package models defines the registration domain: events with their entrant
// membership collections, the entrant status state machine, users, and
// notifications.
package models

import (
	"time"

	dErrors "ballot/pkg/domain-errors"
)

// Status is an entrant's relationship to one event.
type Status string

const (
	StatusNone       Status = "NONE"
	StatusWaitlisted Status = "WAITLISTED"
	StatusInvited    Status = "INVITED"
	StatusAccepted   Status = "ACCEPTED"
	StatusDeclined   Status = "DECLINED"
)

// Distinct transition failures. Each carries its own code so callers can
// report the exact reason, not a generic conflict.
var (
	ErrAlreadyOnWaitlist      = dErrors.New(dErrors.CodeConflict, "entrant already on waitlist")
	ErrAlreadyInvited         = dErrors.New(dErrors.CodeConflict, "entrant already invited")
	ErrAlreadyAccepted        = dErrors.New(dErrors.CodeConflict, "entrant already accepted")
	ErrAlreadyDeclined        = dErrors.New(dErrors.CodeConflict, "entrant already declined")
	ErrNotOnWaitlist          = dErrors.New(dErrors.CodeConflict, "entrant not on waitlist")
	ErrNotInvited             = dErrors.New(dErrors.CodeConflict, "entrant not invited")
	ErrRegistrationNotStarted = dErrors.New(dErrors.CodeWindowNotOpen, "registration has not started")
	ErrRegistrationClosed     = dErrors.New(dErrors.CodeWindowClosed, "registration has closed")
	ErrWaitlistFull           = dErrors.New(dErrors.CodeCapacityExceeded, "waitlist is full")
)

// WaitlistEntry binds one entrant to the moment they joined. Ordering of
// entries records join order for fairness audits; it does not bias draws.
type WaitlistEntry struct {
	DeviceID string    `json:"deviceID"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Event is the persisted event document. An entrant's device ID appears in at
// most one of waitlisted, invited, and accepted at any time; declined records
// the terminal outcome of an invitation round.
type Event struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	Location            string          `json:"location"`
	StartTime           time.Time       `json:"startTime"`
	RegistrationStart   time.Time       `json:"registrationStartTime"`
	RegistrationEnd     time.Time       `json:"registrationEndTime"`
	PosterURL           string          `json:"posterURL,omitempty"`
	LotteryCriteria     string          `json:"lotteryCriteria,omitempty"`
	WaitlistLimit       *int            `json:"waitlistLimit,omitempty"`
	RequiresGeolocation bool            `json:"requiresGeolocation"`
	OrganizerDeviceID   string          `json:"organizerDeviceID"`
	Waitlisted          []WaitlistEntry `json:"waitlisted"`
	Invited             []string        `json:"invited"`
	Accepted            []string        `json:"accepted"`
	Declined            []string        `json:"declined"`
}

// StatusOf resolves the entrant's status by scanning the collections in
// priority order ACCEPTED > INVITED > WAITLISTED > DECLINED. The fixed order
// collapses any transient overlap left by concurrent writers into one
// deterministic answer.
func (e *Event) StatusOf(deviceID string) Status {
	if deviceID == "" {
		return StatusNone
	}
	if contains(e.Accepted, deviceID) {
		return StatusAccepted
	}
	if contains(e.Invited, deviceID) {
		return StatusInvited
	}
	if e.onWaitlist(deviceID) {
		return StatusWaitlisted
	}
	if contains(e.Declined, deviceID) {
		return StatusDeclined
	}
	return StatusNone
}

// Full reports whether the waitlist has reached its configured limit. A nil
// limit means unlimited.
func (e *Event) Full() bool {
	return e.WaitlistLimit != nil && len(e.Waitlisted) >= *e.WaitlistLimit
}

// JoinWaitlist appends the entrant at the given time after enforcing the
// state, window, and capacity gates. On failure the event is unchanged.
func (e *Event) JoinWaitlist(deviceID string, now time.Time) error {
	if deviceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "device ID required")
	}
	if contains(e.Invited, deviceID) {
		return ErrAlreadyInvited
	}
	if contains(e.Accepted, deviceID) {
		return ErrAlreadyAccepted
	}
	if contains(e.Declined, deviceID) {
		return ErrAlreadyDeclined
	}
	if e.onWaitlist(deviceID) {
		return ErrAlreadyOnWaitlist
	}

	switch e.RegistrationWindow(now) {
	case WindowNotYetOpen:
		return ErrRegistrationNotStarted
	case WindowClosed:
		return ErrRegistrationClosed
	}

	if e.Full() {
		return ErrWaitlistFull
	}

	e.Waitlisted = append(e.Waitlisted, WaitlistEntry{DeviceID: deviceID, JoinedAt: now})
	return nil
}

// LeaveWaitlist removes the entrant's waitlist entry.
func (e *Event) LeaveWaitlist(deviceID string) error {
	if deviceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "device ID required")
	}
	if !e.onWaitlist(deviceID) {
		return ErrNotOnWaitlist
	}
	e.Waitlisted = removeEntry(e.Waitlisted, deviceID)
	return nil
}

// Invite moves a waitlisted entrant to invited. Called only by the draw.
func (e *Event) Invite(deviceID string) error {
	if !e.onWaitlist(deviceID) {
		return ErrNotOnWaitlist
	}
	e.Waitlisted = removeEntry(e.Waitlisted, deviceID)
	e.Invited = appendUnique(e.Invited, deviceID)
	return nil
}

// Accept confirms an open invitation.
func (e *Event) Accept(deviceID string) error {
	if !contains(e.Invited, deviceID) {
		return ErrNotInvited
	}
	e.Invited = remove(e.Invited, deviceID)
	e.Accepted = appendUnique(e.Accepted, deviceID)
	return nil
}

// Decline refuses an open invitation, freeing the slot for a redraw.
func (e *Event) Decline(deviceID string) error {
	if !contains(e.Invited, deviceID) {
		return ErrNotInvited
	}
	e.Invited = remove(e.Invited, deviceID)
	e.Declined = appendUnique(e.Declined, deviceID)
	return nil
}

// Cancel is the organizer-initiated removal of an invited or accepted
// entrant; both land in declined so the next draw can backfill.
func (e *Event) Cancel(deviceID string) error {
	switch {
	case contains(e.Invited, deviceID):
		e.Invited = remove(e.Invited, deviceID)
	case contains(e.Accepted, deviceID):
		e.Accepted = remove(e.Accepted, deviceID)
	default:
		return ErrNotInvited
	}
	e.Declined = appendUnique(e.Declined, deviceID)
	return nil
}

func (e *Event) onWaitlist(deviceID string) bool {
	for _, entry := range e.Waitlisted {
		if entry.DeviceID == deviceID {
			return true
		}
	}
	return false
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func appendUnique(ids []string, id string) []string {
	if contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeEntry(entries []WaitlistEntry, deviceID string) []WaitlistEntry {
	out := entries[:0]
	for _, entry := range entries {
		if entry.DeviceID != deviceID {
			out = append(out, entry)
		}
	}
	return out
}
