// Package audit records registration lifecycle events. Publishing is
// fire-and-forget from the caller's point of view: a failed publish is
// logged, never surfaced as an operation failure.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Lifecycle actions emitted by the registration service.
const (
	ActionEntrantJoined    = "entrant_joined"
	ActionEntrantLeft      = "entrant_left"
	ActionDrawCompleted    = "draw_completed"
	ActionInviteAccepted   = "invite_accepted"
	ActionInviteDeclined   = "invite_declined"
	ActionInviteCancelled  = "invite_cancelled"
	ActionEventCreated     = "event_created"
	ActionEventDeleted     = "event_deleted"
	ActionUserDeleted      = "user_deleted"
	ActionOrganizerCascade = "organizer_cascade_deleted"
)

// Event is one audit record.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	DeviceID  string         `json:"deviceID,omitempty"`
	EventID   int64          `json:"eventID,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Publisher delivers audit events to the audit stream.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Emit builds and publishes an audit event, logging instead of failing when
// the publisher is unavailable or errors out.
func Emit(ctx context.Context, logger *slog.Logger, pub Publisher, action string, ev Event) {
	ev.ID = uuid.NewString()
	ev.Action = action
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if pub == nil {
		pub = NopPublisher{}
	}
	if err := pub.Publish(ctx, ev); err != nil && logger != nil {
		logger.WarnContext(ctx, "audit publish failed",
			"action", action,
			"error", err,
		)
	}
}
