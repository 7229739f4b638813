package handler

import (
	"time"

	"ballot/internal/registration/models"
	"ballot/internal/registration/service"
)

// EventResponse is the HTTP shape of an event.
type EventResponse struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Description         string     `json:"description,omitempty"`
	Location            string     `json:"location,omitempty"`
	StartTime           *time.Time `json:"start_time,omitempty"`
	RegistrationStart   *time.Time `json:"registration_start,omitempty"`
	RegistrationEnd     *time.Time `json:"registration_end,omitempty"`
	PosterURL           string     `json:"poster_url,omitempty"`
	LotteryCriteria     string     `json:"lottery_criteria,omitempty"`
	WaitlistLimit       *int       `json:"waitlist_limit,omitempty"`
	RequiresGeolocation bool       `json:"requires_geolocation"`
	OrganizerDeviceID   string     `json:"organizer_device_id"`
	QRPayload           string     `json:"qr_payload"`

	Waitlisted []WaitlistEntryResponse `json:"waitlisted"`
	Invited    []string                `json:"invited"`
	Accepted   []string                `json:"accepted"`
	Declined   []string                `json:"declined"`
}

// WaitlistEntryResponse is one waitlist membership with its join time.
type WaitlistEntryResponse struct {
	DeviceID string    `json:"device_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// FromEvent converts a domain event to its HTTP shape. Zero times render as
// absent rather than as the epoch.
func FromEvent(event *models.Event) *EventResponse {
	resp := &EventResponse{
		ID:                  event.ID,
		Name:                event.Name,
		Description:         event.Description,
		Location:            event.Location,
		PosterURL:           event.PosterURL,
		LotteryCriteria:     event.LotteryCriteria,
		WaitlistLimit:       event.WaitlistLimit,
		RequiresGeolocation: event.RequiresGeolocation,
		OrganizerDeviceID:   event.OrganizerDeviceID,
		QRPayload:           models.EncodeEventRef(event.ID),
		Waitlisted:          fromEntries(event.Waitlisted),
		Invited:             orEmpty(event.Invited),
		Accepted:            orEmpty(event.Accepted),
		Declined:            orEmpty(event.Declined),
	}
	if !event.StartTime.IsZero() {
		resp.StartTime = &event.StartTime
	}
	if !event.RegistrationStart.IsZero() {
		resp.RegistrationStart = &event.RegistrationStart
	}
	if !event.RegistrationEnd.IsZero() {
		resp.RegistrationEnd = &event.RegistrationEnd
	}
	return resp
}

// FromEvents converts a slice of domain events.
func FromEvents(events []models.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for i := range events {
		out = append(out, FromEvent(&events[i]))
	}
	return out
}

func fromEntries(entries []models.WaitlistEntry) []WaitlistEntryResponse {
	out := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, WaitlistEntryResponse{DeviceID: entry.DeviceID, JoinedAt: entry.JoinedAt})
	}
	return out
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// DrawResponse reports the outcome of one lottery draw.
type DrawResponse struct {
	Selected  []WaitlistEntryResponse `json:"selected"`
	Remaining []WaitlistEntryResponse `json:"remaining"`
}

// FromDrawResult converts a draw result to its HTTP shape.
func FromDrawResult(result *service.DrawResult) *DrawResponse {
	return &DrawResponse{
		Selected:  fromEntries(result.Selected),
		Remaining: fromEntries(result.Remaining),
	}
}

// StatusResponse reports one entrant's standing on one event.
type StatusResponse struct {
	EventID  int64  `json:"event_id"`
	DeviceID string `json:"device_id"`
	Status   string `json:"status"`
}

// UserResponse is the HTTP shape of a user profile.
type UserResponse struct {
	DeviceID           string `json:"device_id"`
	UserType           string `json:"user_type"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	Email              string `json:"email,omitempty"`
	PhoneNumber        string `json:"phone_number,omitempty"`
	UseGeolocation     bool   `json:"use_geolocation,omitempty"`
	WantsNotifications *bool  `json:"wants_notifications,omitempty"`
}

// FromUser converts a domain user to its HTTP shape.
func FromUser(user models.User) *UserResponse {
	return &UserResponse{
		DeviceID:           user.DeviceID,
		UserType:           string(user.Type),
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Email:              user.Email,
		PhoneNumber:        user.PhoneNumber,
		UseGeolocation:     user.UseGeolocation,
		WantsNotifications: user.WantsNotifications,
	}
}

// FromUsers converts a slice of domain users.
func FromUsers(users []models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, FromUser(user))
	}
	return out
}

// NotificationResponse is the HTTP shape of a notification.
type NotificationResponse struct {
	ID               int64  `json:"id"`
	SenderDeviceID   string `json:"sender_device_id,omitempty"`
	ReceiverDeviceID string `json:"receiver_device_id"`
	Header           string `json:"header"`
	Body             string `json:"body,omitempty"`
	EventID          *int64 `json:"event_id,omitempty"`
	Dismissed        bool   `json:"dismissed"`
}

// FromNotification converts a domain notification to its HTTP shape.
func FromNotification(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:               n.ID,
		SenderDeviceID:   n.SenderDeviceID,
		ReceiverDeviceID: n.ReceiverDeviceID,
		Header:           n.Header,
		Body:             n.Body,
		EventID:          n.EventID,
		Dismissed:        n.Dismissed,
	}
}

// FromNotifications converts a slice of domain notifications.
func FromNotifications(ns []models.Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(ns))
	for i := range ns {
		out = append(out, FromNotification(&ns[i]))
	}
	return out
}
