package handler

import (
	"strings"

	"ballot/internal/registration/models"
	"ballot/internal/registration/service"
	dErrors "ballot/pkg/domain-errors"
)

// CreateEventRequest is the HTTP request body for POST /events.
type CreateEventRequest struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	Location            string `json:"location"`
	StartTime           string `json:"start_time"`
	RegistrationStart   string `json:"registration_start"`
	RegistrationEnd     string `json:"registration_end"`
	PosterURL           string `json:"poster_url"`
	LotteryCriteria     string `json:"lottery_criteria"`
	WaitlistLimit       *int   `json:"waitlist_limit"`
	RequiresGeolocation bool   `json:"requires_geolocation"`
	OrganizerDeviceID   string `json:"organizer_device_id"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// Date formats are checked downstream where they are parsed.
func (r *CreateEventRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "name is required")
	}
	r.OrganizerDeviceID = strings.TrimSpace(r.OrganizerDeviceID)
	if r.OrganizerDeviceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "organizer_device_id is required")
	}
	if r.WaitlistLimit != nil && *r.WaitlistLimit <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "waitlist_limit must be positive")
	}
	return nil
}

// Params converts the validated request to service parameters.
func (r *CreateEventRequest) Params() service.CreateEventParams {
	return service.CreateEventParams{
		Name:                r.Name,
		Description:         r.Description,
		Location:            r.Location,
		StartTime:           r.StartTime,
		RegistrationStart:   r.RegistrationStart,
		RegistrationEnd:     r.RegistrationEnd,
		PosterURL:           r.PosterURL,
		LotteryCriteria:     r.LotteryCriteria,
		WaitlistLimit:       r.WaitlistLimit,
		RequiresGeolocation: r.RequiresGeolocation,
		OrganizerDeviceID:   r.OrganizerDeviceID,
	}
}

// JoinWaitlistRequest is the HTTP request body for POST /events/{id}/waitlist.
type JoinWaitlistRequest struct {
	DeviceID string `json:"device_id"`
}

func (r *JoinWaitlistRequest) Validate() error {
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	if r.DeviceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "device_id is required")
	}
	return nil
}

// DrawRequest is the HTTP request body for POST /events/{id}/draw.
type DrawRequest struct {
	SampleSize int `json:"sample_size"`
}

func (r *DrawRequest) Validate() error {
	if r.SampleSize <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "sample_size must be positive")
	}
	return nil
}

// RegisterUserRequest is the HTTP request body for POST /users.
type RegisterUserRequest struct {
	DeviceID           string `json:"device_id"`
	UserType           string `json:"user_type"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	PhoneNumber        string `json:"phone_number"`
	UseGeolocation     bool   `json:"use_geolocation"`
	WantsNotifications *bool  `json:"wants_notifications"`
}

func (r *RegisterUserRequest) Validate() error {
	switch models.UserType(r.UserType) {
	case models.UserTypeEntrant, models.UserTypeOrganizer, models.UserTypeAdministrator:
		return nil
	default:
		return dErrors.New(dErrors.CodeBadRequest, "user_type must be ENTRANT, ORGANIZER, or ADMINISTRATOR")
	}
}

// User converts the validated request to the domain user.
func (r *RegisterUserRequest) User() models.User {
	return models.User{
		DeviceID:           strings.TrimSpace(r.DeviceID),
		Type:               models.UserType(r.UserType),
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Email:              r.Email,
		PhoneNumber:        r.PhoneNumber,
		UseGeolocation:     r.UseGeolocation,
		WantsNotifications: r.WantsNotifications,
	}
}

// CreateNotificationRequest is the HTTP request body for POST /notifications.
type CreateNotificationRequest struct {
	SenderDeviceID   string `json:"sender_device_id"`
	ReceiverDeviceID string `json:"receiver_device_id"`
	Header           string `json:"header"`
	Body             string `json:"body"`
	EventID          *int64 `json:"event_id"`
}

func (r *CreateNotificationRequest) Validate() error {
	r.ReceiverDeviceID = strings.TrimSpace(r.ReceiverDeviceID)
	if r.ReceiverDeviceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "receiver_device_id is required")
	}
	if strings.TrimSpace(r.Header) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "header is required")
	}
	return nil
}

// Params converts the validated request to service parameters.
func (r *CreateNotificationRequest) Params() service.CreateNotificationParams {
	return service.CreateNotificationParams{
		SenderDeviceID:   r.SenderDeviceID,
		ReceiverDeviceID: r.ReceiverDeviceID,
		Header:           r.Header,
		Body:             r.Body,
		EventID:          r.EventID,
	}
}
