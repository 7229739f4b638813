package service

import (
	"context"
	"strings"

	"ballot/internal/registration/models"
	"ballot/internal/sequence"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/audit"
)

// CreateEventParams carries the organizer-supplied event fields. The ID is
// never caller-chosen; it comes from the sequence allocator.
type CreateEventParams struct {
	Name                string
	Description         string
	Location            string
	StartTime           string
	RegistrationStart   string
	RegistrationEnd     string
	PosterURL           string
	LotteryCriteria     string
	WaitlistLimit       *int
	RequiresGeolocation bool
	OrganizerDeviceID   string
}

// CreateEvent allocates a fresh event ID and persists the new event.
func (s *Service) CreateEvent(ctx context.Context, p CreateEventParams) (*models.Event, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "event name is required")
	}
	if p.OrganizerDeviceID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "organizer device ID is required")
	}
	if p.WaitlistLimit != nil && *p.WaitlistLimit <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "waitlist limit must be positive")
	}

	event := &models.Event{
		Name:                p.Name,
		Description:         p.Description,
		Location:            p.Location,
		PosterURL:           p.PosterURL,
		LotteryCriteria:     p.LotteryCriteria,
		WaitlistLimit:       p.WaitlistLimit,
		RequiresGeolocation: p.RequiresGeolocation,
		OrganizerDeviceID:   p.OrganizerDeviceID,
		Waitlisted:          []models.WaitlistEntry{},
		Invited:             []string{},
		Accepted:            []string{},
		Declined:            []string{},
	}

	// Dates arrive as bare calendar days; the close bound covers its whole day.
	var err error
	if p.StartTime != "" {
		if event.StartTime, err = models.ParseDayStart(p.StartTime); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid start time")
		}
	}
	if p.RegistrationStart != "" {
		if event.RegistrationStart, err = models.ParseDayStart(p.RegistrationStart); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid registration start")
		}
	}
	if p.RegistrationEnd != "" {
		if event.RegistrationEnd, err = models.ParseDayEnd(p.RegistrationEnd); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid registration end")
		}
	}

	id, err := sequence.NextEventID(ctx, s.allocator)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAllocationFailed, "could not allocate event ID")
	}
	event.ID = id

	if err := s.events.Put(ctx, event); err != nil {
		return nil, translate(err, "event")
	}

	if s.metrics != nil {
		s.metrics.IDsAllocated.WithLabelValues(sequence.FieldEvent).Inc()
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionEventCreated, audit.Event{
		EventID:  event.ID,
		DeviceID: p.OrganizerDeviceID,
	})
	return event, nil
}

// GetEvent returns one event by ID.
func (s *Service) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, translate(err, "event")
	}
	return event, nil
}

// ListEvents returns every event. Admin surface.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.All(ctx)
	if err != nil {
		return nil, translate(err, "events")
	}
	return events, nil
}

// EventsByOrganizer returns the events owned by one organizer.
func (s *Service) EventsByOrganizer(ctx context.Context, organizerDeviceID string) ([]models.Event, error) {
	if organizerDeviceID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "organizer device ID is required")
	}
	events, err := s.events.ByOrganizer(ctx, organizerDeviceID)
	if err != nil {
		return nil, translate(err, "events")
	}
	return events, nil
}

// DeleteEvent removes one event directly (admin action). Related
// notifications are intentionally left in place; they serve as a record of
// what was sent.
func (s *Service) DeleteEvent(ctx context.Context, eventID int64) error {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return translate(err, "event")
	}
	if err := s.events.Delete(ctx, eventID); err != nil {
		return translate(err, "event")
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionEventDeleted, audit.Event{EventID: eventID})
	return nil
}
