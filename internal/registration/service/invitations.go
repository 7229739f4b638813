package service

import (
	"context"

	"ballot/internal/registration/models"
	"ballot/pkg/platform/audit"
)

// AcceptInvite confirms an open invitation.
func (s *Service) AcceptInvite(ctx context.Context, eventID int64, deviceID string) error {
	err := s.events.Mutate(ctx, eventID, func(event *models.Event) error {
		return event.Accept(deviceID)
	})
	if err != nil {
		return translate(err, "event")
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionInviteAccepted, audit.Event{
		EventID:  eventID,
		DeviceID: deviceID,
	})
	return nil
}

// DeclineInvite refuses an open invitation, leaving the entrant declined and
// the slot open for a redraw.
func (s *Service) DeclineInvite(ctx context.Context, eventID int64, deviceID string) error {
	err := s.events.Mutate(ctx, eventID, func(event *models.Event) error {
		return event.Decline(deviceID)
	})
	if err != nil {
		return translate(err, "event")
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionInviteDeclined, audit.Event{
		EventID:  eventID,
		DeviceID: deviceID,
	})
	return nil
}

// CancelInvite is the organizer-initiated removal of an invited or accepted
// entrant.
func (s *Service) CancelInvite(ctx context.Context, eventID int64, deviceID string) error {
	err := s.events.Mutate(ctx, eventID, func(event *models.Event) error {
		return event.Cancel(deviceID)
	})
	if err != nil {
		return translate(err, "event")
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionInviteCancelled, audit.Event{
		EventID:  eventID,
		DeviceID: deviceID,
	})
	return nil
}
