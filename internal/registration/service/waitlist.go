package service

import (
	"context"

	"ballot/internal/registration/models"
	"ballot/pkg/platform/audit"
)

// JoinWaitlist adds the entrant to the event's waitlist. The transition runs
// inside a store transaction so concurrent joins cannot lose each other's
// writes; the window and capacity gates are re-checked against the fresh
// read. The capacity check remains advisory across racing processes outside
// the transaction path, so callers needing strict enforcement should re-check
// after the fact.
func (s *Service) JoinWaitlist(ctx context.Context, eventID int64, deviceID string) error {
	err := s.events.Mutate(ctx, eventID, func(event *models.Event) error {
		return event.JoinWaitlist(deviceID, s.clock())
	})
	if err != nil {
		return translate(err, "event")
	}

	if s.metrics != nil {
		s.metrics.WaitlistJoins.Inc()
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionEntrantJoined, audit.Event{
		EventID:  eventID,
		DeviceID: deviceID,
	})
	return nil
}

// LeaveWaitlist removes the entrant's waitlist entry, also transactionally.
func (s *Service) LeaveWaitlist(ctx context.Context, eventID int64, deviceID string) error {
	err := s.events.Mutate(ctx, eventID, func(event *models.Event) error {
		return event.LeaveWaitlist(deviceID)
	})
	if err != nil {
		return translate(err, "event")
	}

	if s.metrics != nil {
		s.metrics.WaitlistLeaves.Inc()
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionEntrantLeft, audit.Event{
		EventID:  eventID,
		DeviceID: deviceID,
	})
	return nil
}

// EntrantStatus reports the entrant's current relationship to the event.
func (s *Service) EntrantStatus(ctx context.Context, eventID int64, deviceID string) (models.Status, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return models.StatusNone, translate(err, "event")
	}
	return event.StatusOf(deviceID), nil
}
