package service

import (
	"context"

	"ballot/internal/registration/models"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/audit"
)

// ErrEmptyWaitlist rejects draws against events nobody has joined.
var ErrEmptyWaitlist = dErrors.New(dErrors.CodeConflict, "waitlist is empty")

// DrawResult reports how one draw partitioned the waitlist.
type DrawResult struct {
	Selected  []models.WaitlistEntry
	Remaining []models.WaitlistEntry
}

// Draw partitions the event's waitlist into invited and remaining entrants.
// The whole waitlist is shuffled once, so every entrant has equal selection
// probability regardless of join order, then the first min(sampleSize, len)
// entries are invited. All invites land in a single event write: if that
// write fails nothing is applied and the caller must redo the whole draw, not
// replay the partition.
//
// Draws on the same event are not serialized against other writers; an
// organizer racing their own draw can double-invite.
func (s *Service) Draw(ctx context.Context, eventID int64, sampleSize int) (*DrawResult, error) {
	if sampleSize <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "sample size must be positive")
	}
	start := s.clock()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, translate(err, "event")
	}
	if len(event.Waitlisted) == 0 {
		return nil, ErrEmptyWaitlist
	}

	shuffled := append([]models.WaitlistEntry(nil), event.Waitlisted...)
	s.shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := sampleSize
	if n > len(shuffled) {
		n = len(shuffled)
	}
	result := &DrawResult{
		Selected:  append([]models.WaitlistEntry(nil), shuffled[:n]...),
		Remaining: append([]models.WaitlistEntry(nil), shuffled[n:]...),
	}

	for _, entry := range result.Selected {
		if err := event.Invite(entry.DeviceID); err != nil {
			return nil, translate(err, "event")
		}
	}
	if err := s.events.Put(ctx, event); err != nil {
		return nil, translate(err, "event")
	}

	s.notifyDrawOutcome(ctx, event, result)

	if s.metrics != nil {
		s.metrics.ObserveDraw(start, len(result.Selected))
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionDrawCompleted, audit.Event{
		EventID:  eventID,
		DeviceID: event.OrganizerDeviceID,
		Detail: map[string]any{
			"selected":  len(result.Selected),
			"remaining": len(result.Remaining),
		},
	})
	return result, nil
}

// notifyDrawOutcome creates notifications for both partitions. The draw is
// already committed at this point, so notification failures are logged and
// swallowed rather than unwinding the draw.
func (s *Service) notifyDrawOutcome(ctx context.Context, event *models.Event, result *DrawResult) {
	for _, entry := range result.Selected {
		s.createDrawNotification(ctx, event, entry.DeviceID,
			"You've been selected",
			"You won the lottery for "+event.Name+". Accept or decline your invitation.",
		)
	}
	for _, entry := range result.Remaining {
		s.createDrawNotification(ctx, event, entry.DeviceID,
			"Not selected this round",
			"You were not drawn for "+event.Name+" this time. You remain on the waitlist.",
		)
	}
}

func (s *Service) createDrawNotification(ctx context.Context, event *models.Event, receiver, header, body string) {
	_, err := s.CreateNotification(ctx, CreateNotificationParams{
		SenderDeviceID:   event.OrganizerDeviceID,
		ReceiverDeviceID: receiver,
		Header:           header,
		Body:             body,
		EventID:          &event.ID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "draw notification failed",
			"event_id", event.ID,
			"receiver", receiver,
			"error", err,
		)
	}
}
