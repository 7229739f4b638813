package service

import (
	"context"

	"ballot/internal/registration/models"
	"ballot/internal/sequence"
	dErrors "ballot/pkg/domain-errors"
)

// CreateNotificationParams carries the fields of a new notification.
type CreateNotificationParams struct {
	SenderDeviceID   string
	ReceiverDeviceID string
	Header           string
	Body             string
	EventID          *int64
}

// CreateNotification allocates a notification ID and persists the record.
// Notifications are immutable after creation except for the dismissed flag.
func (s *Service) CreateNotification(ctx context.Context, p CreateNotificationParams) (*models.Notification, error) {
	if p.ReceiverDeviceID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "receiver device ID is required")
	}
	if p.Header == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "notification header is required")
	}

	id, err := sequence.NextNotificationID(ctx, s.allocator)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAllocationFailed, "could not allocate notification ID")
	}

	n := &models.Notification{
		ID:               id,
		SenderDeviceID:   p.SenderDeviceID,
		ReceiverDeviceID: p.ReceiverDeviceID,
		Header:           p.Header,
		Body:             p.Body,
		EventID:          p.EventID,
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return nil, translate(err, "notification")
	}
	if s.metrics != nil {
		s.metrics.IDsAllocated.WithLabelValues(sequence.FieldNotification).Inc()
	}
	return n, nil
}

// GetNotification returns one notification by ID.
func (s *Service) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	n, err := s.notifications.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "notification")
	}
	return n, nil
}

// DismissNotification marks the notification dismissed for its owner.
func (s *Service) DismissNotification(ctx context.Context, id int64) error {
	n, err := s.notifications.Get(ctx, id)
	if err != nil {
		return translate(err, "notification")
	}
	if n.Dismissed {
		return nil
	}
	n.Dismissed = true
	if err := s.notifications.Put(ctx, n); err != nil {
		return translate(err, "notification")
	}
	return nil
}

// NotificationsForUser lists notifications addressed to the given device.
func (s *Service) NotificationsForUser(ctx context.Context, deviceID string) ([]models.Notification, error) {
	if deviceID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "device ID required")
	}
	ns, err := s.notifications.ForReceiver(ctx, deviceID)
	if err != nil {
		return nil, translate(err, "notifications")
	}
	return ns, nil
}

// ListNotifications returns every notification. Admin surface.
func (s *Service) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	ns, err := s.notifications.All(ctx)
	if err != nil {
		return nil, translate(err, "notifications")
	}
	return ns, nil
}

// DeleteNotification removes one notification (admin action).
func (s *Service) DeleteNotification(ctx context.Context, id int64) error {
	if _, err := s.notifications.Get(ctx, id); err != nil {
		return translate(err, "notification")
	}
	if err := s.notifications.Delete(ctx, id); err != nil {
		return translate(err, "notification")
	}
	return nil
}
