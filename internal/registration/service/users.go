package service

import (
	"context"

	"github.com/google/uuid"

	"ballot/internal/registration/models"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/audit"
)

// RegisterUser persists a user profile. A missing device ID gets a freshly
// minted one, mirroring first-launch device registration.
func (s *Service) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	switch user.Type {
	case models.UserTypeEntrant, models.UserTypeOrganizer, models.UserTypeAdministrator:
	default:
		return models.User{}, dErrors.New(dErrors.CodeBadRequest, "unknown user type")
	}
	if user.DeviceID == "" {
		user.DeviceID = uuid.NewString()
	}
	if user.Type == models.UserTypeEntrant && user.WantsNotifications == nil {
		wants := true
		user.WantsNotifications = &wants
	}
	if err := s.users.Put(ctx, user); err != nil {
		return models.User{}, translate(err, "user")
	}
	return user, nil
}

// GetUser returns one user by device ID, decoded through the union.
func (s *Service) GetUser(ctx context.Context, deviceID string) (models.User, error) {
	user, err := s.users.Get(ctx, deviceID)
	if err != nil {
		return models.User{}, translate(err, "user")
	}
	return user, nil
}

// ListUsers returns every profile. Admin surface.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, translate(err, "users")
	}
	return users, nil
}

// DeleteUser removes a profile. For organizers, every owned event is
// batch-deleted first in one all-or-nothing commit; the profile is deleted
// only after that commit succeeds, so a deleted organizer can never leave
// orphaned events behind. A failed batch leaves both the events and the
// profile in place for retry. Notifications sent or received by the user are
// not cascaded.
func (s *Service) DeleteUser(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "device ID required")
	}

	user, err := s.users.Get(ctx, deviceID)
	if err != nil {
		return translate(err, "user")
	}

	if user.IsOrganizer() {
		owned, err := s.events.ByOrganizer(ctx, deviceID)
		if err != nil {
			return translate(err, "events")
		}
		if len(owned) > 0 {
			ids := make([]int64, 0, len(owned))
			for _, event := range owned {
				ids = append(ids, event.ID)
			}
			if err := s.events.BatchDelete(ctx, ids); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "cascade delete of owned events failed")
			}
			if s.metrics != nil {
				s.metrics.CascadeDeletes.Inc()
			}
			audit.Emit(ctx, s.logger, s.auditor, audit.ActionOrganizerCascade, audit.Event{
				DeviceID: deviceID,
				Detail:   map[string]any{"events_deleted": len(ids)},
			})
		}
	}

	if err := s.users.Delete(ctx, deviceID); err != nil {
		return translate(err, "user")
	}
	audit.Emit(ctx, s.logger, s.auditor, audit.ActionUserDeleted, audit.Event{DeviceID: deviceID})
	return nil
}
