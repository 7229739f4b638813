package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ballot/internal/docstore"
	"ballot/internal/platform/config"
	"ballot/internal/registration/models"
	"ballot/internal/registration/store"
	"ballot/internal/sequence"
	dErrors "ballot/pkg/domain-errors"
)

// fixture bundles a service wired to a fresh in-memory document store.
type fixture struct {
	docs    *docstore.MemoryStore
	events  *store.Events
	users   *store.Users
	notifs  *store.Notifications
	service *Service
	now     time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	docs := docstore.NewMemory()
	return newFixtureOver(t, docs, opts...)
}

// newFixtureOver lets tests interpose a decorated document store.
func newFixtureOver(t *testing.T, docs docstore.Store, opts ...Option) *fixture {
	t.Helper()

	cols := config.DefaultCollections()
	events := store.NewEvents(docs, cols)
	users := store.NewUsers(docs, cols)
	notifs := store.NewNotifications(docs, cols)

	allocator := sequence.NewDocstore(docs, cols.Extras)
	if err := allocator.Seed(context.Background()); err != nil {
		t.Fatalf("seed allocator: %v", err)
	}

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	base := []Option{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithClock(func() time.Time { return now }),
	}
	svc, err := New(events, users, notifs, allocator, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	mem, _ := docs.(*docstore.MemoryStore)
	return &fixture{docs: mem, events: events, users: users, notifs: notifs, service: svc, now: now}
}

func (f *fixture) openEvent(t *testing.T, organizer string, limit *int) *models.Event {
	t.Helper()
	event, err := f.service.CreateEvent(context.Background(), CreateEventParams{
		Name:              "spring gala",
		OrganizerDeviceID: organizer,
		RegistrationStart: "2026-03-01",
		RegistrationEnd:   "2026-03-31",
		WaitlistLimit:     limit,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

type LifecycleSuite struct {
	suite.Suite
	f *fixture
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.f = newFixture(s.T())
}

func (s *LifecycleSuite) TestCreateEvent() {
	ctx := context.Background()

	s.Run("allocated IDs are sequential", func() {
		first := s.f.openEvent(s.T(), "org-1", nil)
		second := s.f.openEvent(s.T(), "org-1", nil)
		s.Equal(first.ID+1, second.ID)
	})

	s.Run("close date covers its whole day", func() {
		event := s.f.openEvent(s.T(), "org-1", nil)
		s.Equal(23, event.RegistrationEnd.Hour())
		s.Equal(59, event.RegistrationEnd.Minute())
	})

	s.Run("missing name is rejected", func() {
		_, err := s.f.service.CreateEvent(ctx, CreateEventParams{OrganizerDeviceID: "org-1"})
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	})
}

func (s *LifecycleSuite) TestJoinAndStatus() {
	ctx := context.Background()
	event := s.f.openEvent(s.T(), "org-1", nil)

	s.Require().NoError(s.f.service.JoinWaitlist(ctx, event.ID, "dev-1"))

	status, err := s.f.service.EntrantStatus(ctx, event.ID, "dev-1")
	s.Require().NoError(err)
	s.Equal(models.StatusWaitlisted, status)

	s.Run("join persists the timestamp from the service clock", func() {
		got, err := s.f.service.GetEvent(ctx, event.ID)
		s.Require().NoError(err)
		s.Require().Len(got.Waitlisted, 1)
		s.Equal(s.f.now, got.Waitlisted[0].JoinedAt)
	})

	s.Run("join against a missing event reports not found", func() {
		err := s.f.service.JoinWaitlist(ctx, 9999, "dev-1")
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("leave returns the entrant to NONE", func() {
		s.Require().NoError(s.f.service.LeaveWaitlist(ctx, event.ID, "dev-1"))
		status, err := s.f.service.EntrantStatus(ctx, event.ID, "dev-1")
		s.Require().NoError(err)
		s.Equal(models.StatusNone, status)
	})
}

// TestConcurrentJoinsHonorCapacity drives racing joins through the store
// transaction path: with a limit of 1, exactly one join may win.
func (s *LifecycleSuite) TestConcurrentJoinsHonorCapacity() {
	ctx := context.Background()
	limit := 1
	event := s.f.openEvent(s.T(), "org-1", &limit)

	const joiners = 16
	var wg sync.WaitGroup
	errs := make(chan error, joiners)
	for i := 0; i < joiners; i++ {
		device := fmt.Sprintf("dev-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.f.service.JoinWaitlist(ctx, event.ID, device)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.Equal(dErrors.CodeCapacityExceeded, dErrors.CodeOf(err))
		}
	}
	s.Equal(1, succeeded)

	got, err := s.f.service.GetEvent(ctx, event.ID)
	s.Require().NoError(err)
	s.Len(got.Waitlisted, 1)
}

func (s *LifecycleSuite) TestInvitationOutcomes() {
	ctx := context.Background()
	event := s.f.openEvent(s.T(), "org-1", nil)
	s.Require().NoError(s.f.service.JoinWaitlist(ctx, event.ID, "dev-1"))
	s.Require().NoError(s.f.service.JoinWaitlist(ctx, event.ID, "dev-2"))

	_, err := s.f.service.Draw(ctx, event.ID, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.f.service.AcceptInvite(ctx, event.ID, "dev-1"))
	s.Require().NoError(s.f.service.DeclineInvite(ctx, event.ID, "dev-2"))

	accepted, err := s.f.service.EntrantStatus(ctx, event.ID, "dev-1")
	s.Require().NoError(err)
	s.Equal(models.StatusAccepted, accepted)

	declined, err := s.f.service.EntrantStatus(ctx, event.ID, "dev-2")
	s.Require().NoError(err)
	s.Equal(models.StatusDeclined, declined)

	s.Run("second accept fails with a state conflict", func() {
		err := s.f.service.AcceptInvite(ctx, event.ID, "dev-1")
		s.Equal(dErrors.CodeConflict, dErrors.CodeOf(err))
	})

	s.Run("organizer cancel moves accepted entrant to declined", func() {
		s.Require().NoError(s.f.service.CancelInvite(ctx, event.ID, "dev-1"))
		status, err := s.f.service.EntrantStatus(ctx, event.ID, "dev-1")
		s.Require().NoError(err)
		s.Equal(models.StatusDeclined, status)
	})
}

func (s *LifecycleSuite) TestNotifications() {
	ctx := context.Background()

	n, err := s.f.service.CreateNotification(ctx, CreateNotificationParams{
		SenderDeviceID:   "org-1",
		ReceiverDeviceID: "dev-1",
		Header:           "hello",
		Body:             "world",
	})
	s.Require().NoError(err)
	s.False(n.Dismissed)

	s.Run("dismiss flips the flag and is idempotent", func() {
		s.Require().NoError(s.f.service.DismissNotification(ctx, n.ID))
		s.Require().NoError(s.f.service.DismissNotification(ctx, n.ID))

		got, err := s.f.service.GetNotification(ctx, n.ID)
		s.Require().NoError(err)
		s.True(got.Dismissed)
	})

	s.Run("listing by receiver finds it", func() {
		ns, err := s.f.service.NotificationsForUser(ctx, "dev-1")
		s.Require().NoError(err)
		s.Len(ns, 1)
	})
}

// TestDeletedRecordsReadAsNotFound pins the lookup contract: deletion leaves
// no stale or partially populated record behind.
func (s *LifecycleSuite) TestDeletedRecordsReadAsNotFound() {
	ctx := context.Background()

	event := s.f.openEvent(s.T(), "org-1", nil)
	s.Require().NoError(s.f.service.DeleteEvent(ctx, event.ID))
	_, err := s.f.service.GetEvent(ctx, event.ID)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))

	user, err := s.f.service.RegisterUser(ctx, models.User{Type: models.UserTypeEntrant, FirstName: "Ada"})
	s.Require().NoError(err)
	s.Require().NoError(s.f.service.DeleteUser(ctx, user.DeviceID))
	_, err = s.f.service.GetUser(ctx, user.DeviceID)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))

	n, err := s.f.service.CreateNotification(ctx, CreateNotificationParams{
		ReceiverDeviceID: "dev-1", Header: "x",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.f.service.DeleteNotification(ctx, n.ID))
	_, err = s.f.service.GetNotification(ctx, n.ID)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *LifecycleSuite) TestRegisterUserMintsDeviceID() {
	ctx := context.Background()

	user, err := s.f.service.RegisterUser(ctx, models.User{Type: models.UserTypeEntrant})
	s.Require().NoError(err)
	s.NotEmpty(user.DeviceID)
	s.Require().NotNil(user.WantsNotifications)
	s.True(*user.WantsNotifications)

	got, err := s.f.service.GetUser(ctx, user.DeviceID)
	s.Require().NoError(err)
	s.Equal(models.UserTypeEntrant, got.Type)
}
