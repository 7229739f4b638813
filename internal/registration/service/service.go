// Package service orchestrates the registration lifecycle: waitlist
// membership, lottery draws, invitation outcomes, identifier allocation, and
// the organizer cascade delete. Storage and HTTP concerns live in other
// layers.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"ballot/internal/platform/metrics"
	"ballot/internal/registration/store"
	"ballot/internal/sequence"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/audit"
	"ballot/pkg/platform/sentinel"
)

// Service carries the registration core's dependencies.
type Service struct {
	events        *store.Events
	users         *store.Users
	notifications *store.Notifications
	allocator     sequence.Allocator

	logger  *slog.Logger
	auditor audit.Publisher
	metrics *metrics.Metrics
	clock   func() time.Time
	shuffle func(n int, swap func(i, j int))
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(pub audit.Publisher) Option {
	return func(s *Service) { s.auditor = pub }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the time source for join timestamps and window checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithShuffle sets the permutation source for draws; tests inject a
// deterministic one.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Service) {
		if shuffle != nil {
			s.shuffle = shuffle
		}
	}
}

func New(
	events *store.Events,
	users *store.Users,
	notifications *store.Notifications,
	allocator sequence.Allocator,
	opts ...Option,
) (*Service, error) {
	if events == nil || users == nil || notifications == nil {
		return nil, fmt.Errorf("all stores are required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("sequence allocator is required")
	}

	svc := &Service{
		events:        events,
		users:         users,
		notifications: notifications,
		allocator:     allocator,
		logger:        slog.Default(),
		auditor:       audit.NopPublisher{},
		clock:         time.Now,
		shuffle:       rand.Shuffle,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// translate maps infrastructure errors to coded domain errors. Errors that
// already carry a code pass through untouched so transition failures keep
// their exact reason.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrExhausted):
		return dErrors.Wrap(err, dErrors.CodeInternal, "store contention on "+what)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "persistence failure on "+what)
	}
}
