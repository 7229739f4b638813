// Package sequence issues unique, monotonically increasing identifiers for
// events and notifications. The allocator is an explicit interface so the
// backing counter (document-store transaction, Redis INCR) can be swapped
// without touching callers.
package sequence

import "context"

// Counter fields inside the shared counter document.
const (
	FieldEvent        = "curEvent"
	FieldNotification = "curNotification"
)

// Allocator hands out unique identifiers. Each returned value is given to
// exactly one caller; values for a field never decrease. The counter must be
// pre-initialized; allocating against a missing field is an error, not an
// implicit zero.
type Allocator interface {
	Next(ctx context.Context, field string) (int64, error)
}

// NextEventID allocates the next event identifier.
func NextEventID(ctx context.Context, a Allocator) (int64, error) {
	return a.Next(ctx, FieldEvent)
}

// NextNotificationID allocates the next notification identifier.
func NextNotificationID(ctx context.Context, a Allocator) (int64, error) {
	return a.Next(ctx, FieldNotification)
}
