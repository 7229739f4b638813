package sequence

import (
	"context"
	"errors"
	"fmt"

	"ballot/internal/docstore"
	"ballot/pkg/platform/sentinel"
)

// Collection and document holding the shared counters.
const (
	counterID = "uniqueIdentifierData"
)

// DocstoreAllocator backs the counter with a single shared document mutated
// only inside store transactions. The document is a deliberate bottleneck:
// serializing on it is what guarantees uniqueness.
type DocstoreAllocator struct {
	store      docstore.Store
	collection string
}

// NewDocstore builds an allocator over the given extras collection.
func NewDocstore(store docstore.Store, extrasCollection string) *DocstoreAllocator {
	return &DocstoreAllocator{store: store, collection: extrasCollection}
}

// Next increments the named counter field inside a single-document
// transaction and returns the new value. A missing document or field means
// the counter was never initialized and fails the allocation.
func (a *DocstoreAllocator) Next(ctx context.Context, field string) (int64, error) {
	var allocated int64
	err := a.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		counters := make(map[string]int64)
		if err := tx.Get(a.collection, counterID, &counters); err != nil {
			return fmt.Errorf("read counter document: %w", err)
		}
		current, ok := counters[field]
		if !ok {
			return fmt.Errorf("counter field %q missing: %w", field, sentinel.ErrInvalidState)
		}
		allocated = current + 1
		counters[field] = allocated
		return tx.Set(a.collection, counterID, counters)
	})
	if err != nil {
		return 0, err
	}
	return allocated, nil
}

// Seed initializes the counter document when absent. Existing counters are
// left untouched so redeploys never rewind the sequence; zeros are written
// only when the document is confirmed missing, and every other read failure
// (decode error, transient store error) is returned as-is.
func (a *DocstoreAllocator) Seed(ctx context.Context) error {
	return a.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		counters := make(map[string]int64)
		err := tx.Get(a.collection, counterID, &counters)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("read counter document: %w", err)
		}
		counters[FieldEvent] = 0
		counters[FieldNotification] = 0
		return tx.Set(a.collection, counterID, counters)
	})
}
