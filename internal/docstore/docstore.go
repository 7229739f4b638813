// Package docstore is the persistence gateway for the registration core. It
// exposes a small document-store surface: single-document get/set/delete,
// field-equality queries, all-or-nothing batch deletes, and a single-logical
// transaction primitive for read-modify-write sequences. Documents are stored
// as JSON; callers marshal and unmarshal their own types.
package docstore

import "context"

// Ref names one document.
type Ref struct {
	Collection string
	ID         string
}

// Tx is the view of the store inside RunTransaction. Reads observe a
// consistent snapshot of the documents touched; writes become visible only if
// the transaction commits.
type Tx interface {
	Get(collection, id string, dst any) error
	Set(collection, id string, doc any) error
	Delete(collection, id string) error
}

// Store is the document gateway. Get returns sentinel.ErrNotFound for absent
// documents. BatchDelete commits all deletions or none. RunTransaction may
// re-execute fn on contention, so fn must be retry-safe; when retries are
// exhausted the store returns an error wrapping sentinel.ErrExhausted.
type Store interface {
	Get(ctx context.Context, collection, id string, dst any) error
	Set(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection, field string, value any) ([][]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)
	BatchDelete(ctx context.Context, refs []Ref) error
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}
