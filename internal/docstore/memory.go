package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"ballot/pkg/platform/sentinel"
)

// MemoryStore keeps documents in per-collection maps. It favors clarity over
// performance and backs unit tests plus single-process deployments.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string, dst any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, sentinel.ErrNotFound)
	}
	return json.Unmarshal(raw, dst)
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, raw)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// Query returns raw documents whose top-level field equals value, compared by
// JSON representation so callers can match strings and numbers alike.
func (s *MemoryStore) Query(_ context.Context, collection, field string, value any) ([][]byte, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal query value: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out [][]byte
	for _, raw := range s.collections[collection] {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if got, ok := doc[field]; ok && bytes.Equal(got, want) {
			out = append(out, raw)
		}
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context, collection string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, 0, len(s.collections[collection]))
	for _, raw := range s.collections[collection] {
		out = append(out, raw)
	}
	return out, nil
}

// BatchDelete removes every referenced document under one lock acquisition,
// so concurrent readers observe all deletions or none of them.
func (s *MemoryStore) BatchDelete(_ context.Context, refs []Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		delete(s.collections[ref.Collection], ref.ID)
	}
	return nil
}

// RunTransaction executes fn under the store's write lock. Writes are staged
// and applied only when fn returns nil, so an aborting transaction leaves no
// partial mutation behind.
func (s *MemoryStore) RunTransaction(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, writes: make(map[Ref][]byte), deletes: make(map[Ref]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	for ref, raw := range tx.writes {
		s.put(ref.Collection, ref.ID, raw)
	}
	for ref := range tx.deletes {
		delete(s.collections[ref.Collection], ref.ID)
	}
	return nil
}

func (s *MemoryStore) put(collection, id string, raw []byte) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	s.collections[collection][id] = raw
}

type memoryTx struct {
	store   *MemoryStore
	writes  map[Ref][]byte
	deletes map[Ref]bool
}

func (t *memoryTx) Get(collection, id string, dst any) error {
	ref := Ref{collection, id}
	if t.deletes[ref] {
		return fmt.Errorf("%s/%s: %w", collection, id, sentinel.ErrNotFound)
	}
	if raw, ok := t.writes[ref]; ok {
		return json.Unmarshal(raw, dst)
	}
	raw, ok := t.store.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, sentinel.ErrNotFound)
	}
	return json.Unmarshal(raw, dst)
}

func (t *memoryTx) Set(collection, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	ref := Ref{collection, id}
	delete(t.deletes, ref)
	t.writes[ref] = raw
	return nil
}

func (t *memoryTx) Delete(collection, id string) error {
	ref := Ref{collection, id}
	delete(t.writes, ref)
	t.deletes[ref] = true
	return nil
}
