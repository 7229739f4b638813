// Package store exposes typed event, user, and notification stores on top of
// the document gateway. Two write strategies are deliberate and explicit:
// Put overwrites the whole document (structural transitions, last writer
// wins), while Mutate runs a read-modify-write inside a store transaction
// (membership changes that must not lose concurrent updates).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"ballot/internal/docstore"
	"ballot/internal/platform/config"
	"ballot/internal/registration/models"
)

// Events persists event documents.
type Events struct {
	store      docstore.Store
	collection string
}

func NewEvents(store docstore.Store, cols config.Collections) *Events {
	return &Events{store: store, collection: cols.Events}
}

func eventKey(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Events) Get(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	if err := s.store.Get(ctx, s.collection, eventKey(id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Put overwrites the whole event document.
func (s *Events) Put(ctx context.Context, event *models.Event) error {
	return s.store.Set(ctx, s.collection, eventKey(event.ID), event)
}

func (s *Events) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, s.collection, eventKey(id))
}

// Mutate applies fn to the event inside a store transaction. fn sees a fresh
// read and may run more than once on contention; it must be retry-safe.
func (s *Events) Mutate(ctx context.Context, id int64, fn func(event *models.Event) error) error {
	return s.store.RunTransaction(ctx, func(tx docstore.Tx) error {
		var event models.Event
		if err := tx.Get(s.collection, eventKey(id), &event); err != nil {
			return err
		}
		if err := fn(&event); err != nil {
			return err
		}
		return tx.Set(s.collection, eventKey(id), &event)
	})
}

// ByOrganizer returns every event owned by the given organizer.
func (s *Events) ByOrganizer(ctx context.Context, organizerDeviceID string) ([]models.Event, error) {
	docs, err := s.store.Query(ctx, s.collection, "organizerDeviceID", organizerDeviceID)
	if err != nil {
		return nil, err
	}
	return decodeEvents(docs)
}

// All returns every event document. Damaged documents are skipped rather than
// failing the whole listing.
func (s *Events) All(ctx context.Context) ([]models.Event, error) {
	docs, err := s.store.List(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	return decodeEvents(docs)
}

// BatchDelete removes all listed events in one all-or-nothing commit.
func (s *Events) BatchDelete(ctx context.Context, ids []int64) error {
	refs := make([]docstore.Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, docstore.Ref{Collection: s.collection, ID: eventKey(id)})
	}
	return s.store.BatchDelete(ctx, refs)
}

func decodeEvents(docs [][]byte) ([]models.Event, error) {
	events := make([]models.Event, 0, len(docs))
	for _, raw := range docs {
		var event models.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Users persists user documents keyed by device ID.
type Users struct {
	store      docstore.Store
	collection string
}

func NewUsers(store docstore.Store, cols config.Collections) *Users {
	return &Users{store: store, collection: cols.Users}
}

func (s *Users) Get(ctx context.Context, deviceID string) (models.User, error) {
	var raw json.RawMessage
	if err := s.store.Get(ctx, s.collection, deviceID, &raw); err != nil {
		return models.User{}, err
	}
	return models.DecodeUser(raw)
}

func (s *Users) Put(ctx context.Context, user models.User) error {
	if user.DeviceID == "" {
		return fmt.Errorf("user device ID required")
	}
	return s.store.Set(ctx, s.collection, user.DeviceID, user)
}

func (s *Users) Delete(ctx context.Context, deviceID string) error {
	return s.store.Delete(ctx, s.collection, deviceID)
}

// All decodes every user document through the union decoder, skipping
// documents with unknown or missing discriminators.
func (s *Users) All(ctx context.Context) ([]models.User, error) {
	docs, err := s.store.List(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, raw := range docs {
		user, err := models.DecodeUser(raw)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// Notifications persists notification documents.
type Notifications struct {
	store      docstore.Store
	collection string
}

func NewNotifications(store docstore.Store, cols config.Collections) *Notifications {
	return &Notifications{store: store, collection: cols.Notifications}
}

func notificationKey(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Notifications) Get(ctx context.Context, id int64) (*models.Notification, error) {
	var n models.Notification
	if err := s.store.Get(ctx, s.collection, notificationKey(id), &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Notifications) Put(ctx context.Context, n *models.Notification) error {
	return s.store.Set(ctx, s.collection, notificationKey(n.ID), n)
}

func (s *Notifications) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, s.collection, notificationKey(id))
}

// ForReceiver returns every notification addressed to the given device.
func (s *Notifications) ForReceiver(ctx context.Context, deviceID string) ([]models.Notification, error) {
	docs, err := s.store.Query(ctx, s.collection, "receiverDeviceID", deviceID)
	if err != nil {
		return nil, err
	}
	return decodeNotifications(docs)
}

func (s *Notifications) All(ctx context.Context) ([]models.Notification, error) {
	docs, err := s.store.List(ctx, s.collection)
	if err != nil {
		return nil, err
	}
	return decodeNotifications(docs)
}

func decodeNotifications(docs [][]byte) ([]models.Notification, error) {
	out := make([]models.Notification, 0, len(docs))
	for _, raw := range docs {
		var n models.Notification
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
