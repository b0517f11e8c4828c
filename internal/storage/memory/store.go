// Package memory is an in-process store for admins and events, used for
// local development and tests. Ids are ObjectID hex strings so they look the
// same as the ones issued by the mongo store.
package memory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds both collections behind one lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	admins     map[string]adminRecord // keyed by lowercased email
	events     map[string]eventRecord
	eventOrder []string

	adminRepo *AdminRepository
	eventRepo *EventRepository
}

func New() *Store {
	s := &Store{
		now:    time.Now,
		admins: make(map[string]adminRecord),
		events: make(map[string]eventRecord),
	}
	s.adminRepo = &AdminRepository{store: s}
	s.eventRepo = &EventRepository{store: s}
	return s
}

// WithClock replaces the timestamp source used for createdAt/updatedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) Admins() *AdminRepository { return s.adminRepo }

func (s *Store) Events() *EventRepository { return s.eventRepo }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) newID() string {
	return primitive.NewObjectID().Hex()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
