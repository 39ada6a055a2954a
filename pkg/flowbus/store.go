package flowbus

import (
	"reflect"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowbus/pkg/flowbus/event"
	"github.com/randalmurphal/flowbus/pkg/flowbus/registry"
)

// maxIDAttempts bounds retries against an id generator that repeats itself.
const maxIDAttempts = 16

// registration binds a declared event type to a handler.
type registration struct {
	id        uuid.UUID
	eventType reflect.Type
	plan      *handlerPlan
}

// registrationStore holds registrations in insertion order.
type registrationStore struct {
	entries *registry.Registry[uuid.UUID, *registration]
	newID   func() uuid.UUID
}

func newRegistrationStore(newID func() uuid.UUID) *registrationStore {
	return &registrationStore{
		entries: registry.New[uuid.UUID, *registration](),
		newID:   newID,
	}
}

// insert stores a registration under a fresh id.
func (s *registrationStore) insert(eventType reflect.Type, plan *handlerPlan) uuid.UUID {
	for range maxIDAttempts {
		id := s.newID()
		if s.entries.Insert(id, &registration{id: id, eventType: eventType, plan: plan}) {
			return id
		}
	}
	panic("flowbus: id generator keeps returning ids already in use")
}

// remove deletes id and reports whether it was present.
func (s *registrationStore) remove(id uuid.UUID) bool {
	return s.entries.Delete(id)
}

// lookup returns the registrations whose declared type is in set, in
// registration order.
func (s *registrationStore) lookup(set *event.TypeSet) []*registration {
	return s.entries.Filter(func(_ uuid.UUID, r *registration) bool {
		return set.Contains(r.eventType)
	})
}

func (s *registrationStore) len() int {
	return s.entries.Len()
}
