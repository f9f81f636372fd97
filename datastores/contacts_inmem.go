package datastores

import (
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactsInmem implements [ContactsStore] in memory.
// Contacts are listed in insertion order.
type ContactsInmem struct {
	mu       sync.Mutex
	order    []ContactID
	contacts map[ContactID]Contact
}

var _ ContactsStore = (*ContactsInmem)(nil)

func NewContactsInmem(cs ...*Contact) *ContactsInmem {
	s := &ContactsInmem{contacts: make(map[ContactID]Contact, len(cs))}
	for _, c := range cs {
		s.insert(c)
	}
	return s
}

func (s *ContactsInmem) insert(c *Contact) ContactID {
retry:
	id := primitive.NewObjectID()
	if _, loaded := s.contacts[id]; loaded {
		goto retry
	}
	stored := *c
	stored.ID = id
	s.contacts[id] = stored
	s.order = append(s.order, id)
	return id
}

func (s *ContactsInmem) List(_ context.Context) ([]*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contacts := make([]*Contact, 0, len(s.order))
	for _, id := range s.order {
		c := s.contacts[id]
		contacts = append(contacts, &c)
	}
	return contacts, nil
}

func (s *ContactsInmem) Get(_ context.Context, id ContactID) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return &c, nil
}

func (s *ContactsInmem) Create(_ context.Context, c *Contact) (ContactID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(c), nil
}

func (s *ContactsInmem) Replace(_ context.Context, id ContactID, c *Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return ErrObjectNotFound
	}
	stored := *c
	stored.ID = id
	s.contacts[id] = stored
	return nil
}

func (s *ContactsInmem) Delete(_ context.Context, id ContactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return ErrObjectNotFound
	}
	delete(s.contacts, id)
	s.order = slices.DeleteFunc(s.order, func(v ContactID) bool { return v == id })
	return nil
}
