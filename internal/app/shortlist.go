package app

import (
	"sync"

	"elitestay/internal/domain"
)

// ShortlistStore is a session's saved-for-later set, keyed by property id.
// Entries keep insertion order; re-adding an id refreshes its snapshot in place.
type ShortlistStore struct {
	mu    sync.Mutex
	order []domain.PropertyID
	items map[domain.PropertyID]domain.Property
}

func NewShortlistStore() *ShortlistStore {
	return &ShortlistStore{items: make(map[domain.PropertyID]domain.Property)}
}

func (s *ShortlistStore) Add(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.items[p.ID] = p
}

func (s *ShortlistStore) Remove(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(p.ID)
}

func (s *ShortlistStore) Contains(p domain.Property) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[p.ID]
	return ok
}

// Toggle flips membership and reports whether p is shortlisted afterwards.
func (s *ShortlistStore) Toggle(p domain.Property) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; ok {
		s.removeLocked(p.ID)
		return false
	}
	s.order = append(s.order, p.ID)
	s.items[p.ID] = p
	return true
}

func (s *ShortlistStore) List() []domain.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Property, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *ShortlistStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *ShortlistStore) removeLocked(id domain.PropertyID) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
