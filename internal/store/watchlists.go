package store

import "sync"

// Watchlists is a thread-safe in-memory store of per-user watchlists.
// Each watchlist is an ordered set of property ids, in insertion order.
type Watchlists struct {
	mu     sync.RWMutex
	byUser map[int64][]int64
}

// NewWatchlists creates an empty Watchlists store.
func NewWatchlists() *Watchlists {
	return &Watchlists{
		byUser: make(map[int64][]int64),
	}
}

// Add appends a property to the user's watchlist. Returns false if the
// property was already present.
func (s *Watchlists) Add(userID, propertyID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.byUser[userID] {
		if id == propertyID {
			return false
		}
	}
	s.byUser[userID] = append(s.byUser[userID], propertyID)
	return true
}

// Remove deletes a property from the user's watchlist. Returns false if
// the property was not present.
func (s *Watchlists) Remove(userID, propertyID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byUser[userID]
	for i, id := range list {
		if id == propertyID {
			s.byUser[userID] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the user's watchlist in insertion order.
func (s *Watchlists) List(userID int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byUser[userID]
	out := make([]int64, len(list))
	copy(out, list)
	return out
}
