package service

import (
	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/store"
)

// WatchlistService manages per-user property watchlists.
type WatchlistService struct {
	watchlists *store.Watchlists
	ledger     *store.Ledger
	properties *store.Properties
}

// NewWatchlistService creates a new WatchlistService.
func NewWatchlistService(watchlists *store.Watchlists, ledger *store.Ledger, properties *store.Properties) *WatchlistService {
	return &WatchlistService{
		watchlists: watchlists,
		ledger:     ledger,
		properties: properties,
	}
}

// Add puts a property on the user's watchlist. Adding a property that is
// already watched is a no-op; the returned bool reports whether the entry
// is new.
func (s *WatchlistService) Add(userID, propertyID int64) (bool, error) {
	if !s.ledger.Exists(userID) {
		return false, domain.ErrUserNotFound
	}
	if !s.properties.Exists(propertyID) {
		return false, domain.ErrPropertyNotFound
	}
	return s.watchlists.Add(userID, propertyID), nil
}

// Remove takes a property off the user's watchlist. The returned bool
// reports whether it was present.
func (s *WatchlistService) Remove(userID, propertyID int64) (bool, error) {
	if !s.ledger.Exists(userID) {
		return false, domain.ErrUserNotFound
	}
	return s.watchlists.Remove(userID, propertyID), nil
}

// List returns the watched properties with their current prices, in the
// order they were added.
func (s *WatchlistService) List(userID int64) ([]domain.Property, error) {
	if !s.ledger.Exists(userID) {
		return nil, domain.ErrUserNotFound
	}

	ids := s.watchlists.List(userID)
	out := make([]domain.Property, 0, len(ids))
	for _, id := range ids {
		if p, err := s.properties.Get(id); err == nil {
			out = append(out, p)
		}
	}
	return out, nil
}
