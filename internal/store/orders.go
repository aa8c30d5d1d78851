package store

import (
	"sync"

	"github.com/propex/propex/internal/domain"
)

// Orders is a thread-safe in-memory store for orders, with a primary index
// by order_id and a secondary index by user_id.
type Orders struct {
	mu         sync.RWMutex
	orders     map[string]*domain.Order
	userOrders map[int64][]*domain.Order // user_id → orders (append-only)
}

// NewOrders creates an empty Orders store.
func NewOrders() *Orders {
	return &Orders{
		orders:     make(map[string]*domain.Order),
		userOrders: make(map[int64][]*domain.Order),
	}
}

// Create adds an order to the store and appends it to the user's
// secondary index.
func (s *Orders) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.OrderID] = o
	s.userOrders[o.UserID] = append(s.userOrders[o.UserID], o)
}

// Get retrieves an order by ID. It returns domain.ErrOrderNotFound if the
// order does not exist.
func (s *Orders) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// ListByUser returns orders for a user in reverse chronological order
// (newest first). If status is non-nil, only orders matching that status
// are included. Pagination is 1-based. Returns the matching orders for the
// requested page and the total count of matching orders (before pagination).
func (s *Orders) ListByUser(userID int64, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.userOrders[userID]

	filtered := make([]*domain.Order, 0)
	for i := len(all) - 1; i >= 0; i-- {
		if status != nil && all[i].Status != *status {
			continue
		}
		filtered = append(filtered, all[i])
	}

	total := len(filtered)

	start := (page - 1) * limit
	if start >= total {
		return []*domain.Order{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return filtered[start:end], total
}
