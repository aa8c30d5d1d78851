package store

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
)

// Holdings is the thread-safe in-memory position store, keyed by user_id
// and property_id. It is the sole mutator of positions: trade settlement
// and the reservation of shares for open sell orders.
type Holdings struct {
	mu     sync.RWMutex
	byUser map[int64]map[int64]*domain.Holding
}

// NewHoldings creates an empty Holdings store.
func NewHoldings() *Holdings {
	return &Holdings{
		byUser: make(map[int64]map[int64]*domain.Holding),
	}
}

// Seed installs a position directly, bypassing settlement. Used at startup
// and in tests.
func (s *Holdings) Seed(userID, propertyID int64, qty, avgCost decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.holding(userID, propertyID).Quantity = qty
	s.byUser[userID][propertyID].AvgCost = avgCost
}

// holding returns the live entry for (userID, propertyID), creating it if
// absent. Caller must hold mu.
func (s *Holdings) holding(userID, propertyID int64) *domain.Holding {
	m, ok := s.byUser[userID]
	if !ok {
		m = make(map[int64]*domain.Holding)
		s.byUser[userID] = m
	}
	h, ok := m[propertyID]
	if !ok {
		h = &domain.Holding{PropertyID: propertyID}
		m[propertyID] = h
	}
	return h
}

// Get returns a snapshot of the user's position in a property.
func (s *Holdings) Get(userID, propertyID int64) (domain.Holding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.byUser[userID][propertyID]
	if !ok {
		return domain.Holding{}, false
	}
	return *h, true
}

// ListByUser returns snapshots of all of the user's positions, ordered by
// property id.
func (s *Holdings) ListByUser(userID int64) []domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := s.byUser[userID]
	out := make([]domain.Holding, 0, len(m))
	for _, h := range m {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyID < out[j].PropertyID })
	return out
}

// Reserve locks qty shares against the user's position for an open sell
// order. It returns domain.ErrInsufficientPosition when qty exceeds the
// available (unreserved) quantity.
func (s *Holdings) Reserve(userID, propertyID int64, qty decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.byUser[userID][propertyID]
	if !ok || qty.GreaterThan(h.Available()) {
		return domain.ErrInsufficientPosition
	}
	h.Reserved = h.Reserved.Add(qty)
	return nil
}

// Release unlocks previously reserved shares.
func (s *Holdings) Release(userID, propertyID int64, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.byUser[userID][propertyID]
	if !ok {
		return
	}
	h.Reserved = h.Reserved.Sub(qty)
	s.compact(userID, propertyID, h)
}

// ApplyBuy increases the user's position by qty at the execution price,
// recomputing the weighted-average cost basis.
func (s *Holdings) ApplyBuy(userID, propertyID int64, qty, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.holding(userID, propertyID)
	h.AvgCost = domain.WeightedAvg(h.Quantity, h.AvgCost, qty, price)
	h.Quantity = h.Quantity.Add(qty)
}

// ApplySell decreases the user's position by qty, consuming the matching
// reservation, and returns the realized P&L for the sold shares:
// qty × (price − avg cost). The average cost is unchanged by a sale; a
// position sold down to zero is removed, resetting its cost basis. It
// returns domain.ErrInsufficientPosition, with no mutation, when qty
// exceeds the held quantity.
func (s *Holdings) ApplySell(userID, propertyID int64, qty, price decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.byUser[userID][propertyID]
	if !ok || qty.GreaterThan(h.Quantity) {
		return decimal.Zero, domain.ErrInsufficientPosition
	}
	realized := qty.Mul(price.Sub(h.AvgCost))
	h.Quantity = h.Quantity.Sub(qty)
	if qty.GreaterThan(h.Reserved) {
		h.Reserved = decimal.Zero
	} else {
		h.Reserved = h.Reserved.Sub(qty)
	}
	s.compact(userID, propertyID, h)
	return realized, nil
}

// compact removes an emptied position. Caller must hold mu.
func (s *Holdings) compact(userID, propertyID int64, h *domain.Holding) {
	if h.Quantity.IsZero() && h.Reserved.IsZero() {
		delete(s.byUser[userID], propertyID)
	}
}

// MoneyInvested returns the total cost basis of the user's positions:
// Σ quantity × avg cost.
func (s *Holdings) MoneyInvested(userID int64) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, h := range s.byUser[userID] {
		total = total.Add(h.Invested())
	}
	return total
}
