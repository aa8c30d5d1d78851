package store

import (
	"sync"

	"github.com/propex/propex/internal/domain"
)

// Trades is the thread-safe append-only trade log, keyed by property_id.
// Records are immutable once appended and chronological per property.
type Trades struct {
	mu     sync.RWMutex
	trades map[int64][]*domain.Trade
}

// NewTrades creates an empty trade log.
func NewTrades() *Trades {
	return &Trades{
		trades: make(map[int64][]*domain.Trade),
	}
}

// Append adds a trade to the property's chronological log.
func (s *Trades) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[t.PropertyID] = append(s.trades[t.PropertyID], t)
}

// ListByProperty returns all trades for a property in chronological order.
// Returns an empty slice if no trades exist for the property.
func (s *Trades) ListByProperty(propertyID int64) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[propertyID]
	if trades == nil {
		return []*domain.Trade{}
	}

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]*domain.Trade, len(trades))
	copy(result, trades)
	return result
}
