package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/engine"
	"github.com/propex/propex/internal/store"
)

// DepthLevels is how many resting orders each side of a depth view shows.
const DepthLevels = 5

// DepthEntry is one resting order's visible slice of the book.
type DepthEntry struct {
	OrderID   string          `json:"order_id"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
}

// PropertyService serves the catalog and per-property market views.
type PropertyService struct {
	properties *store.Properties
	trades     *store.Trades
	books      *engine.BookManager
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(properties *store.Properties, trades *store.Trades, books *engine.BookManager) *PropertyService {
	return &PropertyService{
		properties: properties,
		trades:     trades,
		books:      books,
	}
}

// ListProperties returns the full catalog ordered by id.
func (s *PropertyService) ListProperties() []domain.Property {
	return s.properties.List()
}

// GetProperty returns one property by id.
func (s *PropertyService) GetProperty(id int64) (domain.Property, error) {
	return s.properties.Get(id)
}

// GetDepth returns the top resting orders on one side of a property's
// book, best price first. A property with no book yet, including an
// unknown property id, has empty depth.
func (s *PropertyService) GetDepth(propertyID int64, side domain.OrderSide) ([]DepthEntry, error) {
	if side != domain.OrderSideBuy && side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}

	book, ok := s.books.Get(propertyID)
	if !ok {
		return []DepthEntry{}, nil
	}

	book.RLock()
	defer book.RUnlock()

	entries := book.Top(side, DepthLevels)
	out := make([]DepthEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DepthEntry{
			OrderID:   e.OrderID,
			Price:     e.Price,
			Quantity:  e.Order.RemainingQuantity,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

// ListTrades returns a property's execution history, oldest first.
func (s *PropertyService) ListTrades(propertyID int64) ([]*domain.Trade, error) {
	if !s.properties.Exists(propertyID) {
		return nil, domain.ErrPropertyNotFound
	}
	return s.trades.ListByProperty(propertyID), nil
}
