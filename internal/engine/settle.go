package engine

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/store"
)

// SettleRequest describes one trade's full settlement: the buyer's debit,
// the seller's credit, both position updates, and the property's last
// traded price. BuyerRelease is the reserved cash unlocked by the buyer's
// fill — the buyer's limit price times the fill quantity for a limit buy,
// zero for a market buy.
type SettleRequest struct {
	PropertyID   int64
	BuyerID      int64
	SellerID     int64
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	BuyerRelease decimal.Decimal
}

// Settler is the settlement transaction boundary. Execute applies one
// trade as a unit: either all of {buyer debit, seller credit, buyer
// holding update, seller holding update, ltp update} take effect, or none
// do. Read-side snapshots (valuation, account summaries) take the shared
// lock so they never observe a half-applied trade.
type Settler struct {
	mu         sync.RWMutex
	ledger     *store.Ledger
	holdings   *store.Holdings
	properties *store.Properties
}

// NewSettler creates a Settler over the given stores.
func NewSettler(ledger *store.Ledger, holdings *store.Holdings, properties *store.Properties) *Settler {
	return &Settler{
		ledger:     ledger,
		holdings:   holdings,
		properties: properties,
	}
}

// Execute settles one trade and returns the seller's realized P&L. The
// only legitimate failure is the buyer's cash: a market buy may find the
// balance drained by a concurrent fill on another property, in which case
// nothing is mutated and domain.ErrInsufficientFunds is returned. The
// seller's position was reserved when the sell order was accepted, so the
// position check is a guard, not an expected path.
func (s *Settler) Execute(req SettleRequest) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Guard the seller's position before touching cash, so a failure here
	// leaves no partial state behind.
	h, ok := s.holdings.Get(req.SellerID, req.PropertyID)
	if !ok || req.Quantity.GreaterThan(h.Quantity) {
		return decimal.Zero, domain.ErrInsufficientPosition
	}

	cost := domain.Cost(req.Price, req.Quantity)
	if err := s.ledger.SettleDebit(req.BuyerID, cost, req.BuyerRelease); err != nil {
		return decimal.Zero, err
	}
	s.ledger.SettleCredit(req.SellerID, cost)

	realized, err := s.holdings.ApplySell(req.SellerID, req.PropertyID, req.Quantity, req.Price)
	if err != nil {
		// Unreachable given the guard above; kept so a broken invariant
		// surfaces instead of silently corrupting the ledger.
		return decimal.Zero, err
	}
	s.holdings.ApplyBuy(req.BuyerID, req.PropertyID, req.Quantity, req.Price)
	s.properties.SetLTP(req.PropertyID, req.Price)

	return realized, nil
}

// Read runs fn under the settlement read lock, giving it a consistent
// point-in-time view across ledger, holdings, and last traded prices.
func (s *Settler) Read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}
