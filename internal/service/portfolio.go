package service

import (
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/engine"
	"github.com/propex/propex/internal/store"
)

// HoldingView is one valued position in a portfolio summary.
type HoldingView struct {
	PropertyID    int64           `json:"property_id"`
	PropertyName  string          `json:"property_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reserved      decimal.Decimal `json:"reserved"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	LastPrice     decimal.Decimal `json:"last_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
}

// PortfolioSummary is the complete valuation of one user's account: cash,
// invested capital, and every position marked to the last traded price.
type PortfolioSummary struct {
	UserID        int64           `json:"user_id"`
	Balance       decimal.Decimal `json:"balance"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
	MoneyInvested decimal.Decimal `json:"money_invested"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
	Holdings      []HoldingView   `json:"holdings"`
}

// PortfolioService computes account summaries. All reads run inside the
// settlement read lock so a summary never mixes pre- and post-trade state.
type PortfolioService struct {
	settler    *engine.Settler
	ledger     *store.Ledger
	holdings   *store.Holdings
	properties *store.Properties
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(
	settler *engine.Settler,
	ledger *store.Ledger,
	holdings *store.Holdings,
	properties *store.Properties,
) *PortfolioService {
	return &PortfolioService{
		settler:    settler,
		ledger:     ledger,
		holdings:   holdings,
		properties: properties,
	}
}

// GetSummary values the user's portfolio at the last traded prices.
// A position in a property that has never traded is valued at zero.
func (s *PortfolioService) GetSummary(userID int64) (PortfolioSummary, error) {
	var summary PortfolioSummary
	var err error

	s.settler.Read(func() {
		var account domain.Account
		account, err = s.ledger.Get(userID)
		if err != nil {
			return
		}

		summary = PortfolioSummary{
			UserID:        userID,
			Balance:       account.Balance,
			Reserved:      account.Reserved,
			Available:     account.Available(),
			MoneyInvested: decimal.Zero,
			CurrentValue:  decimal.Zero,
			UnrealizedPnl: decimal.Zero,
			Holdings:      []HoldingView{},
		}

		for _, h := range s.holdings.ListByUser(userID) {
			ltp := s.properties.LTP(h.PropertyID)
			value := h.Quantity.Mul(ltp)
			invested := h.Invested()

			view := HoldingView{
				PropertyID:    h.PropertyID,
				Quantity:      h.Quantity,
				Reserved:      h.Reserved,
				AvgCost:       h.AvgCost,
				LastPrice:     ltp,
				CurrentValue:  value,
				UnrealizedPnl: value.Sub(invested),
			}
			if p, perr := s.properties.Get(h.PropertyID); perr == nil {
				view.PropertyName = p.Name
			}

			summary.Holdings = append(summary.Holdings, view)
			summary.MoneyInvested = summary.MoneyInvested.Add(invested)
			summary.CurrentValue = summary.CurrentValue.Add(value)
			summary.UnrealizedPnl = summary.UnrealizedPnl.Add(view.UnrealizedPnl)
		}
	})

	if err != nil {
		return PortfolioSummary{}, err
	}
	return summary, nil
}
