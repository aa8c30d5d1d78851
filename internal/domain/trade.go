package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a matched execution between a buy and a sell order.
// Trades are immutable once created; the per-property trade log is the
// source of truth for settlement history and the property's last traded
// price.
type Trade struct {
	TradeID     string
	PropertyID  int64
	BuyOrderID  string
	SellOrderID string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	// RealizedPnl is the seller's realized profit or loss on this
	// execution: quantity × (price − seller's average cost).
	RealizedPnl decimal.Decimal
	ExecutedAt  time.Time
}
