package domain

import "github.com/shopspring/decimal"

// Holding represents a user's position in a single property. Reserved is
// the quantity locked by open sell orders; it is part of Quantity. AvgCost
// is the volume-weighted average purchase price; it changes only on buys
// and resets to zero when the position is closed out.
type Holding struct {
	PropertyID int64
	Quantity   decimal.Decimal
	Reserved   decimal.Decimal
	AvgCost    decimal.Decimal
}

// Available returns the quantity not locked by open sell orders.
func (h *Holding) Available() decimal.Decimal {
	return h.Quantity.Sub(h.Reserved)
}

// Invested returns the cost basis of the position: quantity × average cost.
func (h *Holding) Invested() decimal.Decimal {
	return h.Quantity.Mul(h.AvgCost)
}
