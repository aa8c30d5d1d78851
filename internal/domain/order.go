package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distinguishes limit orders from market orders.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderSide indicates whether an order buys or sells a property.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Opposite returns the other side of the book.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Order represents a buy or sell instruction submitted by a user for a
// property. Quantities are fractional shares. Price is zero for market
// orders. CancelledQuantity records the fill-and-kill remainder of a market
// order or the unfilled remainder of a cancelled limit order.
type Order struct {
	OrderID           string
	UserID            int64
	PropertyID        int64
	Kind              OrderKind
	Side              OrderSide
	Price             decimal.Decimal
	Quantity          decimal.Decimal
	FilledQuantity    decimal.Decimal
	RemainingQuantity decimal.Decimal
	CancelledQuantity decimal.Decimal
	Status            OrderStatus
	CreatedAt         time.Time
	CancelledAt       *time.Time
	Trades            []*Trade
}

// AveragePrice computes the volume-weighted average execution price over the
// order's trades. Returns (zero, false) when nothing has been filled.
func (o *Order) AveragePrice() (decimal.Decimal, bool) {
	if len(o.Trades) == 0 || o.FilledQuantity.IsZero() {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, t := range o.Trades {
		total = total.Add(t.Price.Mul(t.Quantity))
	}
	return total.Div(o.FilledQuantity), true
}

// Terminal reports whether the order can no longer change state.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCancelled:
		return true
	}
	return false
}
