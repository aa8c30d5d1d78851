package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a user's cash ledger entry. Reserved is the cash locked by
// open buy limit orders; it is part of Balance, not in addition to it.
// Balance and Reserved are non-negative after any successful operation.
type Account struct {
	UserID    int64
	Balance   decimal.Decimal
	Reserved  decimal.Decimal
	CreatedAt time.Time
}

// Available returns the cash not locked by open buy limit orders.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.Reserved)
}
