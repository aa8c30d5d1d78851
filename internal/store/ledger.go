package store

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
)

// Ledger is the thread-safe in-memory cash ledger, keyed by user_id. It is
// the sole mutator of account balances: deposits, withdrawals, reservations
// for open buy limit orders, and trade settlement debits/credits.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[int64]*domain.Account),
	}
}

// Open creates an account for the user with the given starting balance.
// It returns domain.ErrUserAlreadyExists if the account already exists.
func (l *Ledger) Open(userID int64, initial decimal.Decimal) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[userID]; exists {
		return domain.Account{}, domain.ErrUserAlreadyExists
	}
	a := &domain.Account{
		UserID:    userID,
		Balance:   initial,
		CreatedAt: time.Now(),
	}
	l.accounts[userID] = a
	return *a, nil
}

// Get returns a snapshot of the user's account. It returns
// domain.ErrUserNotFound if no account exists.
func (l *Ledger) Get(userID int64) (domain.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[userID]
	if !ok {
		return domain.Account{}, domain.ErrUserNotFound
	}
	return *a, nil
}

// Exists returns true if the user has an account.
func (l *Ledger) Exists(userID int64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.accounts[userID]
	return ok
}

// Deposit increases the user's balance and returns the new balance.
func (l *Ledger) Deposit(userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[userID]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	a.Balance = a.Balance.Add(amount)
	return a.Balance, nil
}

// Withdraw decreases the user's balance and returns the new balance. It
// returns domain.ErrInsufficientFunds, leaving the balance unchanged, when
// the amount exceeds the available (unreserved) balance.
func (l *Ledger) Withdraw(userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[userID]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	if amount.GreaterThan(a.Available()) {
		return decimal.Zero, domain.ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return a.Balance, nil
}

// Reserve locks cash against the user's account for an open buy limit
// order. It returns domain.ErrInsufficientFunds when the amount exceeds
// the available balance.
func (l *Ledger) Reserve(userID int64, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if amount.GreaterThan(a.Available()) {
		return domain.ErrInsufficientFunds
	}
	a.Reserved = a.Reserved.Add(amount)
	return nil
}

// Release unlocks previously reserved cash.
func (l *Ledger) Release(userID int64, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[userID]
	if !ok {
		return
	}
	a.Reserved = a.Reserved.Sub(amount)
}

// SettleDebit applies the buyer's side of a trade: it releases the given
// reservation (the maker-price lock for a limit buy, zero for a market buy)
// and debits the execution cost. It returns domain.ErrInsufficientFunds,
// with no mutation observable, when the cost exceeds the balance available
// after the release. A limit buy's reservation always covers its cost, so
// the failure path only arises for market buys.
func (l *Ledger) SettleDebit(userID int64, cost, release decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	reserved := a.Reserved.Sub(release)
	if cost.GreaterThan(a.Balance.Sub(reserved)) {
		return domain.ErrInsufficientFunds
	}
	a.Reserved = reserved
	a.Balance = a.Balance.Sub(cost)
	return nil
}

// SettleCredit applies the seller's side of a trade: it credits the
// execution proceeds.
func (l *Ledger) SettleCredit(userID int64, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.accounts[userID]
	if !ok {
		return
	}
	a.Balance = a.Balance.Add(amount)
}

// TotalCash returns the sum of all balances. Used to verify cash
// conservation in tests.
func (l *Ledger) TotalCash() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, a := range l.accounts {
		total = total.Add(a.Balance)
	}
	return total
}
