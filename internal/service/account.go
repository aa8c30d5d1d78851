package service

import (
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/store"
)

// Funds adjustment actions.
const (
	FundsActionAdd      = "add"
	FundsActionWithdraw = "withdraw"
)

// AccountService handles account creation and funds management.
type AccountService struct {
	ledger *store.Ledger
}

// NewAccountService creates a new AccountService over the ledger.
func NewAccountService(ledger *store.Ledger) *AccountService {
	return &AccountService{ledger: ledger}
}

// OpenAccount creates a new account with an optional initial balance.
func (s *AccountService) OpenAccount(userID int64, initial decimal.Decimal) (domain.Account, error) {
	if userID <= 0 {
		return domain.Account{}, &domain.ValidationError{Message: "user_id must be a positive integer"}
	}
	if initial.IsNegative() {
		return domain.Account{}, &domain.ValidationError{Message: "initial balance must not be negative"}
	}
	if !initial.IsZero() {
		if err := domain.ValidateAmount(initial); err != nil {
			return domain.Account{}, err
		}
	}
	return s.ledger.Open(userID, initial)
}

// GetAccount returns a snapshot of the user's account.
func (s *AccountService) GetAccount(userID int64) (domain.Account, error) {
	return s.ledger.Get(userID)
}

// AdjustFunds applies a deposit or withdrawal and returns the new balance.
// Withdrawals are limited to the available balance: cash reserved for open
// buy orders cannot be withdrawn.
func (s *AccountService) AdjustFunds(userID int64, action string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	switch action {
	case FundsActionAdd:
		return s.ledger.Deposit(userID, amount)
	case FundsActionWithdraw:
		return s.ledger.Withdraw(userID, amount)
	default:
		return decimal.Zero, &domain.ValidationError{
			Message: "action must be 'add' or 'withdraw'",
		}
	}
}
