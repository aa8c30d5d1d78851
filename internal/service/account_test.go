package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
)

func TestOpenAccount(t *testing.T) {
	env := newTestEnv()

	a, err := env.accountSvc.OpenAccount(1, dec("250.50"))
	if err != nil {
		t.Fatalf("OpenAccount error: %v", err)
	}
	if a.UserID != 1 || !a.Balance.Equal(dec("250.50")) {
		t.Errorf("account = %+v, want user 1 with 250.50", a)
	}

	if _, err := env.accountSvc.OpenAccount(1, decimal.Zero); !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Errorf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestOpenAccount_Validation(t *testing.T) {
	env := newTestEnv()

	var ve *domain.ValidationError
	if _, err := env.accountSvc.OpenAccount(0, decimal.Zero); !errors.As(err, &ve) {
		t.Errorf("user_id 0: expected ValidationError, got %v", err)
	}
	if _, err := env.accountSvc.OpenAccount(1, dec("-5")); !errors.As(err, &ve) {
		t.Errorf("negative initial: expected ValidationError, got %v", err)
	}
	if _, err := env.accountSvc.OpenAccount(1, dec("10.555")); !errors.As(err, &ve) {
		t.Errorf("sub-cent initial: expected ValidationError, got %v", err)
	}
}

func TestAdjustFunds_AddAndWithdraw(t *testing.T) {
	env := newTestEnv()
	env.openAccount(t, 1, "100")

	balance, err := env.accountSvc.AdjustFunds(1, FundsActionAdd, dec("50"))
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if !balance.Equal(dec("150")) {
		t.Errorf("balance = %s, want 150", balance)
	}

	balance, err = env.accountSvc.AdjustFunds(1, FundsActionWithdraw, dec("120"))
	if err != nil {
		t.Fatalf("withdraw error: %v", err)
	}
	if !balance.Equal(dec("30")) {
		t.Errorf("balance = %s, want 30", balance)
	}

	if _, err := env.accountSvc.AdjustFunds(1, FundsActionWithdraw, dec("31")); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestAdjustFunds_ReservedCashLocked(t *testing.T) {
	env := newTestEnv()
	env.openAccount(t, 1, "100")

	// An open buy order reserves its full cost.
	if _, err := env.orderSvc.PlaceOrder(PlaceOrderRequest{
		Kind:       domain.OrderKindLimit,
		UserID:     1,
		PropertyID: 1,
		Side:       domain.OrderSideBuy,
		Price:      decPtr("80"),
		Quantity:   dec("1"),
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := env.accountSvc.AdjustFunds(1, FundsActionWithdraw, dec("30")); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("reserved cash must not be withdrawable, got %v", err)
	}
	if _, err := env.accountSvc.AdjustFunds(1, FundsActionWithdraw, dec("20")); err != nil {
		t.Errorf("withdrawing within the available balance failed: %v", err)
	}
}

func TestAdjustFunds_Validation(t *testing.T) {
	env := newTestEnv()
	env.openAccount(t, 1, "100")

	var ve *domain.ValidationError
	if _, err := env.accountSvc.AdjustFunds(1, "multiply", dec("10")); !errors.As(err, &ve) {
		t.Errorf("unknown action: expected ValidationError, got %v", err)
	}
	if _, err := env.accountSvc.AdjustFunds(1, FundsActionAdd, dec("0")); !errors.As(err, &ve) {
		t.Errorf("zero amount: expected ValidationError, got %v", err)
	}
	if _, err := env.accountSvc.AdjustFunds(99, FundsActionAdd, dec("10")); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown user: expected ErrUserNotFound, got %v", err)
	}
}

func TestGetAccount(t *testing.T) {
	env := newTestEnv()
	env.openAccount(t, 1, "75")

	a, err := env.accountSvc.GetAccount(1)
	if err != nil {
		t.Fatalf("GetAccount error: %v", err)
	}
	if !a.Balance.Equal(dec("75")) {
		t.Errorf("balance = %s, want 75", a.Balance)
	}
	if _, err := env.accountSvc.GetAccount(2); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
