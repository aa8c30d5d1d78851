package domain

import (
	"testing"
	"time"
)

func TestAccount_Available(t *testing.T) {
	a := &Account{
		UserID:    1,
		Balance:   dec("1000.00"),
		Reserved:  dec("300.00"),
		CreatedAt: time.Now(),
	}
	if got := a.Available(); !got.Equal(dec("700.00")) {
		t.Errorf("Available() = %s, want 700.00", got)
	}
}

func TestAccount_Available_NoReservation(t *testing.T) {
	a := &Account{UserID: 2, Balance: dec("500.00")}
	if got := a.Available(); !got.Equal(dec("500.00")) {
		t.Errorf("Available() = %s, want 500.00", got)
	}
}

func TestHolding_Available(t *testing.T) {
	h := &Holding{PropertyID: 1, Quantity: dec("5"), Reserved: dec("2")}
	if got := h.Available(); !got.Equal(dec("3")) {
		t.Errorf("Available() = %s, want 3", got)
	}
}

func TestHolding_Invested(t *testing.T) {
	h := &Holding{PropertyID: 1, Quantity: dec("2.5"), AvgCost: dec("100.00")}
	if got := h.Invested(); !got.Equal(dec("250.00")) {
		t.Errorf("Invested() = %s, want 250.00", got)
	}
}
