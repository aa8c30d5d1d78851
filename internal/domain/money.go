package domain

import (
	"github.com/shopspring/decimal"
)

// Monetary values carry at most 2 decimal places; quantities (fractional
// shares of a property) carry at most 4. Both must be strictly positive
// wherever an order or funds adjustment supplies them.
const (
	PricePlaces    = 2
	QuantityPlaces = 4
)

// ValidatePrice checks that p is a well-formed order price: strictly
// positive with at most PricePlaces decimal places.
func ValidatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return &ValidationError{Message: "price must be greater than 0"}
	}
	if !p.Equal(p.Truncate(PricePlaces)) {
		return &ValidationError{Message: "price must have at most 2 decimal places"}
	}
	return nil
}

// ValidateQuantity checks that q is a well-formed order quantity: strictly
// positive with at most QuantityPlaces decimal places.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return &ValidationError{Message: "quantity must be greater than 0"}
	}
	if !q.Equal(q.Truncate(QuantityPlaces)) {
		return &ValidationError{Message: "quantity must have at most 4 decimal places"}
	}
	return nil
}

// ValidateAmount checks that a is a well-formed cash amount for a deposit
// or withdrawal: strictly positive with at most PricePlaces decimal places.
func ValidateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return &ValidationError{Message: "amount must be greater than 0"}
	}
	if !a.Equal(a.Truncate(PricePlaces)) {
		return &ValidationError{Message: "amount must have at most 2 decimal places"}
	}
	return nil
}

// Cost returns the exact cash cost of qty units at the given price.
func Cost(price, qty decimal.Decimal) decimal.Decimal {
	return price.Mul(qty)
}

// WeightedAvg recomputes an average cost basis after buying qty units at
// price on top of an existing position of oldQty units at oldAvg:
//
//	(oldQty×oldAvg + qty×price) / (oldQty+qty)
//
// The caller guarantees oldQty+qty > 0.
func WeightedAvg(oldQty, oldAvg, qty, price decimal.Decimal) decimal.Decimal {
	total := oldQty.Mul(oldAvg).Add(qty.Mul(price))
	return total.Div(oldQty.Add(qty))
}
