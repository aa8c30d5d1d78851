package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// genPrice generates a valid price: positive, at most 2 decimal places.
func genPrice() *rapid.Generator[decimal.Decimal] {
	return rapid.Custom(func(t *rapid.T) decimal.Decimal {
		cents := rapid.Int64Range(1, 100_000_00).Draw(t, "cents")
		return decimal.New(cents, -2)
	})
}

// genQuantity generates a valid quantity: positive, at most 4 decimal places.
func genQuantity() *rapid.Generator[decimal.Decimal] {
	return rapid.Custom(func(t *rapid.T) decimal.Decimal {
		units := rapid.Int64Range(1, 10_000_0000).Draw(t, "units")
		return decimal.New(units, -4)
	})
}

func TestProperty_GeneratedPricesAndQuantitiesValidate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPrice().Draw(t, "price")
		q := genQuantity().Draw(t, "qty")
		if err := ValidatePrice(p); err != nil {
			t.Fatalf("ValidatePrice(%s) = %v", p, err)
		}
		if err := ValidateQuantity(q); err != nil {
			t.Fatalf("ValidateQuantity(%s) = %v", q, err)
		}
	})
}

// The recomputed average cost always lies between the old average and the
// execution price (inclusive), and a first buy adopts the execution price.
func TestProperty_WeightedAvgBoundedByInputs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldQty := rapid.Int64Range(0, 1000).Draw(t, "oldQty")
		oldAvg := genPrice().Draw(t, "oldAvg")
		qty := genQuantity().Draw(t, "qty")
		price := genPrice().Draw(t, "price")

		oq := decimal.NewFromInt(oldQty)
		if oldQty == 0 {
			oldAvg = decimal.Zero
		}

		avg := WeightedAvg(oq, oldAvg, qty, price)

		if oldQty == 0 {
			if !avg.Equal(price) {
				t.Fatalf("first buy: avg = %s, want %s", avg, price)
			}
			return
		}

		lo, hi := oldAvg, price
		if lo.GreaterThan(hi) {
			lo, hi = hi, lo
		}
		if avg.LessThan(lo) || avg.GreaterThan(hi) {
			t.Fatalf("avg %s outside [%s, %s] (oldQty=%d oldAvg=%s qty=%s price=%s)",
				avg, lo, hi, oldQty, oldAvg, qty, price)
		}
	})
}

// Total cost basis is conserved by the recompute:
// newAvg × (oldQty+qty) == oldQty×oldAvg + qty×price.
func TestProperty_WeightedAvgConservesCostBasis(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldQty := decimal.NewFromInt(rapid.Int64Range(1, 1000).Draw(t, "oldQty"))
		oldAvg := genPrice().Draw(t, "oldAvg")
		qty := decimal.NewFromInt(rapid.Int64Range(1, 1000).Draw(t, "qty"))
		price := genPrice().Draw(t, "price")

		avg := WeightedAvg(oldQty, oldAvg, qty, price)
		want := oldQty.Mul(oldAvg).Add(qty.Mul(price))
		got := avg.Mul(oldQty.Add(qty))

		// Division may not terminate exactly; allow a sub-cent tolerance.
		if got.Sub(want).Abs().GreaterThan(decimal.New(1, -6)) {
			t.Fatalf("cost basis drifted: got %s, want %s", got, want)
		}
	})
}
