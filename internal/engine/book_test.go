package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(id string, side domain.OrderSide, price string, qty string, at time.Time) BookEntry {
	p := dec(price)
	q := dec(qty)
	return BookEntry{
		Price:     p,
		CreatedAt: at,
		OrderID:   id,
		Order: &domain.Order{
			OrderID:           id,
			Side:              side,
			Price:             p,
			Quantity:          q,
			RemainingQuantity: q,
			CreatedAt:         at,
		},
	}
}

func TestOrderBook_BestBid_HighestPriceFirst(t *testing.T) {
	book := NewOrderBook(1)
	now := time.Now()
	book.Insert(entry("a", domain.OrderSideBuy, "100", "1", now))
	book.Insert(entry("b", domain.OrderSideBuy, "102", "1", now))
	book.Insert(entry("c", domain.OrderSideBuy, "101", "1", now))

	best, ok := book.BestBid()
	if !ok {
		t.Fatal("expected a best bid")
	}
	if best.OrderID != "b" {
		t.Errorf("best bid = %s, want b", best.OrderID)
	}
}

func TestOrderBook_BestAsk_LowestPriceFirst(t *testing.T) {
	book := NewOrderBook(1)
	now := time.Now()
	book.Insert(entry("a", domain.OrderSideSell, "100", "1", now))
	book.Insert(entry("b", domain.OrderSideSell, "98", "1", now))
	book.Insert(entry("c", domain.OrderSideSell, "99", "1", now))

	best, ok := book.BestAsk()
	if !ok {
		t.Fatal("expected a best ask")
	}
	if best.OrderID != "b" {
		t.Errorf("best ask = %s, want b", best.OrderID)
	}
}

func TestOrderBook_Best_DispatchesOnSide(t *testing.T) {
	book := NewOrderBook(1)
	now := time.Now()
	book.Insert(entry("bid", domain.OrderSideBuy, "100", "1", now))
	book.Insert(entry("ask", domain.OrderSideSell, "105", "1", now))

	best, ok := book.Best(domain.OrderSideBuy)
	if !ok || best.OrderID != "bid" {
		t.Errorf("best buy = %v/%v, want bid", best.OrderID, ok)
	}
	best, ok = book.Best(domain.OrderSideSell)
	if !ok || best.OrderID != "ask" {
		t.Errorf("best sell = %v/%v, want ask", best.OrderID, ok)
	}
	if _, ok := NewOrderBook(2).Best(domain.OrderSideBuy); ok {
		t.Error("empty book should have no best")
	}
}

func TestOrderBook_TimePriorityWithinPrice(t *testing.T) {
	book := NewOrderBook(1)
	now := time.Now()
	book.Insert(entry("later", domain.OrderSideBuy, "100", "1", now.Add(time.Second)))
	book.Insert(entry("earlier", domain.OrderSideBuy, "100", "1", now))

	best, _ := book.BestBid()
	if best.OrderID != "earlier" {
		t.Errorf("best bid = %s, want earlier", best.OrderID)
	}
}

func TestOrderBook_Top_BoundedAndOrdered(t *testing.T) {
	book := NewOrderBook(1)
	now := time.Now()
	for i, price := range []string{"100", "103", "101", "104", "102", "105", "99"} {
		book.Insert(entry(string(rune('a'+i)), domain.OrderSideBuy, price, "1", now))
	}

	top := book.Top(domain.OrderSideBuy, 5)
	if len(top) != 5 {
		t.Fatalf("Top returned %d entries, want 5", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Price.GreaterThan(top[i-1].Price) {
			t.Errorf("bids not descending: %s after %s", top[i].Price, top[i-1].Price)
		}
	}
	if !top[0].Price.Equal(dec("105")) {
		t.Errorf("best bid in Top = %s, want 105", top[0].Price)
	}
	if top[0].OrderID != "f" || top[0].CreatedAt.IsZero() {
		t.Errorf("top entry should carry order identity, got %+v", top[0])
	}
}

func TestOrderBook_Top_EmptySide(t *testing.T) {
	book := NewOrderBook(1)
	if got := book.Top(domain.OrderSideSell, 5); len(got) != 0 {
		t.Errorf("expected empty slice for empty side, got %d entries", len(got))
	}
	if got := book.Top(domain.OrderSideBuy, 0); len(got) != 0 {
		t.Errorf("expected empty slice for n=0, got %d entries", len(got))
	}
}

func TestOrderBook_Remove(t *testing.T) {
	book := NewOrderBook(1)
	now := time.Now()
	book.Insert(entry("a", domain.OrderSideSell, "100", "1", now))

	if !book.Contains("a") {
		t.Error("expected order on book")
	}
	book.Remove("a")
	if book.Contains("a") || book.AskCount() != 0 {
		t.Error("order still on book after Remove")
	}
	// Unknown id is a no-op.
	book.Remove("missing")
}

func TestBookManager_GetOrCreate(t *testing.T) {
	bm := NewBookManager()
	b1 := bm.GetOrCreate(1)
	b2 := bm.GetOrCreate(1)
	if b1 != b2 {
		t.Error("GetOrCreate should return the same book for the same property")
	}
	if b3 := bm.GetOrCreate(2); b3 == b1 {
		t.Error("different properties should get different books")
	}
}

func TestBookManager_Get_DoesNotCreate(t *testing.T) {
	bm := NewBookManager()
	if _, ok := bm.Get(7); ok {
		t.Error("Get should not report a book for an unseen property")
	}
	bm.GetOrCreate(7)
	if _, ok := bm.Get(7); !ok {
		t.Error("Get should find the created book")
	}
}
