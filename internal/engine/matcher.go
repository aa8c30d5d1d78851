package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/store"
)

// Matcher implements the matching engine. It is the single authority that
// mutates any property's order book and produces trades; all settlement
// goes through the Settler.
type Matcher struct {
	books    *BookManager
	ledger   *store.Ledger
	holdings *store.Holdings
	orders   *store.Orders
	trades   *store.Trades
	settler  *Settler
}

// NewMatcher creates a new Matcher with the given dependencies.
func NewMatcher(
	books *BookManager,
	ledger *store.Ledger,
	holdings *store.Holdings,
	orders *store.Orders,
	trades *store.Trades,
	settler *Settler,
) *Matcher {
	return &Matcher{
		books:    books,
		ledger:   ledger,
		holdings: holdings,
		orders:   orders,
		trades:   trades,
		settler:  settler,
	}
}

// Books exposes the book manager for read-only depth queries.
func (m *Matcher) Books() *BookManager {
	return m.books
}

// PlaceLimitOrder processes an incoming limit order through the matching
// engine. It reserves the buyer's cash (at the limit price) or the
// seller's shares, runs the match loop against the opposite side of the
// book, and rests any unfilled remainder at its original price and
// timestamp.
//
// The caller provides an Order with UserID, PropertyID, Side, Price, and
// Quantity set and already validated. The matcher assigns OrderID and
// CreatedAt and manages all status transitions.
//
// The per-property write lock is held for the entire matching pass.
func (m *Matcher) PlaceLimitOrder(order *domain.Order) ([]*domain.Trade, error) {
	book := m.books.GetOrCreate(order.PropertyID)

	book.mu.Lock()
	defer book.mu.Unlock()

	// Reserve before matching so every resting order is always covered.
	if order.Side == domain.OrderSideBuy {
		if err := m.ledger.Reserve(order.UserID, domain.Cost(order.Price, order.Quantity)); err != nil {
			return nil, err
		}
	} else {
		if err := m.holdings.Reserve(order.UserID, order.PropertyID, order.Quantity); err != nil {
			return nil, err
		}
	}

	m.initOrder(order, domain.OrderKindLimit)

	trades, err := m.matchLoop(book, order)

	// Rest the remainder, keeping the original timestamp for time priority.
	if order.RemainingQuantity.IsPositive() {
		book.Insert(BookEntry{
			Price:     order.Price,
			CreatedAt: order.CreatedAt,
			OrderID:   order.OrderID,
			Order:     order,
		})
	}

	return trades, err
}

// PlaceMarketOrder processes an incoming market order. Market orders are
// fill-and-kill: they cross unconditionally against the opposite side
// while liquidity exists, and any remainder is discarded, never rested.
// An empty opposite side is not an error — the order simply fills nothing.
//
// A market buy is checked against the simulated cost of the current book;
// it reserves nothing, so each fill's debit is re-checked at settlement.
// If the buyer's funds run out mid-pass (a concurrent fill on another
// property can drain them), already-settled fills stay committed, the
// remainder is discarded, and the error is surfaced alongside the order's
// final state. A market sell reserves the shares up front.
//
// The per-property write lock is held for the entire matching pass.
func (m *Matcher) PlaceMarketOrder(order *domain.Order) ([]*domain.Trade, error) {
	book := m.books.GetOrCreate(order.PropertyID)

	book.mu.Lock()
	defer book.mu.Unlock()

	if order.Side == domain.OrderSideBuy {
		// Simulate the fill against the current book to estimate cost.
		estimated := decimal.Zero
		remaining := order.Quantity
		book.WalkAsks(func(entry BookEntry) bool {
			fillQty := decimal.Min(remaining, entry.Order.RemainingQuantity)
			estimated = estimated.Add(domain.Cost(entry.Price, fillQty))
			remaining = remaining.Sub(fillQty)
			return remaining.IsPositive()
		})
		account, err := m.ledger.Get(order.UserID)
		if err != nil {
			return nil, err
		}
		if estimated.GreaterThan(account.Available()) {
			return nil, domain.ErrInsufficientFunds
		}
	} else {
		if err := m.holdings.Reserve(order.UserID, order.PropertyID, order.Quantity); err != nil {
			return nil, err
		}
	}

	m.initOrder(order, domain.OrderKindMarket)

	trades, err := m.matchLoop(book, order)

	// Fill-and-kill: discard the remainder.
	if order.RemainingQuantity.IsPositive() {
		order.CancelledQuantity = order.RemainingQuantity
		order.RemainingQuantity = decimal.Zero
		order.Status = domain.OrderStatusCancelled
		// Release the unneeded share reservation for a market sell.
		if order.Side == domain.OrderSideSell {
			m.holdings.Release(order.UserID, order.PropertyID, order.CancelledQuantity)
		}
	}

	return trades, err
}

// initOrder assigns identity and initial state and records the order.
func (m *Matcher) initOrder(order *domain.Order, kind domain.OrderKind) {
	order.OrderID = uuid.New().String()
	order.Kind = kind
	order.CreatedAt = time.Now()
	order.RemainingQuantity = order.Quantity
	order.FilledQuantity = decimal.Zero
	order.CancelledQuantity = decimal.Zero
	order.Status = domain.OrderStatusOpen
	order.Trades = []*domain.Trade{}

	m.orders.Create(order)
}

// matchLoop runs the match pass for an incoming order: while the order has
// unfilled quantity and the opposite best satisfies the crossing condition,
// consume liquidity at the resting order's price and settle each fill
// before the next iteration. A settlement failure aborts only the
// remainder; trades settled earlier in the pass stay committed.
func (m *Matcher) matchLoop(book *OrderBook, order *domain.Order) ([]*domain.Trade, error) {
	trades := []*domain.Trade{}

	for order.RemainingQuantity.IsPositive() {
		entry, found := book.Best(order.Side.Opposite())
		if !found {
			break
		}

		// Crossing condition. Market orders take any price.
		if order.Kind == domain.OrderKindLimit {
			if order.Side == domain.OrderSideBuy && entry.Price.GreaterThan(order.Price) {
				break
			}
			if order.Side == domain.OrderSideSell && entry.Price.LessThan(order.Price) {
				break
			}
		}

		resting := entry.Order
		fillQty := decimal.Min(order.RemainingQuantity, resting.RemainingQuantity)
		// The resting order always sets the trade price (maker rule).
		price := resting.Price

		buyOrder, sellOrder := order, resting
		if order.Side == domain.OrderSideSell {
			buyOrder, sellOrder = resting, order
		}

		// A limit buy's fill unlocks reserved cash at its own limit price.
		buyerRelease := decimal.Zero
		if buyOrder.Kind == domain.OrderKindLimit {
			buyerRelease = domain.Cost(buyOrder.Price, fillQty)
		}

		realized, err := m.settler.Execute(SettleRequest{
			PropertyID:   order.PropertyID,
			BuyerID:      buyOrder.UserID,
			SellerID:     sellOrder.UserID,
			Price:        price,
			Quantity:     fillQty,
			BuyerRelease: buyerRelease,
		})
		if err != nil {
			return trades, err
		}

		order.RemainingQuantity = order.RemainingQuantity.Sub(fillQty)
		order.FilledQuantity = order.FilledQuantity.Add(fillQty)
		resting.RemainingQuantity = resting.RemainingQuantity.Sub(fillQty)
		resting.FilledQuantity = resting.FilledQuantity.Add(fillQty)

		if order.RemainingQuantity.IsZero() {
			order.Status = domain.OrderStatusFilled
		} else {
			order.Status = domain.OrderStatusPartiallyFilled
		}
		if resting.RemainingQuantity.IsZero() {
			resting.Status = domain.OrderStatusFilled
		} else {
			resting.Status = domain.OrderStatusPartiallyFilled
		}

		trade := &domain.Trade{
			TradeID:     xid.New().String(),
			PropertyID:  order.PropertyID,
			BuyOrderID:  buyOrder.OrderID,
			SellOrderID: sellOrder.OrderID,
			Price:       price,
			Quantity:    fillQty,
			RealizedPnl: realized,
			ExecutedAt:  time.Now(),
		}
		order.Trades = append(order.Trades, trade)
		resting.Trades = append(resting.Trades, trade)
		m.trades.Append(trade)
		trades = append(trades, trade)

		// Filled resting orders leave the book; partial fills keep their
		// original priority slot.
		if resting.RemainingQuantity.IsZero() {
			book.Remove(resting.OrderID)
		}
	}

	return trades, nil
}

// Cancel cancels an open or partially filled order: it removes the order
// from its book and releases the remaining reservation. It returns
// domain.ErrOrderNotFound for an unknown id and
// domain.ErrOrderNotCancellable for an order already in a terminal state.
func (m *Matcher) Cancel(orderID string) (*domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		return nil, domain.ErrOrderNotCancellable
	}

	book := m.books.GetOrCreate(order.PropertyID)
	book.mu.Lock()
	defer book.mu.Unlock()

	// Re-check under the book lock: a concurrent match may have filled it.
	if order.Terminal() {
		return nil, domain.ErrOrderNotCancellable
	}

	book.Remove(order.OrderID)

	now := time.Now()
	order.CancelledQuantity = order.RemainingQuantity
	order.RemainingQuantity = decimal.Zero
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now

	if order.Side == domain.OrderSideBuy {
		m.ledger.Release(order.UserID, domain.Cost(order.Price, order.CancelledQuantity))
	} else {
		m.holdings.Release(order.UserID, order.PropertyID, order.CancelledQuantity)
	}

	return order, nil
}
