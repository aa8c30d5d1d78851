package engine

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
)

// BookEntry represents a single limit order resting on the book.
type BookEntry struct {
	Price     decimal.Decimal
	CreatedAt time.Time
	OrderID   string
	Order     *domain.Order
}

// bidLess defines ordering for the buy side: price descending, then
// created_at ascending, then order_id ascending. Min() returns the best
// bid (highest price, earliest time).
func bidLess(a, b BookEntry) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c > 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.OrderID < b.OrderID
}

// askLess defines ordering for the sell side: price ascending, then
// created_at ascending, then order_id ascending. Min() returns the best
// ask (lowest price, earliest time).
func askLess(a, b BookEntry) bool {
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.OrderID < b.OrderID
}

// OrderBook maintains the buy and sell sides for a single property using
// B-trees with a secondary index for O(log n) removal by order ID. A
// partially filled order keeps its original entry, so price-time priority
// is never refreshed by a partial fill.
type OrderBook struct {
	propertyID int64
	mu         sync.RWMutex
	bids       *btree.BTreeG[BookEntry]
	asks       *btree.BTreeG[BookEntry]
	index      map[string]BookEntry // order_id → entry
}

// NewOrderBook creates an order book for the given property.
func NewOrderBook(propertyID int64) *OrderBook {
	const degree = 32
	return &OrderBook{
		propertyID: propertyID,
		bids:       btree.NewG[BookEntry](degree, bidLess),
		asks:       btree.NewG[BookEntry](degree, askLess),
		index:      make(map[string]BookEntry),
	}
}

// RLock acquires the read lock on the order book.
func (ob *OrderBook) RLock() {
	ob.mu.RLock()
}

// RUnlock releases the read lock on the order book.
func (ob *OrderBook) RUnlock() {
	ob.mu.RUnlock()
}

// Insert adds an entry to the side matching its order.
func (ob *OrderBook) Insert(entry BookEntry) {
	if entry.Order.Side == domain.OrderSideBuy {
		ob.bids.ReplaceOrInsert(entry)
	} else {
		ob.asks.ReplaceOrInsert(entry)
	}
	ob.index[entry.OrderID] = entry
}

// Remove deletes an order from the book by order ID using the secondary
// index. It is a no-op for an unknown id.
func (ob *OrderBook) Remove(orderID string) {
	entry, ok := ob.index[orderID]
	if !ok {
		return
	}
	delete(ob.index, orderID)
	// Delete is a no-op on the side the entry isn't on.
	ob.bids.Delete(entry)
	ob.asks.Delete(entry)
}

// Contains reports whether the order is resting on the book.
func (ob *OrderBook) Contains(orderID string) bool {
	_, ok := ob.index[orderID]
	return ok
}

// BestBid returns the highest-priority buy order (highest price, earliest time).
func (ob *OrderBook) BestBid() (BookEntry, bool) {
	return ob.bids.Min()
}

// BestAsk returns the highest-priority sell order (lowest price, earliest time).
func (ob *OrderBook) BestAsk() (BookEntry, bool) {
	return ob.asks.Min()
}

// Best returns the highest-priority resting order on the given side.
func (ob *OrderBook) Best(side domain.OrderSide) (BookEntry, bool) {
	if side == domain.OrderSideBuy {
		return ob.BestBid()
	}
	return ob.BestAsk()
}

// Top returns up to n resting orders from the given side in priority
// order. It never fails: an empty side yields an empty slice.
func (ob *OrderBook) Top(side domain.OrderSide, n int) []BookEntry {
	if n <= 0 {
		return []BookEntry{}
	}
	tree := ob.asks
	if side == domain.OrderSideBuy {
		tree = ob.bids
	}
	entries := make([]BookEntry, 0, n)
	tree.Ascend(func(entry BookEntry) bool {
		entries = append(entries, entry)
		return len(entries) < n
	})
	return entries
}

// WalkAsks iterates asks in priority order (lowest price first). The
// callback returns true to continue, false to stop. Used for market buy
// cost simulation.
func (ob *OrderBook) WalkAsks(fn func(BookEntry) bool) {
	ob.asks.Ascend(fn)
}

// WalkBids iterates bids in priority order (highest price first).
func (ob *OrderBook) WalkBids(fn func(BookEntry) bool) {
	ob.bids.Ascend(fn)
}

// BidCount returns the number of individual buy orders on the book.
func (ob *OrderBook) BidCount() int {
	return ob.bids.Len()
}

// AskCount returns the number of individual sell orders on the book.
func (ob *OrderBook) AskCount() int {
	return ob.asks.Len()
}

// BookManager is a thread-safe map of property_id → OrderBook. Each book
// carries its own mutex, so matching on different properties proceeds in
// parallel while matching on one property is serialized.
type BookManager struct {
	mu    sync.RWMutex
	books map[int64]*OrderBook
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[int64]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given property, creating one
// if it doesn't already exist.
func (bm *BookManager) GetOrCreate(propertyID int64) *OrderBook {
	bm.mu.RLock()
	book, ok := bm.books[propertyID]
	bm.mu.RUnlock()
	if ok {
		return book
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = bm.books[propertyID]; ok {
		return book
	}
	book = NewOrderBook(propertyID)
	bm.books[propertyID] = book
	return book
}

// Get returns the order book for the given property, or (nil, false) if
// none exists yet. Depth queries use this so that an unknown property
// never materializes a book.
func (bm *BookManager) Get(propertyID int64) (*OrderBook, bool) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()
	book, ok := bm.books[propertyID]
	return book, ok
}
