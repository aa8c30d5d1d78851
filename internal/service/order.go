package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/engine"
	"github.com/propex/propex/internal/store"
)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusOpen:            true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
}

// PlaceOrderRequest represents the input for order placement.
type PlaceOrderRequest struct {
	Kind       domain.OrderKind
	UserID     int64
	PropertyID int64
	Side       domain.OrderSide
	Price      *decimal.Decimal // required for limit, must be nil for market
	Quantity   decimal.Decimal
}

// OrderService handles order placement, retrieval, cancellation, and listing.
type OrderService struct {
	matcher    *engine.Matcher
	ledger     *store.Ledger
	properties *store.Properties
	orders     *store.Orders
	webhookSvc *WebhookService
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	matcher *engine.Matcher,
	ledger *store.Ledger,
	properties *store.Properties,
	orders *store.Orders,
	webhookSvc *WebhookService,
) *OrderService {
	return &OrderService{
		matcher:    matcher,
		ledger:     ledger,
		properties: properties,
		orders:     orders,
		webhookSvc: webhookSvc,
	}
}

// PlaceOrder validates the request, submits the order to the matching
// engine, and dispatches webhooks for any trades executed.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (*domain.Order, error) {
	if req.Kind != domain.OrderKindLimit && req.Kind != domain.OrderKindMarket {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("Unknown order kind: %s. Must be one of: limit, market", req.Kind),
		}
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if err := domain.ValidateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	if !s.ledger.Exists(req.UserID) {
		return nil, domain.ErrUserNotFound
	}
	if !s.properties.Exists(req.PropertyID) {
		return nil, domain.ErrPropertyNotFound
	}

	if req.Kind == domain.OrderKindLimit {
		return s.placeLimitOrder(req)
	}
	return s.placeMarketOrder(req)
}

func (s *OrderService) placeLimitOrder(req PlaceOrderRequest) (*domain.Order, error) {
	if req.Price == nil {
		return nil, &domain.ValidationError{
			Message: "price is required for limit orders",
		}
	}
	if err := domain.ValidatePrice(*req.Price); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		Side:       req.Side,
		Price:      *req.Price,
		Quantity:   req.Quantity,
	}

	trades, err := s.matcher.PlaceLimitOrder(order)
	s.dispatchTradeWebhooks(trades, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) placeMarketOrder(req PlaceOrderRequest) (*domain.Order, error) {
	if req.Price != nil {
		return nil, &domain.ValidationError{
			Message: "market orders must not include price",
		}
	}

	order := &domain.Order{
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		Side:       req.Side,
		Quantity:   req.Quantity,
	}

	trades, err := s.matcher.PlaceMarketOrder(order)
	s.dispatchTradeWebhooks(trades, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// dispatchTradeWebhooks dispatches trade.executed webhooks for each trade
// to both sides. Skips dispatch if webhookSvc is nil. A settlement failure
// can leave committed trades on an errored placement, so this runs even
// when the matcher returned an error alongside trades.
func (s *OrderService) dispatchTradeWebhooks(trades []*domain.Trade, incoming *domain.Order) {
	if s.webhookSvc == nil || len(trades) == 0 {
		return
	}

	for _, trade := range trades {
		s.webhookSvc.DispatchTradeExecuted(incoming.UserID, trade, incoming)

		// Notify the resting counterparty as well.
		counterID := trade.SellOrderID
		if incoming.Side == domain.OrderSideSell {
			counterID = trade.BuyOrderID
		}
		if counterID == incoming.OrderID {
			continue
		}
		if resting, err := s.orders.Get(counterID); err == nil {
			s.webhookSvc.DispatchTradeExecuted(resting.UserID, trade, resting)
		}
	}
}

// GetOrder retrieves an order by ID with all its trades.
func (s *OrderService) GetOrder(orderID string) (*domain.Order, error) {
	return s.orders.Get(orderID)
}

// CancelOrder cancels an open or partially filled order and releases its
// reservation.
func (s *OrderService) CancelOrder(orderID string) (*domain.Order, error) {
	order, err := s.matcher.Cancel(orderID)
	if err != nil {
		return nil, err
	}

	if s.webhookSvc != nil {
		s.webhookSvc.DispatchOrderCancelled(order)
	}
	return order, nil
}

// ListOrders returns a paginated list of a user's orders with optional
// status filtering.
func (s *OrderService) ListOrders(userID int64, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if !s.ledger.Exists(userID) {
		return nil, 0, domain.ErrUserNotFound
	}

	if status != nil && !ValidOrderStatuses[*status] {
		return nil, 0, &domain.ValidationError{
			Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: open, partially_filled, filled, cancelled", *status),
		}
	}

	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	orders, total := s.orders.ListByUser(userID, status, page, limit)
	return orders, total, nil
}
