package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// placeOrderRequest is the JSON request body for POST /orders.
type placeOrderRequest struct {
	Kind       string           `json:"kind"`
	UserID     int64            `json:"user_id"`
	PropertyID int64            `json:"property_id"`
	Side       string           `json:"side"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal  `json:"quantity"`
}

// orderResponse is the JSON representation of an order. Price is omitted
// for market orders; cancelled_at is null until the order is cancelled.
type orderResponse struct {
	OrderID           string           `json:"order_id"`
	Kind              string           `json:"kind"`
	UserID            int64            `json:"user_id"`
	PropertyID        int64            `json:"property_id"`
	Side              string           `json:"side"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	FilledQuantity    decimal.Decimal  `json:"filled_quantity"`
	RemainingQuantity decimal.Decimal  `json:"remaining_quantity"`
	CancelledQuantity decimal.Decimal  `json:"cancelled_quantity"`
	Status            string           `json:"status"`
	CreatedAt         string           `json:"created_at"`
	CancelledAt       *string          `json:"cancelled_at"`
	AveragePrice      *decimal.Decimal `json:"average_price"`
	Trades            []tradeResponse  `json:"trades"`
}

// tradeResponse is a single trade in the order response. RealizedPnl is
// present only on the selling side's view of the trade.
type tradeResponse struct {
	TradeID     string           `json:"trade_id"`
	Price       decimal.Decimal  `json:"price"`
	Quantity    decimal.Decimal  `json:"quantity"`
	RealizedPnl *decimal.Decimal `json:"realized_pnl,omitempty"`
	ExecutedAt  string           `json:"executed_at"`
}

// PlaceOrder handles POST /orders.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.PlaceOrder(service.PlaceOrderRequest{
		Kind:       domain.OrderKind(req.Kind),
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		Side:       domain.OrderSide(req.Side),
		Price:      req.Price,
		Quantity:   req.Quantity,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	order, err := h.orderSvc.GetOrder(orderID)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	order, err := h.orderSvc.CancelOrder(orderID)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

func buildOrderResponse(o *domain.Order) orderResponse {
	var avgPrice *decimal.Decimal
	if avg, ok := o.AveragePrice(); ok {
		avgPrice = &avg
	}

	resp := orderResponse{
		OrderID:           o.OrderID,
		Kind:              string(o.Kind),
		UserID:            o.UserID,
		PropertyID:        o.PropertyID,
		Side:              string(o.Side),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity,
		CancelledQuantity: o.CancelledQuantity,
		Status:            string(o.Status),
		CreatedAt:         o.CreatedAt.UTC().Format(time.RFC3339),
		AveragePrice:      avgPrice,
		Trades:            buildTradeResponses(o),
	}
	if o.Kind == domain.OrderKindLimit {
		price := o.Price
		resp.Price = &price
	}
	if o.CancelledAt != nil {
		s := o.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

func buildTradeResponses(o *domain.Order) []tradeResponse {
	result := make([]tradeResponse, len(o.Trades))
	for i, t := range o.Trades {
		result[i] = tradeResponse{
			TradeID:    t.TradeID,
			Price:      t.Price,
			Quantity:   t.Quantity,
			ExecutedAt: t.ExecutedAt.UTC().Format(time.RFC3339),
		}
		if t.SellOrderID == o.OrderID {
			pnl := t.RealizedPnl
			result[i].RealizedPnl = &pnl
		}
	}
	return result
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrPropertyNotFound):
		WriteError(w, http.StatusNotFound, "property_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotCancellable):
		WriteError(w, http.StatusConflict, "order_not_cancellable", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, domain.ErrInsufficientPosition):
		WriteError(w, http.StatusConflict, "insufficient_position", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
