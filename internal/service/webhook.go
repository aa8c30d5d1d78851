package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/store"
)

// Valid webhook event types.
var validWebhookEvents = map[string]bool{
	"trade.executed":  true,
	"order.cancelled": true,
}

// UpsertWebhookRequest represents the input for webhook registration.
type UpsertWebhookRequest struct {
	UserID int64
	URL    string
	Events []string
}

// WebhookService handles webhook CRUD and event dispatch.
type WebhookService struct {
	store  *store.Webhooks
	ledger *store.Ledger
	client *http.Client
}

// NewWebhookService creates a new WebhookService with the given dependencies.
func NewWebhookService(
	webhooks *store.Webhooks,
	ledger *store.Ledger,
	webhookTimeout time.Duration,
) *WebhookService {
	return &WebhookService{
		store:  webhooks,
		ledger: ledger,
		client: &http.Client{
			Timeout: webhookTimeout,
		},
	}
}

// Upsert validates the request and creates or updates webhook subscriptions.
// Returns the resulting webhooks, whether any new subscriptions were created,
// and any error.
func (s *WebhookService) Upsert(req UpsertWebhookRequest) ([]*domain.Webhook, bool, error) {
	if !s.ledger.Exists(req.UserID) {
		return nil, false, domain.ErrUserNotFound
	}

	// Validate URL.
	if req.URL == "" {
		return nil, false, &domain.ValidationError{Message: "url is required"}
	}
	if len(req.URL) > 2048 {
		return nil, false, &domain.ValidationError{Message: "url must be at most 2048 characters"}
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || !parsed.IsAbs() {
		return nil, false, &domain.ValidationError{Message: "url must be a valid absolute URL"}
	}
	if parsed.Scheme != "https" {
		return nil, false, &domain.ValidationError{Message: "url must use https scheme"}
	}

	// Validate events.
	if len(req.Events) == 0 {
		return nil, false, &domain.ValidationError{Message: "events must be a non-empty array"}
	}

	// Deduplicate events while preserving order and validating.
	seen := make(map[string]bool, len(req.Events))
	dedupedEvents := make([]string, 0, len(req.Events))
	for _, event := range req.Events {
		if !validWebhookEvents[event] {
			return nil, false, &domain.ValidationError{
				Message: "Unknown event type: " + event + ". Must be one of: trade.executed, order.cancelled",
			}
		}
		if !seen[event] {
			seen[event] = true
			dedupedEvents = append(dedupedEvents, event)
		}
	}

	// Upsert each (user_id, event) pair.
	now := time.Now().UTC().Truncate(time.Second)
	anyCreated := false
	webhooks := make([]*domain.Webhook, 0, len(dedupedEvents))

	for _, event := range dedupedEvents {
		w := &domain.Webhook{
			WebhookID: uuid.New().String(),
			UserID:    req.UserID,
			Event:     event,
			URL:       req.URL,
			CreatedAt: now,
			UpdatedAt: now,
		}

		created := s.store.Upsert(w)
		if created {
			anyCreated = true
			webhooks = append(webhooks, w)
		} else {
			existing := s.store.GetByUserEvent(req.UserID, event)
			if existing != nil {
				webhooks = append(webhooks, existing)
			}
		}
	}

	return webhooks, anyCreated, nil
}

// List validates the user exists and returns all webhook subscriptions.
func (s *WebhookService) List(userID int64) ([]*domain.Webhook, error) {
	if !s.ledger.Exists(userID) {
		return nil, domain.ErrUserNotFound
	}
	return s.store.ListByUser(userID), nil
}

// Delete removes a webhook subscription by ID.
func (s *WebhookService) Delete(webhookID string) error {
	return s.store.Delete(webhookID)
}

// tradeExecutedPayload is the JSON payload for trade.executed webhooks.
type tradeExecutedPayload struct {
	Event     string            `json:"event"`
	Timestamp string            `json:"timestamp"`
	Data      tradeExecutedData `json:"data"`
}

type tradeExecutedData struct {
	TradeID                string          `json:"trade_id"`
	UserID                 int64           `json:"user_id"`
	OrderID                string          `json:"order_id"`
	PropertyID             int64           `json:"property_id"`
	Side                   string          `json:"side"`
	TradePrice             decimal.Decimal `json:"trade_price"`
	TradeQuantity          decimal.Decimal `json:"trade_quantity"`
	OrderStatus            string          `json:"order_status"`
	OrderFilledQuantity    decimal.Decimal `json:"order_filled_quantity"`
	OrderRemainingQuantity decimal.Decimal `json:"order_remaining_quantity"`
	// RealizedPnl is present only on the selling side's notification.
	RealizedPnl *decimal.Decimal `json:"realized_pnl,omitempty"`
}

// orderCancelledPayload is the JSON payload for order.cancelled webhooks.
type orderCancelledPayload struct {
	Event     string             `json:"event"`
	Timestamp string             `json:"timestamp"`
	Data      orderCancelledData `json:"data"`
}

type orderCancelledData struct {
	UserID            int64            `json:"user_id"`
	OrderID           string           `json:"order_id"`
	PropertyID        int64            `json:"property_id"`
	Side              string           `json:"side"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	FilledQuantity    decimal.Decimal  `json:"filled_quantity"`
	CancelledQuantity decimal.Decimal  `json:"cancelled_quantity"`
	RemainingQuantity decimal.Decimal  `json:"remaining_quantity"`
	Status            string           `json:"status"`
}

// DispatchTradeExecuted dispatches a trade.executed webhook notification to
// the given user. Fire-and-forget — delivery errors are silently ignored.
func (s *WebhookService) DispatchTradeExecuted(userID int64, trade *domain.Trade, order *domain.Order) {
	wh := s.store.GetByUserEvent(userID, "trade.executed")
	if wh == nil {
		return
	}

	payload := tradeExecutedPayload{
		Event:     "trade.executed",
		Timestamp: trade.ExecutedAt.UTC().Truncate(time.Second).Format(time.RFC3339),
		Data: tradeExecutedData{
			TradeID:                trade.TradeID,
			UserID:                 userID,
			OrderID:                order.OrderID,
			PropertyID:             order.PropertyID,
			Side:                   string(order.Side),
			TradePrice:             trade.Price,
			TradeQuantity:          trade.Quantity,
			OrderStatus:            string(order.Status),
			OrderFilledQuantity:    order.FilledQuantity,
			OrderRemainingQuantity: order.RemainingQuantity,
		},
	}
	if order.OrderID == trade.SellOrderID {
		pnl := trade.RealizedPnl
		payload.Data.RealizedPnl = &pnl
	}

	go s.deliver(wh, "trade.executed", payload)
}

// DispatchOrderCancelled dispatches an order.cancelled webhook notification
// to the order's owner. Fire-and-forget.
func (s *WebhookService) DispatchOrderCancelled(order *domain.Order) {
	wh := s.store.GetByUserEvent(order.UserID, "order.cancelled")
	if wh == nil {
		return
	}

	data := orderCancelledData{
		UserID:            order.UserID,
		OrderID:           order.OrderID,
		PropertyID:        order.PropertyID,
		Side:              string(order.Side),
		Quantity:          order.Quantity,
		FilledQuantity:    order.FilledQuantity,
		CancelledQuantity: order.CancelledQuantity,
		RemainingQuantity: order.RemainingQuantity,
		Status:            string(order.Status),
	}
	if order.Kind == domain.OrderKindLimit {
		price := order.Price
		data.Price = &price
	}

	payload := orderCancelledPayload{
		Event:     "order.cancelled",
		Timestamp: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		Data:      data,
	}

	go s.deliver(wh, "order.cancelled", payload)
}

// deliver sends the webhook payload via HTTP POST with the delivery headers.
// Errors are silently ignored (fire-and-forget).
func (s *WebhookService) deliver(wh *domain.Webhook, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-Id", uuid.New().String())
	req.Header.Set("X-Webhook-Id", wh.WebhookID)
	req.Header.Set("X-Event-Type", eventType)

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
