package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/store"
)

func newTestWebhookService() (*WebhookService, *store.Webhooks, *store.Ledger) {
	webhooks := store.NewWebhooks()
	ledger := store.NewLedger()
	svc := NewWebhookService(webhooks, ledger, 2*time.Second)
	return svc, webhooks, ledger
}

func TestWebhookUpsert_CreateAndUpdate(t *testing.T) {
	svc, _, ledger := newTestWebhookService()
	ledger.Open(1, dec("0"))

	hooks, created, err := svc.Upsert(UpsertWebhookRequest{
		UserID: 1,
		URL:    "https://example.com/hook",
		Events: []string{"trade.executed", "order.cancelled", "trade.executed"},
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if !created {
		t.Error("expected new subscriptions to be created")
	}
	if len(hooks) != 2 {
		t.Fatalf("expected 2 webhooks after dedup, got %d", len(hooks))
	}

	// Re-registering the same events with a new URL updates in place.
	hooks2, created, err := svc.Upsert(UpsertWebhookRequest{
		UserID: 1,
		URL:    "https://example.com/hook-v2",
		Events: []string{"trade.executed"},
	})
	if err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}
	if created {
		t.Error("expected update, not create")
	}
	if len(hooks2) != 1 || hooks2[0].URL != "https://example.com/hook-v2" {
		t.Errorf("updated webhook = %+v", hooks2)
	}
	if hooks2[0].WebhookID != hooks[0].WebhookID {
		t.Error("webhook_id must be stable across updates")
	}
}

func TestWebhookUpsert_Validation(t *testing.T) {
	svc, _, ledger := newTestWebhookService()
	ledger.Open(1, dec("0"))

	cases := []struct {
		name string
		req  UpsertWebhookRequest
	}{
		{"empty url", UpsertWebhookRequest{UserID: 1, Events: []string{"trade.executed"}}},
		{"http scheme", UpsertWebhookRequest{UserID: 1, URL: "http://example.com", Events: []string{"trade.executed"}}},
		{"relative url", UpsertWebhookRequest{UserID: 1, URL: "/hook", Events: []string{"trade.executed"}}},
		{"no events", UpsertWebhookRequest{UserID: 1, URL: "https://example.com"}},
		{"unknown event", UpsertWebhookRequest{UserID: 1, URL: "https://example.com", Events: []string{"order.expired"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Upsert(tc.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	_, _, err := svc.Upsert(UpsertWebhookRequest{
		UserID: 9, URL: "https://example.com", Events: []string{"trade.executed"},
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestWebhookListAndDelete(t *testing.T) {
	svc, _, ledger := newTestWebhookService()
	ledger.Open(1, dec("0"))

	hooks, _, err := svc.Upsert(UpsertWebhookRequest{
		UserID: 1,
		URL:    "https://example.com/hook",
		Events: []string{"trade.executed"},
	})
	if err != nil {
		t.Fatal(err)
	}

	listed, err := svc.List(1)
	if err != nil || len(listed) != 1 {
		t.Fatalf("List = %d webhooks, err %v", len(listed), err)
	}

	if err := svc.Delete(hooks[0].WebhookID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := svc.Delete(hooks[0].WebhookID); !errors.Is(err, domain.ErrWebhookNotFound) {
		t.Errorf("expected ErrWebhookNotFound, got %v", err)
	}
}

func TestDispatchTradeExecuted_DeliversPayload(t *testing.T) {
	svc, webhooks, ledger := newTestWebhookService()
	ledger.Open(1, dec("0"))

	received := make(chan tradeExecutedPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p tradeExecutedPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			received <- p
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Registration requires https, so install the test subscription
	// directly in the store.
	now := time.Now().UTC()
	webhooks.Upsert(&domain.Webhook{
		WebhookID: uuid.New().String(),
		UserID:    1,
		Event:     "trade.executed",
		URL:       server.URL,
		CreatedAt: now,
		UpdatedAt: now,
	})

	order := &domain.Order{
		OrderID:           "o1",
		UserID:            1,
		PropertyID:        7,
		Kind:              domain.OrderKindLimit,
		Side:              domain.OrderSideBuy,
		Price:             dec("100"),
		Quantity:          dec("1"),
		FilledQuantity:    dec("1"),
		RemainingQuantity: dec("0"),
		Status:            domain.OrderStatusFilled,
	}
	trade := &domain.Trade{
		TradeID:    "t1",
		PropertyID: 7,
		BuyOrderID: "o1",
		Price:      dec("100"),
		Quantity:   dec("1"),
		ExecutedAt: now,
	}

	svc.DispatchTradeExecuted(1, trade, order)

	select {
	case p := <-received:
		if p.Event != "trade.executed" {
			t.Errorf("event = %q", p.Event)
		}
		if p.Data.TradeID != "t1" || p.Data.PropertyID != 7 {
			t.Errorf("data = %+v", p.Data)
		}
		if !p.Data.TradePrice.Equal(dec("100")) {
			t.Errorf("trade price = %s, want 100", p.Data.TradePrice)
		}
		if p.Data.RealizedPnl != nil {
			t.Errorf("buy side carries realized_pnl %s", p.Data.RealizedPnl)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestDispatchTradeExecuted_SellSideRealizedPnl(t *testing.T) {
	svc, webhooks, ledger := newTestWebhookService()
	ledger.Open(2, dec("0"))

	received := make(chan tradeExecutedPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p tradeExecutedPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err == nil {
			received <- p
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	now := time.Now().UTC()
	webhooks.Upsert(&domain.Webhook{
		WebhookID: uuid.New().String(),
		UserID:    2,
		Event:     "trade.executed",
		URL:       server.URL,
		CreatedAt: now,
		UpdatedAt: now,
	})

	order := &domain.Order{
		OrderID:    "s1",
		UserID:     2,
		PropertyID: 7,
		Kind:       domain.OrderKindLimit,
		Side:       domain.OrderSideSell,
		Price:      dec("100"),
		Quantity:   dec("1"),
		Status:     domain.OrderStatusFilled,
	}
	trade := &domain.Trade{
		TradeID:     "t2",
		PropertyID:  7,
		SellOrderID: "s1",
		Price:       dec("100"),
		Quantity:    dec("1"),
		RealizedPnl: dec("20"),
		ExecutedAt:  now,
	}

	svc.DispatchTradeExecuted(2, trade, order)

	select {
	case p := <-received:
		if p.Data.RealizedPnl == nil || !p.Data.RealizedPnl.Equal(dec("20")) {
			t.Errorf("realized_pnl = %v, want 20", p.Data.RealizedPnl)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestDispatch_NoSubscription_NoPanic(t *testing.T) {
	svc, _, ledger := newTestWebhookService()
	ledger.Open(1, dec("0"))

	svc.DispatchTradeExecuted(1, &domain.Trade{TradeID: "t"}, &domain.Order{UserID: 1})
	svc.DispatchOrderCancelled(&domain.Order{UserID: 1, Kind: domain.OrderKindMarket})
}
