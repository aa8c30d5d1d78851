package store

import (
	"sync"

	"github.com/propex/propex/internal/domain"
)

// Webhooks is a thread-safe in-memory store for webhook subscriptions.
// Primary index: webhook_id → webhook.
// Secondary index: user_id → event → webhook.
type Webhooks struct {
	mu       sync.RWMutex
	webhooks map[string]*domain.Webhook
	byUser   map[int64]map[string]*domain.Webhook
}

// NewWebhooks creates an empty Webhooks store.
func NewWebhooks() *Webhooks {
	return &Webhooks{
		webhooks: make(map[string]*domain.Webhook),
		byUser:   make(map[int64]map[string]*domain.Webhook),
	}
}

// Upsert inserts or updates a subscription keyed by (user_id, event).
// If a subscription already exists for that pair, the URL and UpdatedAt are
// updated and the webhook_id remains stable. Returns true if a new
// subscription was created.
func (s *Webhooks) Upsert(w *domain.Webhook) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if events, ok := s.byUser[w.UserID]; ok {
		if existing, ok := events[w.Event]; ok {
			if existing.URL != w.URL {
				existing.URL = w.URL
				existing.UpdatedAt = w.UpdatedAt
			}
			return false
		}
	}

	s.webhooks[w.WebhookID] = w
	if s.byUser[w.UserID] == nil {
		s.byUser[w.UserID] = make(map[string]*domain.Webhook)
	}
	s.byUser[w.UserID][w.Event] = w
	return true
}

// Get retrieves a webhook by ID. It returns domain.ErrWebhookNotFound if
// the webhook does not exist.
func (s *Webhooks) Get(id string) (*domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.webhooks[id]
	if !ok {
		return nil, domain.ErrWebhookNotFound
	}
	return w, nil
}

// ListByUser returns all webhooks for a user. Returns an empty slice if
// the user has no subscriptions.
func (s *Webhooks) ListByUser(userID int64) []*domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byUser[userID]
	if len(events) == 0 {
		return []*domain.Webhook{}
	}
	result := make([]*domain.Webhook, 0, len(events))
	for _, w := range events {
		result = append(result, w)
	}
	return result
}

// Delete removes a webhook by ID, cleaning up both indexes. It returns
// domain.ErrWebhookNotFound if the webhook does not exist.
func (s *Webhooks) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.webhooks[id]
	if !ok {
		return domain.ErrWebhookNotFound
	}
	delete(s.webhooks, id)
	if events, ok := s.byUser[w.UserID]; ok {
		delete(events, w.Event)
		if len(events) == 0 {
			delete(s.byUser, w.UserID)
		}
	}
	return nil
}

// GetByUserEvent returns the webhook for a specific user+event pair, or
// nil if no subscription exists.
func (s *Webhooks) GetByUserEvent(userID int64, event string) *domain.Webhook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byUser[userID]
	if events == nil {
		return nil
	}
	return events[event]
}
