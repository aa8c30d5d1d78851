package domain

import "time"

// Webhook represents a user's subscription to an event notification.
type Webhook struct {
	WebhookID string
	UserID    int64
	Event     string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
