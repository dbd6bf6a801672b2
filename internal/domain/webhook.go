package domain

import "time"

// WebhookEvent - тип события, на которое подписывается клиент.
type WebhookEvent string

const (
	WebhookEventGenerationCompleted WebhookEvent = "presentation.generation.completed"
	WebhookEventGenerationFailed    WebhookEvent = "presentation.generation.failed"
)

// IsValid проверяет тип события.
func (e WebhookEvent) IsValid() bool {
	return e == WebhookEventGenerationCompleted || e == WebhookEventGenerationFailed
}

// WebhookSubscription - подписка пользователя на событие.
type WebhookSubscription struct {
	ID        string       `json:"id" db:"id"`
	UserID    string       `json:"user_id" db:"user_id"`
	URL       string       `json:"url" db:"url"`
	Event     WebhookEvent `json:"event" db:"event"`
	Secret    string       `json:"-" db:"secret"`
	IsActive  bool         `json:"is_active" db:"is_active"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}
