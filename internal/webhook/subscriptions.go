package webhook

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/repository"
)

// Subscriptions управляет подписками пользователя на события генерации.
type Subscriptions struct {
	repo   repository.WebhookRepository
	logger *zap.Logger
}

// NewSubscriptions создаёт сервис подписок.
func NewSubscriptions(repo repository.WebhookRepository, logger *zap.Logger) *Subscriptions {
	return &Subscriptions{repo: repo, logger: logger.Named("WebhookSubscriptions")}
}

// Subscribe регистрирует URL для события. Принимаются только http(s) адреса.
func (s *Subscriptions) Subscribe(ctx context.Context, userID, rawURL string, event domain.WebhookEvent, secret string) (*domain.WebhookSubscription, error) {
	if !event.IsValid() {
		return nil, fmt.Errorf("%w: unknown event %q", domain.ErrInvalidInput, event)
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: webhook url must be an absolute http(s) url", domain.ErrInvalidInput)
	}

	sub := &domain.WebhookSubscription{
		UserID:   userID,
		URL:      u.String(),
		Event:    event,
		Secret:   secret,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("create webhook subscription: %w", err)
	}
	s.logger.Info("Webhook subscribed",
		zap.String("subscription_id", sub.ID),
		zap.String("user_id", userID),
		zap.String("event", string(event)),
	)
	return sub, nil
}

// List возвращает подписки пользователя.
func (s *Subscriptions) List(ctx context.Context, userID string) ([]domain.WebhookSubscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Unsubscribe удаляет подписку. Чужая подписка считается ненайденной.
func (s *Subscriptions) Unsubscribe(ctx context.Context, userID, id string) error {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return fmt.Errorf("webhook subscription %s: %w", id, domain.ErrNotFound)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Webhook unsubscribed", zap.String("subscription_id", id), zap.String("user_id", userID))
	return nil
}
