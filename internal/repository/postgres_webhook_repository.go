package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/pkg/database"
)

var _ WebhookRepository = (*pgWebhookRepository)(nil)

const (
	webhookColumns = `id, user_id, url, event, secret, is_active, created_at`

	createWebhookQuery = `
INSERT INTO webhook_subscriptions (` + webhookColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getWebhookByIDQuery     = `SELECT ` + webhookColumns + ` FROM webhook_subscriptions WHERE id = $1`
	listWebhooksByUserQuery = `SELECT ` + webhookColumns + ` FROM webhook_subscriptions WHERE user_id = $1 ORDER BY created_at`
	listActiveWebhooksQuery = `SELECT ` + webhookColumns + ` FROM webhook_subscriptions WHERE user_id = $1 AND event = $2 AND is_active`
	deleteWebhookQuery      = `DELETE FROM webhook_subscriptions WHERE id = $1`
)

type pgWebhookRepository struct {
	db     database.DBTX
	logger *zap.Logger
}

// NewPgWebhookRepository создаёт репозиторий подписок.
func NewPgWebhookRepository(db database.DBTX, logger *zap.Logger) WebhookRepository {
	return &pgWebhookRepository{
		db:     db,
		logger: logger.Named("PgWebhookRepo"),
	}
}

func (r *pgWebhookRepository) Create(ctx context.Context, sub *domain.WebhookSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, createWebhookQuery,
		sub.ID, sub.UserID, sub.URL, sub.Event, sub.Secret, sub.IsActive, sub.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create webhook subscription", zap.String("user_id", sub.UserID), zap.Error(err))
		return fmt.Errorf("create webhook subscription: %w", err)
	}
	return nil
}

func (r *pgWebhookRepository) GetByID(ctx context.Context, id string) (*domain.WebhookSubscription, error) {
	var sub domain.WebhookSubscription
	if err := pgxscan.Get(ctx, r.db, &sub, getWebhookByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("webhook subscription %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get webhook subscription %s: %w", id, err)
	}
	return &sub, nil
}

func (r *pgWebhookRepository) ListByUser(ctx context.Context, userID string) ([]domain.WebhookSubscription, error) {
	return r.list(ctx, listWebhooksByUserQuery, userID)
}

func (r *pgWebhookRepository) ListActive(ctx context.Context, userID string, event domain.WebhookEvent) ([]domain.WebhookSubscription, error) {
	return r.list(ctx, listActiveWebhooksQuery, userID, event)
}

func (r *pgWebhookRepository) list(ctx context.Context, query string, args ...any) ([]domain.WebhookSubscription, error) {
	var subs []domain.WebhookSubscription
	if err := pgxscan.Select(ctx, r.db, &subs, query, args...); err != nil {
		r.logger.Error("Failed to list webhook subscriptions", zap.Error(err))
		return nil, fmt.Errorf("list webhook subscriptions: %w", err)
	}
	if subs == nil {
		subs = []domain.WebhookSubscription{}
	}
	return subs, nil
}

func (r *pgWebhookRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteWebhookQuery, id)
	if err != nil {
		return fmt.Errorf("delete webhook subscription %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook subscription %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
