// Package repository реализует хранилища презентаций, слайдов и подписок на PostgreSQL.
package repository

import (
	"context"

	"deck-server/internal/domain"
)

// PresentationRepository хранит презентации.
type PresentationRepository interface {
	Create(ctx context.Context, p *domain.Presentation) error
	// CreateWithSlides сохраняет новую презентацию вместе со слайдами в одной транзакции.
	CreateWithSlides(ctx context.Context, p *domain.Presentation, slides []domain.Slide) error
	// Update сохраняет результат генерации: описания, макет, структуру и заголовок.
	Update(ctx context.Context, p *domain.Presentation) error
	GetByID(ctx context.Context, id string) (*domain.Presentation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Presentation, error)
	Delete(ctx context.Context, id string) error
}

// SlideRepository хранит слайды презентации.
type SlideRepository interface {
	ListByPresentation(ctx context.Context, presentationID string) ([]domain.Slide, error)
	// ReplaceForPresentation атомарно заменяет все слайды презентации.
	ReplaceForPresentation(ctx context.Context, presentationID string, slides []domain.Slide) error
}

// WebhookRepository хранит подписки на события генерации.
type WebhookRepository interface {
	Create(ctx context.Context, sub *domain.WebhookSubscription) error
	GetByID(ctx context.Context, id string) (*domain.WebhookSubscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WebhookSubscription, error)
	ListActive(ctx context.Context, userID string, event domain.WebhookEvent) ([]domain.WebhookSubscription, error)
	Delete(ctx context.Context, id string) error
}
