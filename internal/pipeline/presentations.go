package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"deck-server/internal/domain"
)

const maxListLimit = 100

// GetPresentation возвращает презентацию владельца вместе со слайдами.
func (s *Service) GetPresentation(ctx context.Context, userID, presentationID string) (domain.PresentationWithSlides, error) {
	p, err := s.owned(ctx, userID, presentationID)
	if err != nil {
		return domain.PresentationWithSlides{}, err
	}
	slides, err := s.Slides.ListByPresentation(ctx, p.ID)
	if err != nil {
		return domain.PresentationWithSlides{}, fmt.Errorf("list slides: %w", err)
	}
	return domain.PresentationWithSlides{Presentation: *p, Slides: slides}, nil
}

// ListPresentations возвращает презентации пользователя, новые первыми.
func (s *Service) ListPresentations(ctx context.Context, userID string, limit, offset int) ([]domain.Presentation, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Presentations.ListByUser(ctx, userID, limit, offset)
}

// DeletePresentation удаляет презентацию владельца. Слайды удаляются каскадно.
func (s *Service) DeletePresentation(ctx context.Context, userID, presentationID string) error {
	if _, err := s.owned(ctx, userID, presentationID); err != nil {
		return err
	}
	if err := s.Presentations.Delete(ctx, presentationID); err != nil {
		return err
	}
	s.logger.Info("Presentation deleted", zap.String("presentation_id", presentationID), zap.String("user_id", userID))
	return nil
}

func (s *Service) owned(ctx context.Context, userID, presentationID string) (*domain.Presentation, error) {
	p, err := s.Presentations.GetByID(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
