package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/pkg/database"
)

var _ SlideRepository = (*pgSlideRepository)(nil)

const (
	listSlidesQuery = `
SELECT id, presentation_id, slide_index, layout_group, layout_id, content, speaker_note, created_at, updated_at
FROM slides
WHERE presentation_id = $1
ORDER BY slide_index`

	deleteSlidesQuery = `DELETE FROM slides WHERE presentation_id = $1`

	insertSlideQuery = `
INSERT INTO slides (id, presentation_id, slide_index, layout_group, layout_id, content, speaker_note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
)

type pgSlideRepository struct {
	db     database.DBTX
	logger *zap.Logger
}

// NewPgSlideRepository создаёт репозиторий слайдов.
func NewPgSlideRepository(db database.DBTX, logger *zap.Logger) SlideRepository {
	return &pgSlideRepository{
		db:     db,
		logger: logger.Named("PgSlideRepo"),
	}
}

func (r *pgSlideRepository) ListByPresentation(ctx context.Context, presentationID string) ([]domain.Slide, error) {
	var slides []domain.Slide
	if err := pgxscan.Select(ctx, r.db, &slides, listSlidesQuery, presentationID); err != nil {
		r.logger.Error("Failed to list slides", zap.String("presentation_id", presentationID), zap.Error(err))
		return nil, fmt.Errorf("list slides of %s: %w", presentationID, err)
	}
	if slides == nil {
		slides = []domain.Slide{}
	}
	return slides, nil
}

// ReplaceForPresentation удаляет старые слайды и вставляет новые в одной транзакции,
// поэтому читатели видят либо старый, либо новый набор целиком.
func (r *pgSlideRepository) ReplaceForPresentation(ctx context.Context, presentationID string, slides []domain.Slide) error {
	log := r.logger.With(zap.String("presentation_id", presentationID), zap.Int("slides", len(slides)))
	now := time.Now().UTC()

	err := database.ExecuteInTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSlidesQuery, presentationID); err != nil {
			return fmt.Errorf("delete old slides: %w", err)
		}

		batch := &pgx.Batch{}
		queueSlides(batch, presentationID, slides, now)
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert slides: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to replace slides", zap.Error(err))
		return fmt.Errorf("replace slides of %s: %w", presentationID, err)
	}
	log.Debug("Slides replaced")
	return nil
}

// queueSlides добавляет вставку слайдов в batch, заполняя ID и временные метки.
func queueSlides(batch *pgx.Batch, presentationID string, slides []domain.Slide, now time.Time) {
	for i := range slides {
		s := &slides[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.PresentationID = presentationID
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		content := s.Content
		if content == nil {
			content = map[string]any{}
		}
		batch.Queue(insertSlideQuery,
			s.ID, presentationID, s.Index, s.LayoutGroup, s.LayoutID, content, s.SpeakerNote, s.CreatedAt, s.UpdatedAt,
		)
	}
}
