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

var _ PresentationRepository = (*pgPresentationRepository)(nil)

const presentationColumns = `id, user_id, content, n_slides, language, tone, verbosity, instructions,
	include_title_slide, include_table_of_contents, outlines, layout, structure, title, created_at, updated_at`

const (
	createPresentationQuery = `
INSERT INTO presentations (` + presentationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	updatePresentationQuery = `
UPDATE presentations
SET n_slides = $2, outlines = $3, layout = $4, structure = $5, title = $6, updated_at = $7
WHERE id = $1`

	getPresentationByIDQuery = `SELECT ` + presentationColumns + ` FROM presentations WHERE id = $1`

	listPresentationsByUserQuery = `
SELECT ` + presentationColumns + `
FROM presentations
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	deletePresentationQuery = `DELETE FROM presentations WHERE id = $1`
)

type pgPresentationRepository struct {
	db     database.DBTX
	logger *zap.Logger
}

// NewPgPresentationRepository создаёт репозиторий презентаций.
func NewPgPresentationRepository(db database.DBTX, logger *zap.Logger) PresentationRepository {
	return &pgPresentationRepository{
		db:     db,
		logger: logger.Named("PgPresentationRepo"),
	}
}

func (r *pgPresentationRepository) Create(ctx context.Context, p *domain.Presentation) error {
	if err := insertPresentation(ctx, r.db, p); err != nil {
		r.logger.Error("Failed to create presentation", zap.String("presentation_id", p.ID), zap.Error(err))
		return fmt.Errorf("create presentation %s: %w", p.ID, err)
	}
	r.logger.Debug("Presentation created", zap.String("presentation_id", p.ID), zap.String("user_id", p.UserID))
	return nil
}

// CreateWithSlides вставляет презентацию и её слайды одной транзакцией:
// презентация без слайдов никому не видна.
func (r *pgPresentationRepository) CreateWithSlides(ctx context.Context, p *domain.Presentation, slides []domain.Slide) error {
	err := database.ExecuteInTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertPresentation(ctx, tx, p); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		queueSlides(batch, p.ID, slides, p.UpdatedAt)
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert slides: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create presentation with slides", zap.String("presentation_id", p.ID), zap.Error(err))
		return fmt.Errorf("create presentation %s: %w", p.ID, err)
	}
	r.logger.Debug("Presentation created",
		zap.String("presentation_id", p.ID),
		zap.String("user_id", p.UserID),
		zap.Int("slides", len(slides)),
	)
	return nil
}

func insertPresentation(ctx context.Context, db database.DBTX, p *domain.Presentation) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := db.Exec(ctx, createPresentationQuery,
		p.ID, p.UserID, p.Content, p.NSlides, p.Language, p.Tone, p.Verbosity, p.Instructions,
		p.IncludeTitleSlide, p.IncludeTableOfContents, p.Outlines, p.Layout, p.Structure, p.Title,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *pgPresentationRepository) Update(ctx context.Context, p *domain.Presentation) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, updatePresentationQuery,
		p.ID, p.NSlides, p.Outlines, p.Layout, p.Structure, p.Title, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update presentation", zap.String("presentation_id", p.ID), zap.Error(err))
		return fmt.Errorf("update presentation %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("presentation %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *pgPresentationRepository) GetByID(ctx context.Context, id string) (*domain.Presentation, error) {
	var p domain.Presentation
	if err := pgxscan.Get(ctx, r.db, &p, getPresentationByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
		}
		r.logger.Error("Failed to get presentation", zap.String("presentation_id", id), zap.Error(err))
		return nil, fmt.Errorf("get presentation %s: %w", id, err)
	}
	return &p, nil
}

func (r *pgPresentationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Presentation, error) {
	if limit <= 0 {
		limit = 20
	}
	var items []domain.Presentation
	if err := pgxscan.Select(ctx, r.db, &items, listPresentationsByUserQuery, userID, limit, offset); err != nil {
		r.logger.Error("Failed to list presentations", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list presentations for user %s: %w", userID, err)
	}
	if items == nil {
		items = []domain.Presentation{}
	}
	return items, nil
}

func (r *pgPresentationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deletePresentationQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete presentation", zap.String("presentation_id", id), zap.Error(err))
		return fmt.Errorf("delete presentation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("presentation %s: %w", id, domain.ErrNotFound)
	}
	r.logger.Info("Presentation deleted", zap.String("presentation_id", id))
	return nil
}
