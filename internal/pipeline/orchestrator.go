package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deck-server/internal/content"
	"deck-server/internal/domain"
)

// DefaultBatchSize - сколько слайдов генерируется одновременно.
const DefaultBatchSize = 10

// ContentGenerator генерирует содержимое одного слайда.
type ContentGenerator interface {
	Generate(ctx context.Context, req content.Request) (content.GeneratedSlide, error)
}

// AssetResolver заполняет плейсхолдеры ассетов. Никогда не возвращает ошибку.
type AssetResolver interface {
	Resolve(ctx context.Context, content map[string]any) map[string]any
}

// Plan - всё, что нужно для генерации слайдов презентации.
type Plan struct {
	PresentationID string
	Template       domain.LayoutTemplate
	Outline        domain.Outline
	Structure      domain.PresentationStructure
	Language       string
	Tone           domain.Tone
	Verbosity      domain.Verbosity
	Instructions   string
}

// Orchestrator генерирует слайды пачками. Ассеты пачки загружаются,
// пока генерируется следующая пачка.
type Orchestrator struct {
	content   ContentGenerator
	assets    AssetResolver
	batchSize int
	logger    *zap.Logger
}

// NewOrchestrator создаёт оркестратор. batchSize <= 0 означает DefaultBatchSize.
func NewOrchestrator(c ContentGenerator, assets AssetResolver, batchSize int, logger *zap.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Orchestrator{
		content:   c,
		assets:    assets,
		batchSize: batchSize,
		logger:    logger.Named("Orchestrator"),
	}
}

// Run возвращает слайды в порядке outline. Ошибка генерации любого слайда
// отменяет остальные вызовы и возвращается. Сбои ассетов не считаются ошибкой.
// progress вызывается перед ожиданием ассетов и может быть nil.
func (o *Orchestrator) Run(ctx context.Context, plan Plan, progress func(string)) ([]domain.Slide, error) {
	total := plan.Outline.Len()
	if len(plan.Structure.Slides) != total {
		return nil, fmt.Errorf("%w: structure has %d entries for %d outlines",
			domain.ErrInvalidInput, len(plan.Structure.Slides), total)
	}
	k := plan.Template.Len()
	for i, idx := range plan.Structure.Slides {
		if idx < 0 || idx >= k {
			return nil, fmt.Errorf("%w: slide %d refers to layout %d of %d", domain.ErrInvalidInput, i, idx, k)
		}
	}

	log := o.logger.With(zap.String("presentation_id", plan.PresentationID), zap.Int("slides", total))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slides := make([]domain.Slide, total)
	var assets errgroup.Group

	for start := 0; start < total; start += o.batchSize {
		end := min(start+o.batchSize, total)
		log.Debug("Generating slide batch", zap.Int("from", start), zap.Int("to", end))

		if err := o.generateBatch(ctx, plan, slides, start, end); err != nil {
			cancel()
			_ = assets.Wait()
			return nil, err
		}

		for i := start; i < end; i++ {
			assets.Go(func() error {
				slides[i].Content = o.assets.Resolve(ctx, slides[i].Content)
				return nil
			})
		}
	}

	if progress != nil {
		progress(MessageFetchingAssets)
	}
	started := time.Now()
	_ = assets.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug("Assets resolved", zap.Duration("waited", time.Since(started)))
	return slides, nil
}

func (o *Orchestrator) generateBatch(ctx context.Context, plan Plan, slides []domain.Slide, start, end int) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := start; i < end; i++ {
		g.Go(func() error {
			layout := plan.Template.Slides[plan.Structure.Slides[i]]
			generated, err := o.content.Generate(gctx, content.Request{
				Layout:       layout,
				Outline:      plan.Outline.Slides[i],
				Language:     plan.Language,
				Tone:         plan.Tone,
				Verbosity:    plan.Verbosity,
				Instructions: plan.Instructions,
			})
			if err != nil {
				return fmt.Errorf("generate slide %d (%s): %w", i, layout.ID, err)
			}
			slides[i] = domain.Slide{
				PresentationID: plan.PresentationID,
				Index:          i,
				LayoutGroup:    plan.Template.Name,
				LayoutID:       layout.ID,
				Content:        generated.Content,
				SpeakerNote:    generated.SpeakerNote,
			}
			return nil
		})
	}
	return g.Wait()
}
