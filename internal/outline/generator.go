// Package outline генерирует описания слайдов (outline) через текстовую модель.
package outline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"deck-server/internal/coercer"
	"deck-server/internal/domain"
	"deck-server/internal/llm"
	"deck-server/internal/markdown"
)

const titleMaxRunes = 120

// Request - параметры генерации outline.
type Request struct {
	Content           string
	NSlides           int
	Language          string
	Tone              domain.Tone
	Verbosity         domain.Verbosity
	Instructions      string
	IncludeTitleSlide bool
	// AdditionalContext - текст из приложенных документов.
	AdditionalContext string
}

// Generator стримит ответ модели и приводит его к domain.Outline.
type Generator struct {
	provider llm.TextGenerationProvider
	coercer  *coercer.Coercer
	logger   *zap.Logger
	now      func() time.Time
}

// NewGenerator создаёт генератор outline.
func NewGenerator(provider llm.TextGenerationProvider, c *coercer.Coercer, logger *zap.Logger) *Generator {
	return &Generator{
		provider: provider,
		coercer:  c,
		logger:   logger.Named("outline"),
		now:      time.Now,
	}
}

// Generate запрашивает NSlides outline. Каждый фрагмент ответа передаётся в onChunk,
// если он задан; ошибка onChunk прерывает генерацию.
// Неразборчивый ответ не считается ошибкой: весь текст становится одним outline.
func (g *Generator) Generate(ctx context.Context, req Request, onChunk llm.ChunkHandler) (domain.Outline, error) {
	if req.NSlides <= 0 {
		return domain.Outline{}, fmt.Errorf("%w: n_slides must be positive", domain.ErrInvalidInput)
	}

	log := g.logger.With(zap.Int("n_slides", req.NSlides), zap.String("language", req.Language))
	var buf strings.Builder
	usage, err := g.provider.Stream(ctx, llm.Request{
		Operation:    "outline",
		SystemPrompt: systemPrompt(req),
		UserPrompt:   userPrompt(req, g.now()),
		JSONSchema:   responseSchema(req.NSlides),
		SchemaName:   "presentation_outline",
	}, func(chunk string) error {
		buf.WriteString(chunk)
		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	})
	if err != nil {
		return domain.Outline{}, fmt.Errorf("stream outlines: %w", err)
	}

	outline := g.coercer.CoerceOutline(buf.String())
	switch {
	case outline.Len() > req.NSlides:
		log.Warn("Model returned extra outlines, truncating", zap.Int("received", outline.Len()))
		outline.Slides = outline.Slides[:req.NSlides]
	case outline.Len() < req.NSlides:
		log.Warn("Model returned fewer outlines than requested", zap.Int("received", outline.Len()))
	}

	log.Info("Outlines generated",
		zap.Int("outlines", outline.Len()),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return outline, nil
}

// FromMarkdown превращает готовые markdown-слайды пользователя в outline.
// Пустые слайды пропускаются.
func FromMarkdown(slides []string) domain.Outline {
	out := domain.Outline{Slides: make([]domain.OutlineEntry, 0, len(slides))}
	for _, s := range slides {
		if s = strings.TrimSpace(s); s != "" {
			out.Slides = append(out.Slides, domain.OutlineEntry{Content: s})
		}
	}
	return out
}

// Title выводит название презентации из первого outline.
func Title(o domain.Outline) string {
	if o.Len() == 0 {
		return ""
	}
	return markdown.Title(o.Slides[0].Content, titleMaxRunes)
}
