// Package content генерирует содержимое одного слайда по outline и макету.
package content

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"deck-server/internal/coercer"
	"deck-server/internal/domain"
	"deck-server/internal/llm"
)

// Request - входные данные для одного слайда.
type Request struct {
	Layout       domain.SlideLayout
	Outline      domain.OutlineEntry
	Language     string
	Tone         domain.Tone
	Verbosity    domain.Verbosity
	Instructions string
}

// GeneratedSlide - содержимое слайда и заметка докладчика.
type GeneratedSlide struct {
	Content     map[string]any
	SpeakerNote string
}

// Generator реализует генерацию содержимого слайда.
type Generator struct {
	provider llm.TextGenerationProvider
	coercer  *coercer.Coercer
	logger   *zap.Logger
	now      func() time.Time
}

// NewGenerator создаёт генератор содержимого слайдов.
func NewGenerator(provider llm.TextGenerationProvider, c *coercer.Coercer, logger *zap.Logger) *Generator {
	return &Generator{
		provider: provider,
		coercer:  c,
		logger:   logger.Named("content"),
		now:      time.Now,
	}
}

// Generate возвращает содержимое, соответствующее схеме макета.
// Ошибка возвращается только при сбое провайдера; кривой ответ модели
// исправляется и дополняется значениями по умолчанию.
func (g *Generator) Generate(ctx context.Context, req Request) (GeneratedSlide, error) {
	schema := promptSchema(req.Layout.JSONSchema)
	raw, _, err := g.provider.Generate(ctx, llm.Request{
		Operation:    "content",
		SystemPrompt: systemPrompt(req, schema),
		UserPrompt:   userPrompt(req, g.now()),
		JSONSchema:   schema,
		SchemaName:   "slide_content",
	})
	if err != nil {
		return GeneratedSlide{}, fmt.Errorf("generate content for layout %s: %w", req.Layout.ID, err)
	}

	res := g.coercer.Coerce(raw)
	if res.Strategy != coercer.StrategyStrict {
		g.logger.Info("Slide content coerced",
			zap.String("layout", req.Layout.ID),
			zap.String("strategy", res.Strategy),
		)
	}

	repaired := g.coercer.RepairContent(res.Value, req.Layout.JSONSchema)
	content, note := coercer.ExtractSpeakerNote(repaired)
	return GeneratedSlide{Content: content, SpeakerNote: note}, nil
}
