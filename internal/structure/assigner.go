// Package structure сопоставляет каждому outline слот шаблона.
package structure

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"go.uber.org/zap"

	"deck-server/internal/coercer"
	"deck-server/internal/domain"
	"deck-server/internal/llm"
)

// Hints - дополнительные указания для выбора слотов.
type Hints struct {
	Instructions string
	// FromMarkdown - outline пришли от пользователя готовым markdown.
	FromMarkdown bool
}

// Assigner выбирает слот шаблона для каждого outline.
type Assigner struct {
	provider llm.TextGenerationProvider
	coercer  *coercer.Coercer
	logger   *zap.Logger

	mu  sync.Mutex // rand.Rand не потокобезопасен
	rng *rand.Rand
}

// NewAssigner создаёт Assigner. rng используется для замены невалидных индексов.
func NewAssigner(provider llm.TextGenerationProvider, c *coercer.Coercer, rng *rand.Rand, logger *zap.Logger) *Assigner {
	return &Assigner{
		provider: provider,
		coercer:  c,
		rng:      rng,
		logger:   logger.Named("structure"),
	}
}

// Assign возвращает структуру длины outline.Len() с индексами в [0, K).
// Для упорядоченного шаблона модель не вызывается.
func (a *Assigner) Assign(ctx context.Context, outline domain.Outline, template domain.LayoutTemplate, hints Hints) (domain.PresentationStructure, error) {
	m, k := outline.Len(), template.Len()
	if k == 0 {
		return domain.PresentationStructure{}, fmt.Errorf("%w: template %q has no layouts", domain.ErrInvalidInput, template.Name)
	}
	if m == 0 {
		return domain.PresentationStructure{Slides: []int{}}, nil
	}

	if template.Ordered {
		return Ordered(m, k), nil
	}

	raw, _, err := a.provider.Generate(ctx, llm.Request{
		Operation:    "structure",
		SystemPrompt: systemPrompt(template, m, hints),
		UserPrompt:   userPrompt(outline),
		JSONSchema:   responseSchema(m, k),
		SchemaName:   "presentation_structure",
	})
	if err != nil {
		return domain.PresentationStructure{}, fmt.Errorf("generate presentation structure: %w", err)
	}

	proposed := a.coercer.CoerceIndices(raw, "slides")
	a.mu.Lock()
	indices, replaced := normalize(proposed, m, k, a.rng)
	a.mu.Unlock()

	if replaced > 0 || len(proposed) != m {
		a.logger.Warn("Structure indices repaired",
			zap.Int("expected", m),
			zap.Int("proposed", len(proposed)),
			zap.Int("replaced", replaced),
		)
	}
	return domain.PresentationStructure{Slides: indices}, nil
}

// Ordered раскладывает outline по слотам шаблона по кругу: i mod K.
func Ordered(m, k int) domain.PresentationStructure {
	out := make([]int, m)
	for i := range out {
		out[i] = i % k
	}
	return domain.PresentationStructure{Slides: out}
}

// Normalize приводит предложенные индексы к длине m и диапазону [0, k).
// Недостающие и невалидные индексы заменяются случайным валидным.
func Normalize(proposed []int, m, k int, rng *rand.Rand) []int {
	out, _ := normalize(proposed, m, k, rng)
	return out
}

func normalize(proposed []int, m, k int, rng *rand.Rand) ([]int, int) {
	out := make([]int, m)
	replaced := 0
	for i := range out {
		if i < len(proposed) && proposed[i] >= 0 && proposed[i] < k {
			out[i] = proposed[i]
			continue
		}
		out[i] = rng.Intn(k)
		replaced++
	}
	return out, replaced
}

func responseSchema(m, k int) map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"slides"},
		"properties": map[string]any{
			"slides": map[string]any{
				"type":     "array",
				"minItems": m,
				"maxItems": m,
				"items": map[string]any{
					"type":    "integer",
					"minimum": 0,
					"maximum": k - 1,
				},
			},
		},
	}
}

func systemPrompt(template domain.LayoutTemplate, m int, hints Hints) string {
	var b strings.Builder
	b.WriteString("You select the best slide layout for every slide of a presentation.\n\n")
	b.WriteString("# Available layouts\n")
	for i, l := range template.Slides {
		fmt.Fprintf(&b, "%d. %s", i, layoutTitle(l))
		if l.Description != "" {
			fmt.Fprintf(&b, ": %s", l.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n# Rules\n")
	fmt.Fprintf(&b, "- Return exactly %d layout indices, one per slide, in slide order.\n", m)
	fmt.Fprintf(&b, "- Every index must be an integer between 0 and %d.\n", template.Len()-1)
	b.WriteString("- Pick layouts that fit the slide content; prefer variety across consecutive slides.\n")
	b.WriteString("- Use a title layout only for the opening slide.\n")
	if hints.FromMarkdown {
		b.WriteString("- Slide content was written by the user as markdown; match layouts to its existing structure.\n")
	}
	if hints.Instructions != "" {
		b.WriteString("\n# User instructions\n")
		b.WriteString(hints.Instructions)
		b.WriteString("\n")
	}
	b.WriteString("\nRespond only with JSON: {\"slides\": [int, ...]}")
	return b.String()
}

func userPrompt(outline domain.Outline) string {
	var b strings.Builder
	b.WriteString("# Slides\n")
	for i, s := range outline.Slides {
		fmt.Fprintf(&b, "## Slide %d\n%s\n\n", i+1, s.Content)
	}
	return b.String()
}

func layoutTitle(l domain.SlideLayout) string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}
