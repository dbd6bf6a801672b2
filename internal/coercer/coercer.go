// Package coercer превращает ненадёжный ответ LLM в JSON-объект нужной формы.
// Coerce никогда не возвращает ошибку: при неудаче всех стратегий
// сырой текст оборачивается в объект-заглушку.
package coercer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"deck-server/internal/domain"
)

// Имена стратегий разбора, в порядке применения.
const (
	StrategyStrict     = "strict"
	StrategyPermissive = "permissive"
	StrategyBalanced   = "balanced_object"
	StrategyFallback   = "fallback"
)

// DefaultFallbackKey - ключ, под которым сохраняется сырой текст, если JSON найти не удалось.
const DefaultFallbackKey = "content"

var (
	errEmptyInput = errors.New("empty input")
	errNotObject  = errors.New("top-level value is not an object")
	errNoObject   = errors.New("no balanced object found")
)

// ParseFunc - одна стратегия разбора.
type ParseFunc func(raw string) (map[string]any, error)

// Strategy - именованная стратегия разбора.
type Strategy struct {
	Name  string
	Parse ParseFunc
}

// Result - результат приведения.
type Result struct {
	Value    map[string]any
	Strategy string
}

// Fallback показывает, что JSON так и не был найден.
func (r Result) Fallback() bool {
	return r.Strategy == StrategyFallback
}

// Coercer применяет цепочку стратегий до первой успешной.
type Coercer struct {
	logger      *zap.Logger
	strategies  []Strategy
	fallbackKey string
}

// New создаёт Coercer со стандартной цепочкой: strict -> permissive -> balanced_object.
func New(logger *zap.Logger) *Coercer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coercer{
		logger: logger.Named("Coercer"),
		strategies: []Strategy{
			{Name: StrategyStrict, Parse: parseStrict},
			{Name: StrategyPermissive, Parse: parsePermissive},
			{Name: StrategyBalanced, Parse: parseBalanced},
		},
		fallbackKey: DefaultFallbackKey,
	}
}

// WithStrategies возвращает копию с другой цепочкой стратегий.
func (c *Coercer) WithStrategies(strategies ...Strategy) *Coercer {
	clone := *c
	clone.strategies = append([]Strategy(nil), strategies...)
	return &clone
}

// Coerce разбирает текст в объект. Всегда возвращает непустой Value.
func (c *Coercer) Coerce(raw string) Result {
	var failures []string
	for _, s := range c.strategies {
		value, err := s.Parse(raw)
		if err == nil {
			if len(failures) > 0 {
				c.logger.Debug("LLM output recovered",
					zap.String("strategy", s.Name),
					zap.Strings("failed_strategies", failures),
				)
			}
			return Result{Value: value, Strategy: s.Name}
		}
		failures = append(failures, fmt.Sprintf("%s: %v", s.Name, err))
	}

	c.logger.Warn("LLM output is not JSON, wrapping raw text",
		zap.Strings("failed_strategies", failures),
		zap.Int("raw_length", len(raw)),
	)
	return Result{
		Value:    map[string]any{c.fallbackKey: raw},
		Strategy: StrategyFallback,
	}
}

// CoerceOutline приводит ответ генератора описаний к domain.Outline.
// Если JSON не найден, весь текст становится единственным описанием.
func (c *Coercer) CoerceOutline(raw string) domain.Outline {
	res := c.Coerce(raw)
	if res.Fallback() {
		return domain.Outline{Slides: []domain.OutlineEntry{{Content: strings.TrimSpace(raw)}}}
	}

	items, ok := res.Value["slides"].([]any)
	if !ok {
		items, ok = res.Value["outlines"].([]any)
	}
	if !ok {
		c.logger.Warn("outline JSON has no slides array, using raw text", zap.String("strategy", res.Strategy))
		return domain.Outline{Slides: []domain.OutlineEntry{{Content: strings.TrimSpace(raw)}}}
	}

	outline := domain.Outline{Slides: make([]domain.OutlineEntry, 0, len(items))}
	for i, item := range items {
		content := outlineItemContent(item)
		if content == "" {
			c.logger.Debug("skipping empty outline item", zap.Int("index", i))
			continue
		}
		outline.Slides = append(outline.Slides, domain.OutlineEntry{Content: content})
	}
	if len(outline.Slides) == 0 {
		return domain.Outline{Slides: []domain.OutlineEntry{{Content: strings.TrimSpace(raw)}}}
	}
	return outline
}

// CoerceIndices достаёт из ответа список целых индексов по ключу key.
// Нечисловые элементы превращаются в -1, чтобы их заменила нормализация структуры.
func (c *Coercer) CoerceIndices(raw, key string) []int {
	res := c.Coerce(raw)
	items, ok := res.Value[key].([]any)
	if !ok {
		c.logger.Warn("no index array in LLM output", zap.String("key", key), zap.String("strategy", res.Strategy))
		return nil
	}
	out := make([]int, len(items))
	for i, item := range items {
		out[i] = toIndex(item)
	}
	return out
}

func outlineItemContent(item any) string {
	switch v := item.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		content, _ := v["content"].(string)
		title, _ := v["title"].(string)
		content = strings.TrimSpace(content)
		title = strings.TrimSpace(title)
		switch {
		case content == "":
			return title
		case title == "" || strings.Contains(content, title):
			return content
		default:
			return "# " + title + "\n\n" + content
		}
	}
	return ""
}

func toIndex(v any) int {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return -1
		}
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return -1
		}
		return int(i)
	case string:
		var i int
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &i); err != nil {
			return -1
		}
		return i
	}
	return -1
}

func parseStrict(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errEmptyInput
	}
	return decodeObject(trimmed)
}

func parsePermissive(raw string) (map[string]any, error) {
	cleaned := Sanitize(raw)
	if cleaned == "" {
		return nil, errEmptyInput
	}
	return decodeObject(BalanceBrackets(cleaned))
}

func parseBalanced(raw string) (map[string]any, error) {
	span, ok := FirstBalancedObject(stripFences(raw))
	if !ok {
		return nil, errNoObject
	}
	return decodeObject(BalanceBrackets(Sanitize(span)))
}

// decodeObject разбирает JSON. Массив верхнего уровня трактуется как список слайдов.
func decodeObject(s string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		return map[string]any{"slides": t}, nil
	}
	return nil, errNotObject
}
