// Package llm содержит текстовые LLM провайдеры конвейера генерации.
package llm

import (
	"context"
	"errors"
)

// ErrGenerationFailed - ошибка провайдера (авторизация, квота, сеть, пустой ответ).
// Такие ошибки не маскируются и прерывают генерацию.
var ErrGenerationFailed = errors.New("text generation failed")

// Request - один запрос к модели.
// Если JSONSchema задана, провайдер просит модель вернуть JSON этой формы.
type Request struct {
	Operation    string // outline | structure | content, используется как метка метрик
	SystemPrompt string
	UserPrompt   string
	JSONSchema   map[string]any
	SchemaName   string
	Temperature  *float64
	MaxTokens    *int
}

// Usage - учёт токенов по запросу.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Estimated        bool
}

// ChunkHandler получает фрагменты потокового ответа.
type ChunkHandler func(chunk string) error

// TextGenerationProvider - возможность "сгенерировать текст по промпту".
// Реализация выбирается один раз при старте через NewProvider.
type TextGenerationProvider interface {
	// Generate возвращает полный ответ модели.
	Generate(ctx context.Context, req Request) (string, Usage, error)
	// Stream вызывает handler для каждого фрагмента ответа.
	// Ошибка handler прерывает поток и возвращается вызывающему.
	Stream(ctx context.Context, req Request, handler ChunkHandler) (Usage, error)
	// Model возвращает имя используемой модели.
	Model() string
}
