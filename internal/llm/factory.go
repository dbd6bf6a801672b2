package llm

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"deck-server/internal/config"
)

// generationDefaults - значения из конфигурации, если запрос их не задаёт.
type generationDefaults struct {
	Temperature float64
	MaxTokens   int
}

func (d generationDefaults) temperature(v *float64) float64 {
	if v != nil {
		return *v
	}
	return d.Temperature
}

func (d generationDefaults) maxTokens(v *int) int {
	if v != nil {
		return *v
	}
	return d.MaxTokens
}

// NewProvider создаёт провайдер по AI_CLIENT_TYPE.
func NewProvider(cfg config.AIConfig, logger *zap.Logger) (TextGenerationProvider, error) {
	defaults := generationDefaults{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}
	httpClient := &http.Client{Timeout: cfg.Timeout}
	log := logger.Named("llm")

	switch strings.ToLower(cfg.ClientType) {
	case providerOpenAI:
		oaCfg := openaigo.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oaCfg.BaseURL = cfg.BaseURL
		}
		oaCfg.HTTPClient = httpClient
		log.Info("OpenAI provider created",
			zap.String("base_url", cfg.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return &openAIProvider{
			client:   openaigo.NewClientWithConfig(oaCfg),
			model:    cfg.Model,
			defaults: defaults,
			logger:   log,
		}, nil
	case providerOllama:
		// нативный API Ollama не использует суффикс /v1
		base := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse ollama base url %q: %w", base, err)
		}
		log.Info("Ollama provider created",
			zap.String("base_url", base),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return &ollamaProvider{
			client:   api.NewClient(parsed, httpClient),
			model:    cfg.Model,
			timeout:  cfg.Timeout,
			defaults: defaults,
			logger:   log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI client type %q", cfg.ClientType)
	}
}
