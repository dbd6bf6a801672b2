package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrImageGenerationFailed - сервер генерации изображений вернул ошибку или пустые данные.
var ErrImageGenerationFailed = errors.New("image generation failed")

// ErrImageSaveFailed - не удалось сохранить изображение в хранилище.
var ErrImageSaveFailed = errors.New("image save failed")

// ImageProvider - возможность "сгенерировать изображение по промпту".
type ImageProvider interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// HTTPImageProviderConfig - параметры HTTP провайдера изображений.
type HTTPImageProviderConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Ratio         string
}

// HTTPImageProvider вызывает внешний сервер генерации: POST {base}/generate.
// Запросы ограничиваются token bucket лимитером, общим для всех задач.
type HTTPImageProvider struct {
	baseURL string
	ratio   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
	Ratio  string `json:"ratio"`
}

// NewHTTPImageProvider создаёт провайдер. RatePerSecond <= 0 отключает ограничение.
func NewHTTPImageProvider(cfg HTTPImageProviderConfig, logger *zap.Logger) *HTTPImageProvider {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	ratio := cfg.Ratio
	if ratio == "" {
		ratio = "16:9"
	}
	return &HTTPImageProvider{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		ratio:   ratio,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.Named("image_provider").With(zap.String("api_url", cfg.BaseURL)),
	}
}

func (p *HTTPImageProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrImageGenerationFailed, err)
	}

	body, err := json.Marshal(generateImageRequest{Prompt: prompt, Ratio: p.ratio})
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	endpoint := p.baseURL + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageGenerationFailed, err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		p.logger.Error("Image API returned non-OK status",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response_body", truncate(data, 512)),
		)
		return nil, fmt.Errorf("%w: status %d", ErrImageGenerationFailed, resp.StatusCode)
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrImageGenerationFailed, readErr)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrImageGenerationFailed)
	}
	return data, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
