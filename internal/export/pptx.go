package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PPTXRenderer отправляет структурированную модель презентации во внешний рендерер
// и получает готовый .pptx.
type PPTXRenderer struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewPPTXRenderer создаёт клиент рендерера. baseURL - адрес сервиса рендеринга.
func NewPPTXRenderer(baseURL string, timeout time.Duration, logger *zap.Logger) *PPTXRenderer {
	return &PPTXRenderer{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/export/pptx",
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("PPTXRenderer"),
	}
}

// Render отдаёт рендереру {"presentation":..., "slides":[...]}.
func (r *PPTXRenderer) Render(ctx context.Context, deck Deck) ([]byte, error) {
	body, err := json.Marshal(deck)
	if err != nil {
		return nil, fmt.Errorf("marshal deck: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create renderer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Renderer returned non-OK status",
			zap.Int("status_code", resp.StatusCode),
			zap.String("presentation_id", deck.Presentation.ID),
		)
		return nil, fmt.Errorf("%w: status %d", ErrRenderFailed, resp.StatusCode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRenderFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrRenderFailed)
	}
	return data, nil
}
