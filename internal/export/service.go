// Package export превращает сохранённую презентацию в файл PDF или PPTX.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/storage"
)

// ErrRenderFailed - рендерер не смог построить документ.
var ErrRenderFailed = errors.New("presentation render failed")

var exportDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deck_export_duration_seconds",
		Help:    "Duration of presentation export by format.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"format", "status"},
)

// Deck - презентация вместе со слайдами в порядке показа.
type Deck struct {
	Presentation domain.Presentation `json:"presentation"`
	Slides       []domain.Slide      `json:"slides"`
}

// Renderer строит документ одного формата.
type Renderer interface {
	Render(ctx context.Context, deck Deck) ([]byte, error)
}

var extensions = map[domain.ExportFormat]string{
	domain.ExportFormatPDF:  "pdf",
	domain.ExportFormatPPTX: "pptx",
}

// Service выбирает рендерер по формату и кладёт результат в хранилище.
type Service struct {
	renderers map[domain.ExportFormat]Renderer
	store     storage.BlobStore
	logger    *zap.Logger
}

// NewService создаёт сервис экспорта. pptx может быть nil, тогда формат недоступен.
func NewService(pdf, pptx Renderer, store storage.BlobStore, logger *zap.Logger) *Service {
	renderers := map[domain.ExportFormat]Renderer{}
	if pdf != nil {
		renderers[domain.ExportFormatPDF] = pdf
	}
	if pptx != nil {
		renderers[domain.ExportFormatPPTX] = pptx
	}
	return &Service{renderers: renderers, store: store, logger: logger.Named("Export")}
}

// Supports сообщает, настроен ли рендерер для формата.
func (s *Service) Supports(format domain.ExportFormat) bool {
	_, ok := s.renderers[format]
	return ok
}

// Export рендерит презентацию и возвращает путь к файлу и путь редактора.
func (s *Service) Export(ctx context.Context, p domain.Presentation, slides []domain.Slide, format domain.ExportFormat) (domain.PresentationPathAndEditPath, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("%w: export format %q is not available", domain.ErrInvalidInput, format)
	}

	started := time.Now()
	data, err := renderer.Render(ctx, Deck{Presentation: p, Slides: slides})
	if err != nil {
		exportDuration.WithLabelValues(string(format), "error").Observe(time.Since(started).Seconds())
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("render %s: %w", format, err)
	}

	name := fmt.Sprintf("%s/%s.%s", p.ID, started.UTC().Format("20060102T150405"), extensions[format])
	path, err := s.store.Put(ctx, name, data)
	if err != nil {
		exportDuration.WithLabelValues(string(format), "error").Observe(time.Since(started).Seconds())
		return domain.PresentationPathAndEditPath{}, fmt.Errorf("store exported file: %w", err)
	}
	exportDuration.WithLabelValues(string(format), "success").Observe(time.Since(started).Seconds())

	s.logger.Info("Presentation exported",
		zap.String("presentation_id", p.ID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)
	return domain.PresentationPathAndEditPath{
		PresentationID: p.ID,
		Path:           path,
		EditPath:       EditPath(p.ID),
	}, nil
}

// EditPath - адрес страницы редактора презентации.
func EditPath(presentationID string) string {
	return "/presentation?id=" + presentationID
}
