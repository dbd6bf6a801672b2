// Package api реализует HTTP интерфейс сервиса генерации презентаций.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/jobs"
	"deck-server/internal/llm"
	"deck-server/internal/pipeline"
)

// GenerationService - операции конвейера, доступные через API.
type GenerationService interface {
	Validate(req *pipeline.GenerateRequest) error
	Generate(ctx context.Context, userID, presentationID string, req pipeline.GenerateRequest, progress func(string)) (domain.PresentationPathAndEditPath, error)
	Regenerate(ctx context.Context, userID, presentationID string, format domain.ExportFormat, progress func(string)) (domain.PresentationPathAndEditPath, error)
	StreamOutlines(ctx context.Context, req pipeline.GenerateRequest, onChunk llm.ChunkHandler) (domain.Outline, error)
	GetPresentation(ctx context.Context, userID, presentationID string) (domain.PresentationWithSlides, error)
	ListPresentations(ctx context.Context, userID string, limit, offset int) ([]domain.Presentation, error)
	DeletePresentation(ctx context.Context, userID, presentationID string) error
}

// JobRunner запускает и отслеживает фоновые задачи.
type JobRunner interface {
	Submit(ctx context.Context, userID, presentationID string, fn jobs.Func) (domain.GenerationJob, error)
	Get(ctx context.Context, id uuid.UUID) (domain.GenerationJob, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

// WebhookSubscriptions управляет подписками на вебхуки.
type WebhookSubscriptions interface {
	Subscribe(ctx context.Context, userID, url string, event domain.WebhookEvent, secret string) (*domain.WebhookSubscription, error)
	List(ctx context.Context, userID string) ([]domain.WebhookSubscription, error)
	Unsubscribe(ctx context.Context, userID, id string) error
}

// Handler обрабатывает запросы /api/v1/ppt.
type Handler struct {
	service  GenerationService
	jobs     JobRunner
	webhooks WebhookSubscriptions
	hub      *JobHub
	logger   *zap.Logger
}

// NewHandler создаёт обработчик. hub может быть nil, тогда /ws не регистрируется.
func NewHandler(service GenerationService, jobs JobRunner, webhooks WebhookSubscriptions, hub *JobHub, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		jobs:     jobs,
		webhooks: webhooks,
		hub:      hub,
		logger:   logger.Named("PresentationHandler"),
	}
}

// RegisterRoutes регистрирует маршруты в группе. auth обязателен,
// rateLimit применяется к запуску генерации и может быть nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc, rateLimit gin.HandlerFunc) {
	limited := []gin.HandlerFunc{}
	if rateLimit != nil {
		limited = append(limited, rateLimit)
	}

	ppt := rg.Group("", auth)
	{
		ppt.POST("/presentation/generate", append(limited, h.generatePresentation)...)
		ppt.POST("/presentation/generate/async", append(limited, h.generatePresentationAsync)...)
		ppt.POST("/presentation/:id/regenerate", append(limited, h.regeneratePresentation)...)
		ppt.POST("/outlines/stream", append(limited, h.streamOutlines)...)
		ppt.GET("/presentation/status/:id", h.getJobStatus)
		ppt.POST("/presentation/cancel/:id", h.cancelJob)
		ppt.GET("/presentation", h.listPresentations)
		ppt.GET("/presentation/:id", h.getPresentation)
		ppt.DELETE("/presentation/:id", h.deletePresentation)

		ppt.POST("/webhook/subscribe", h.subscribeWebhook)
		ppt.GET("/webhook", h.listWebhooks)
		ppt.DELETE("/webhook/:id", h.unsubscribeWebhook)

		if h.hub != nil {
			ppt.GET("/ws", h.hub.ServeWS)
		}
	}
}
