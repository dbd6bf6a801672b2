package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/jobs"
	"deck-server/internal/pipeline"
)

const defaultPageLimit = 20

// @Summary Синхронная генерация презентации
// @Description Генерирует презентацию и возвращает путь к экспортированному файлу. Запрос может выполняться минутами.
// @Tags presentation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GeneratePresentationRequest true "Параметры генерации"
// @Success 200 {object} domain.PresentationPathAndEditPath
// @Failure 400 {object} ErrorResponse "Неверные данные запроса"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /presentation/generate [post]
func (h *Handler) generatePresentation(c *gin.Context) {
	uid := userID(c)
	req, ok := h.bindGenerateRequest(c)
	if !ok {
		return
	}

	result, err := h.service.Generate(c.Request.Context(), uid, "", req, nil)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Асинхронная генерация презентации
// @Description Ставит генерацию в очередь и сразу возвращает задачу. Статус доступен по /presentation/status/{id} и через /ws.
// @Tags presentation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GeneratePresentationRequest true "Параметры генерации"
// @Success 202 {object} domain.GenerationJob
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse "Слишком много активных задач"
// @Router /presentation/generate/async [post]
func (h *Handler) generatePresentationAsync(c *gin.Context) {
	uid := userID(c)
	req, ok := h.bindGenerateRequest(c)
	if !ok {
		return
	}

	presentationID := uuid.NewString()
	job, err := h.jobs.Submit(c.Request.Context(), uid, presentationID, func(ctx context.Context, progress jobs.Progress) (any, error) {
		return h.service.Generate(ctx, uid, presentationID, req, progress)
	})
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	h.logger.Info("Generation job submitted",
		zap.String("job_id", job.ID.String()),
		zap.String("presentation_id", presentationID),
		zap.String("user_id", uid),
	)
	c.JSON(http.StatusAccepted, job)
}

// @Summary Перегенерация слайдов
// @Description Заново генерирует содержимое слайдов по сохранённым описаниям и структуре. Выполняется как фоновая задача.
// @Tags presentation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID презентации"
// @Param request body RegenerateRequest false "Формат экспорта"
// @Success 202 {object} domain.GenerationJob
// @Failure 400 {object} ErrorResponse
// @Router /presentation/{id}/regenerate [post]
func (h *Handler) regeneratePresentation(c *gin.Context) {
	uid := userID(c)
	presentationID := c.Param("id")

	var req RegenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			handleBindError(c, err)
			return
		}
	}

	job, err := h.jobs.Submit(c.Request.Context(), uid, presentationID, func(ctx context.Context, progress jobs.Progress) (any, error) {
		return h.service.Regenerate(ctx, uid, presentationID, req.ExportAs, progress)
	})
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusAccepted, job)
}

// @Summary Потоковая генерация описаний слайдов
// @Description Server-Sent Events: события response с type=chunk, затем type=complete с итоговыми описаниями или type=error.
// @Tags presentation
// @Accept json
// @Produce text/event-stream
// @Security BearerAuth
// @Param request body GeneratePresentationRequest true "Параметры генерации"
// @Success 200 {object} OutlinesResponse
// @Router /outlines/stream [post]
func (h *Handler) streamOutlines(c *gin.Context) {
	req, ok := h.bindGenerateRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	outline, err := h.service.StreamOutlines(ctx, req, func(chunk string) error {
		c.SSEvent("response", OutlineChunk{Type: "chunk", Chunk: chunk})
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil {
		h.logger.Warn("Outline stream failed", zap.String("user_id", userID(c)), zap.Error(err))
		c.SSEvent("response", gin.H{"type": "error", "detail": err.Error()})
		c.Writer.Flush()
		return
	}
	c.SSEvent("response", OutlinesResponse{Type: "complete", Outlines: outline})
	c.Writer.Flush()
}

// @Summary Статус задачи генерации
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Success 200 {object} domain.GenerationJob
// @Failure 404 {object} ErrorResponse
// @Router /presentation/status/{id} [get]
func (h *Handler) getJobStatus(c *gin.Context) {
	job, ok := h.ownedJob(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

// @Summary Отмена задачи генерации
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Success 200 {object} domain.GenerationJob
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Задача уже завершена"
// @Router /presentation/cancel/{id} [post]
func (h *Handler) cancelJob(c *gin.Context) {
	job, ok := h.ownedJob(c)
	if !ok {
		return
	}
	if err := h.jobs.Cancel(c.Request.Context(), job.ID); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), job.ID)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, job)
}

// @Summary Презентация со слайдами
// @Tags presentation
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID презентации"
// @Success 200 {object} domain.PresentationWithSlides
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /presentation/{id} [get]
func (h *Handler) getPresentation(c *gin.Context) {
	p, err := h.service.GetPresentation(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Список презентаций пользователя
// @Tags presentation
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} PaginatedPresentations
// @Router /presentation [get]
func (h *Handler) listPresentations(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, err := h.service.ListPresentations(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	if list == nil {
		list = []domain.Presentation{}
	}
	c.JSON(http.StatusOK, PaginatedPresentations{Data: list, Limit: limit, Offset: offset})
}

// @Summary Удаление презентации
// @Tags presentation
// @Security BearerAuth
// @Param id path string true "ID презентации"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /presentation/{id} [delete]
func (h *Handler) deletePresentation(c *gin.Context) {
	if err := h.service.DeletePresentation(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindGenerateRequest разбирает тело запроса и проверяет его сервисом.
func (h *Handler) bindGenerateRequest(c *gin.Context) (req pipeline.GenerateRequest, ok bool) {
	var body GeneratePresentationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		handleBindError(c, err)
		return req, false
	}
	req = body.toPipeline()
	if err := h.service.Validate(&req); err != nil {
		handleServiceError(c, err, h.logger)
		return req, false
	}
	return req, true
}

// ownedJob возвращает задачу текущего пользователя. Чужие задачи не видны.
func (h *Handler) ownedJob(c *gin.Context) (domain.GenerationJob, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handleServiceError(c, fmt.Errorf("%w: invalid job id", domain.ErrInvalidInput), h.logger)
		return domain.GenerationJob{}, false
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err == nil && job.UserID != userID(c) {
		err = fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		handleServiceError(c, err, h.logger)
		return domain.GenerationJob{}, false
	}
	return job, true
}
