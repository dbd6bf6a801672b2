package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deck-server/internal/domain"
)

// @Summary Подписка на вебхук
// @Description Регистрирует URL, на который будут приходить события завершения генерации.
// @Tags webhook
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubscribeWebhookRequest true "Параметры подписки"
// @Success 201 {object} domain.WebhookSubscription
// @Failure 400 {object} ErrorResponse
// @Router /webhook/subscribe [post]
func (h *Handler) subscribeWebhook(c *gin.Context) {
	var req SubscribeWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	sub, err := h.webhooks.Subscribe(c.Request.Context(), userID(c), req.URL, req.Event, req.Secret)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	h.logger.Info("Webhook subscribed",
		zap.String("user_id", sub.UserID),
		zap.String("subscription_id", sub.ID),
		zap.String("event", string(sub.Event)),
	)
	c.JSON(http.StatusCreated, sub)
}

// @Summary Подписки пользователя
// @Tags webhook
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WebhookSubscription
// @Router /webhook [get]
func (h *Handler) listWebhooks(c *gin.Context) {
	subs, err := h.webhooks.List(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	if subs == nil {
		subs = []domain.WebhookSubscription{}
	}
	c.JSON(http.StatusOK, subs)
}

// @Summary Отписка от вебхука
// @Tags webhook
// @Security BearerAuth
// @Param id path string true "ID подписки"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /webhook/{id} [delete]
func (h *Handler) unsubscribeWebhook(c *gin.Context) {
	if err := h.webhooks.Unsubscribe(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}
