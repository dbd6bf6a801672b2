package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"deck-server/internal/domain"
)

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Detail string `json:"detail" example:"invalid input data: n_slides must be greater than 0"`
}

// handleServiceError сопоставляет ошибку с HTTP кодом и прерывает запрос.
// Детали внутренних ошибок клиенту не отдаются.
func handleServiceError(c *gin.Context, err error, logger *zap.Logger) {
	status := domain.StatusCode(err)
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		detail = http.StatusText(status)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// handleBindError отвечает 400 на ошибку разбора или валидации тела запроса.
func handleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	detail := "invalid request body"
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		detail = "field " + fe.Field() + " failed on the '" + fe.Tag() + "' rule"
	}
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Detail: detail})
}
