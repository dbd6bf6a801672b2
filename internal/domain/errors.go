package domain

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input data")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrJobNotCancellable = errors.New("job cannot be cancelled in its current state")
	ErrTooManyJobs       = errors.New("too many active generation jobs")
)

// StatusCode сопоставляет ошибку с HTTP кодом для ответов API и ошибок задач.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrTemplateNotFound):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrJobNotCancellable):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyJobs):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewJobError строит структурированную ошибку задачи.
func NewJobError(err error) *JobError {
	if err == nil {
		return nil
	}
	return &JobError{StatusCode: StatusCode(err), Detail: err.Error()}
}
