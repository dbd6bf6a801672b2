package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus - статус задачи генерации.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal возвращает true для статусов, из которых нет переходов.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// JobError - структурированная ошибка, прикрепляемая к задаче и к failed-вебхуку.
type JobError struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail"`
}

// GenerationJob - запись асинхронной задачи, которую опрашивает клиент.
type GenerationJob struct {
	ID             uuid.UUID  `json:"id"`
	UserID         string     `json:"user_id,omitempty"`
	PresentationID string     `json:"presentation_id,omitempty"`
	Status         JobStatus  `json:"status"`
	Message        string     `json:"message"`
	Result         any        `json:"data,omitempty"`
	Error          *JobError  `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}
