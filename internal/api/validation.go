package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"deck-server/internal/domain"
)

// RegisterValidators добавляет в валидатор gin правила для полей запроса генерации.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	rules := map[string]validator.Func{
		"tone": func(fl validator.FieldLevel) bool {
			return domain.Tone(fl.Field().String()).IsValid()
		},
		"verbosity": func(fl validator.FieldLevel) bool {
			return domain.Verbosity(fl.Field().String()).IsValid()
		},
		"export_format": func(fl validator.FieldLevel) bool {
			f := domain.ExportFormat(fl.Field().String())
			return f == domain.ExportFormatPPTX || f == domain.ExportFormatPDF
		},
		"webhook_event": func(fl validator.FieldLevel) bool {
			return domain.WebhookEvent(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}
