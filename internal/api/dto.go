package api

import (
	"deck-server/internal/domain"
	"deck-server/internal/pipeline"
)

// GeneratePresentationRequest - тело запроса генерации.
type GeneratePresentationRequest struct {
	Content                string              `json:"content" example:"Renewable energy trends in 2025"`
	SlidesMarkdown         []string            `json:"slides_markdown"`
	Files                  []string            `json:"files"`
	NSlides                int                 `json:"n_slides" binding:"omitempty,min=1,max=50" example:"8"`
	Language               string              `json:"language" binding:"max=64" example:"English"`
	Template               string              `json:"template" example:"general"`
	Tone                   domain.Tone         `json:"tone" binding:"omitempty,tone" example:"professional"`
	Verbosity              domain.Verbosity    `json:"verbosity" binding:"omitempty,verbosity" example:"standard"`
	Instructions           string              `json:"instructions" binding:"max=2000"`
	IncludeTitleSlide      *bool               `json:"include_title_slide"`
	IncludeTableOfContents bool                `json:"include_table_of_contents"`
	ExportAs               domain.ExportFormat `json:"export_as" binding:"omitempty,export_format" example:"pptx"`
}

func (r GeneratePresentationRequest) toPipeline() pipeline.GenerateRequest {
	// титульный слайд включён, если клиент явно не отказался
	includeTitle := r.IncludeTitleSlide == nil || *r.IncludeTitleSlide
	return pipeline.GenerateRequest{
		Content:                r.Content,
		SlidesMarkdown:         r.SlidesMarkdown,
		Files:                  r.Files,
		NSlides:                r.NSlides,
		Language:               r.Language,
		Template:               r.Template,
		Tone:                   r.Tone,
		Verbosity:              r.Verbosity,
		Instructions:           r.Instructions,
		IncludeTitleSlide:      includeTitle,
		IncludeTableOfContents: r.IncludeTableOfContents,
		ExportAs:               r.ExportAs,
	}
}

// RegenerateRequest - параметры перегенерации слайдов.
type RegenerateRequest struct {
	ExportAs domain.ExportFormat `json:"export_as" binding:"omitempty,export_format" example:"pdf"`
}

// SubscribeWebhookRequest - подписка на событие генерации.
type SubscribeWebhookRequest struct {
	URL    string              `json:"url" binding:"required,url" example:"https://example.com/hooks/deck"`
	Event  domain.WebhookEvent `json:"event" binding:"required,webhook_event" example:"presentation.generation.completed"`
	Secret string              `json:"secret"`
}

// OutlinesResponse - итог потоковой генерации описаний.
type OutlinesResponse struct {
	Type     string         `json:"type"`
	Outlines domain.Outline `json:"outlines"`
}

// OutlineChunk - фрагмент потока описаний.
type OutlineChunk struct {
	Type  string `json:"type"`
	Chunk string `json:"chunk"`
}

// PaginatedPresentations - страница списка презентаций.
type PaginatedPresentations struct {
	Data   []domain.Presentation `json:"data"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}
