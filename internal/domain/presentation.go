package domain

import (
	"time"
)

// Tone - тон повествования презентации.
type Tone string

const (
	ToneDefault      Tone = "default"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneFunny        Tone = "funny"
	ToneEducational  Tone = "educational"
	ToneSalesPitch   Tone = "sales_pitch"
)

// Verbosity - насколько плотно заполняются текстовые поля слайда.
type Verbosity string

const (
	VerbosityConcise   Verbosity = "concise"
	VerbosityStandard  Verbosity = "standard"
	VerbosityTextHeavy Verbosity = "text-heavy"
)

// ExportFormat - формат итогового файла.
type ExportFormat string

const (
	ExportFormatPPTX ExportFormat = "pptx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// IsValid проверяет, что тон входит в список поддерживаемых.
func (t Tone) IsValid() bool {
	switch t {
	case ToneDefault, ToneCasual, ToneProfessional, ToneFunny, ToneEducational, ToneSalesPitch:
		return true
	}
	return false
}

// IsValid проверяет значение verbosity.
func (v Verbosity) IsValid() bool {
	switch v {
	case VerbosityConcise, VerbosityStandard, VerbosityTextHeavy:
		return true
	}
	return false
}

// OutlineEntry - markdown-описание одного слайда до генерации контента.
type OutlineEntry struct {
	Content string `json:"content"`
}

// Outline - упорядоченный список описаний слайдов.
type Outline struct {
	Slides []OutlineEntry `json:"slides"`
}

// Len возвращает количество описаний.
func (o Outline) Len() int {
	return len(o.Slides)
}

// PresentationStructure сопоставляет каждому описанию индекс слайда-макета в шаблоне.
type PresentationStructure struct {
	Slides []int `json:"slides"`
}

// Slide - сгенерированный слайд презентации.
type Slide struct {
	ID             string         `json:"id" db:"id"`
	PresentationID string         `json:"presentation_id" db:"presentation_id"`
	Index          int            `json:"index" db:"slide_index"`
	LayoutGroup    string         `json:"layout_group" db:"layout_group"`
	LayoutID       string         `json:"layout" db:"layout_id"`
	Content        map[string]any `json:"content" db:"content"`
	SpeakerNote    string         `json:"speaker_note,omitempty" db:"speaker_note"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// Presentation - агрегат презентации. Слайды хранятся отдельно и ссылаются на presentation_id.
type Presentation struct {
	ID                     string                `json:"id" db:"id"`
	UserID                 string                `json:"user_id" db:"user_id"`
	Content                string                `json:"content" db:"content"`
	NSlides                int                   `json:"n_slides" db:"n_slides"`
	Language               string                `json:"language" db:"language"`
	Tone                   Tone                  `json:"tone" db:"tone"`
	Verbosity              Verbosity             `json:"verbosity" db:"verbosity"`
	Instructions           string                `json:"instructions,omitempty" db:"instructions"`
	IncludeTitleSlide      bool                  `json:"include_title_slide" db:"include_title_slide"`
	IncludeTableOfContents bool                  `json:"include_table_of_contents" db:"include_table_of_contents"`
	Outlines               Outline               `json:"outlines" db:"outlines"`
	Layout                 LayoutTemplate        `json:"layout" db:"layout"`
	Structure              PresentationStructure `json:"structure" db:"structure"`
	Title                  string                `json:"title" db:"title"`
	CreatedAt              time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time             `json:"updated_at" db:"updated_at"`
}

// PresentationWithSlides - презентация вместе со слайдами (ответ API).
type PresentationWithSlides struct {
	Presentation
	Slides []Slide `json:"slides"`
}

// PresentationPathAndEditPath - результат успешной генерации.
type PresentationPathAndEditPath struct {
	PresentationID string `json:"presentation_id"`
	Path           string `json:"path"`
	EditPath       string `json:"edit_path"`
}
