package domain

// Ключи плейсхолдеров ассетов внутри содержимого слайда.
const (
	ImageURLKey    = "__image_url__"
	ImagePromptKey = "__image_prompt__"
	IconURLKey     = "__icon_url__"
	IconQueryKey   = "__icon_query__"
	SpeakerNoteKey = "__speaker_note__"
)

// Значения по умолчанию, когда ассет не удалось получить.
const (
	PlaceholderImageURL = "/static/images/placeholder.jpg"
	PlaceholderIconURL  = "/static/icons/placeholder.svg"
)
