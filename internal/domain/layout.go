package domain

// SlideLayout - один слот шаблона со схемой содержимого слайда.
type SlideLayout struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name,omitempty" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description"`
	JSONSchema  map[string]any `json:"json_schema" yaml:"json_schema"`
}

// LayoutTemplate - именованный набор слотов.
// Ordered означает, что шаблон сам задаёт порядок слотов и LLM для выбора не нужен.
type LayoutTemplate struct {
	Name    string        `json:"name" yaml:"name"`
	Ordered bool          `json:"ordered" yaml:"ordered"`
	Slides  []SlideLayout `json:"slides" yaml:"slides"`
}

// Len возвращает количество слотов в шаблоне.
func (t LayoutTemplate) Len() int {
	return len(t.Slides)
}
