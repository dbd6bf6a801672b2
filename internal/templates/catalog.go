// Package templates загружает каталог шаблонов презентаций.
package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"deck-server/internal/domain"
)

// catalogFile - формат файла каталога.
type catalogFile struct {
	Templates []domain.LayoutTemplate `yaml:"templates" json:"templates"`
}

// Catalog - неизменяемый набор шаблонов, доступный по имени.
type Catalog struct {
	byName map[string]domain.LayoutTemplate
}

// Load читает каталог из YAML/JSON файла.
func Load(path string) (*Catalog, error) {
	var file catalogFile
	if err := cleanenv.ReadConfig(path, &file); err != nil {
		return nil, fmt.Errorf("read template catalog %s: %w", path, err)
	}
	return New(file.Templates...)
}

// New собирает каталог из готовых шаблонов и проверяет их.
func New(templates ...domain.LayoutTemplate) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]domain.LayoutTemplate, len(templates))}
	for _, t := range templates {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("template without name")
		}
		if len(t.Slides) == 0 {
			return nil, fmt.Errorf("template %q has no slide layouts", name)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("duplicate template %q", name)
		}
		for i := range t.Slides {
			if t.Slides[i].ID == "" {
				return nil, fmt.Errorf("template %q: layout %d has no id", name, i)
			}
			t.Slides[i].JSONSchema = normalizeMap(t.Slides[i].JSONSchema)
		}
		t.Name = name
		c.byName[name] = t
	}
	return c, nil
}

// Get возвращает шаблон по имени или domain.ErrTemplateNotFound.
func (c *Catalog) Get(name string) (domain.LayoutTemplate, error) {
	t, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return domain.LayoutTemplate{}, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, name)
	}
	return t, nil
}

// Names возвращает имена шаблонов в алфавитном порядке.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// normalizeMap приводит вложенные map[any]any (yaml) к map[string]any,
// чтобы схемы одинаково обрабатывались после JSON и YAML.
func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
