package coercer

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"deck-server/internal/domain"
)

// RepairContent подгоняет содержимое слайда под JSON-схему макета.
// Исходная карта не изменяется. Каждая правка логируется на уровне debug.
func (c *Coercer) RepairContent(content, schema map[string]any) map[string]any {
	r := repairer{logger: c.logger}
	out := r.unwrapSlides(content)

	props := properties(schema)
	for _, f := range systemFields {
		if _, declared := props[f]; declared {
			continue
		}
		if _, ok := out[f]; ok {
			delete(out, f)
			r.note("removed system field", f)
		}
	}

	return r.repairObject(out, schema, "")
}

// ExtractSpeakerNote отделяет заметку докладчика от содержимого слайда.
func ExtractSpeakerNote(content map[string]any) (map[string]any, string) {
	out := make(map[string]any, len(content))
	var note string
	for k, v := range content {
		if k == domain.SpeakerNoteKey {
			if s, ok := v.(string); ok {
				note = strings.TrimSpace(s)
			}
			continue
		}
		out[k] = v
	}
	return out, note
}

type repairer struct {
	logger *zap.Logger
	fixes  int
}

func (r *repairer) note(msg, path string) {
	r.fixes++
	r.logger.Debug("slide content repaired: "+msg, zap.String("field", path))
}

// unwrapSlides разворачивает {"slides":[{...}]} в первый элемент.
func (r *repairer) unwrapSlides(content map[string]any) map[string]any {
	if slides, ok := content["slides"].([]any); ok && len(content) == 1 {
		if len(slides) > 0 {
			if first, ok := slides[0].(map[string]any); ok {
				r.note("unwrapped slides array", "slides")
				return deepCopyMap(first)
			}
		}
	}
	return deepCopyMap(content)
}

func (r *repairer) repairObject(obj map[string]any, schema map[string]any, path string) map[string]any {
	if obj == nil {
		obj = map[string]any{}
	}
	props := properties(schema)
	required := make(map[string]bool)
	for _, name := range RequiredFields(schema) {
		required[name] = true
	}

	for name, prop := range props {
		fieldPath := joinPath(path, name)
		value, present := obj[name]
		switch {
		case present:
			obj[name] = r.repairValue(value, prop, fieldPath)
		case required[name]:
			obj[name] = r.repairValue(defaultFor(name, prop), prop, fieldPath)
			r.note("synthesized missing required field", fieldPath)
		default:
			if def, ok := prop["default"]; ok {
				obj[name] = deepCopyValue(def)
			}
		}
	}
	return obj
}

func (r *repairer) repairValue(value any, schema map[string]any, path string) any {
	switch schemaType(schema) {
	case "string":
		return r.repairString(value, schema, path)
	case "array":
		return r.repairArray(value, schema, path)
	case "object":
		m, ok := value.(map[string]any)
		if !ok {
			r.note("replaced non-object value", path)
			m = nil
		}
		return r.repairObject(m, schema, path)
	case "number", "integer":
		return r.repairNumber(value, schema, path)
	case "boolean":
		if _, ok := value.(bool); !ok {
			r.note("replaced non-boolean value", path)
			return false
		}
	}
	return value
}

func (r *repairer) repairString(value any, schema map[string]any, path string) string {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case nil:
		r.note("replaced null string", path)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
		r.note("converted number to string", path)
	default:
		s = fmt.Sprint(v)
		r.note("converted value to string", path)
	}

	runes := []rune(s)
	if maxLen, ok := intKeyword(schema, "maxLength"); ok && len(runes) > maxLen {
		runes = runes[:maxLen]
		s = string(runes)
		r.note("truncated string to maxLength", path)
	}
	if minLen, ok := intKeyword(schema, "minLength"); ok && len(runes) < minLen {
		s += strings.Repeat(" ", minLen-len(runes))
		r.note("padded string to minLength", path)
	}
	return s
}

func (r *repairer) repairArray(value any, schema map[string]any, path string) []any {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case nil:
		items = []any{}
		r.note("replaced null array", path)
	default:
		items = []any{v}
		r.note("wrapped scalar into array", path)
	}

	itemSchema := itemsSchema(schema)
	if maxItems, ok := intKeyword(schema, "maxItems"); ok && len(items) > maxItems {
		items = items[:maxItems]
		r.note("truncated array to maxItems", path)
	}

	out := make([]any, 0, len(items))
	for i, item := range items {
		out = append(out, r.repairValue(item, itemSchema, fmt.Sprintf("%s[%d]", path, i)))
	}

	if minItems, ok := intKeyword(schema, "minItems"); ok && len(out) < minItems {
		for i := len(out); i < minItems; i++ {
			out = append(out, r.repairValue(defaultFor("", itemSchema), itemSchema, fmt.Sprintf("%s[%d]", path, i)))
		}
		r.note("padded array to minItems", path)
	}
	return out
}

func (r *repairer) repairNumber(value any, schema map[string]any, path string) any {
	switch v := value.(type) {
	case float64, int, int64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			r.note("parsed numeric string", path)
			return f
		}
	}
	r.note("replaced non-numeric value", path)
	if def, ok := schema["default"]; ok {
		return deepCopyValue(def)
	}
	return float64(0)
}

// defaultFor строит значение по умолчанию для отсутствующего поля.
func defaultFor(name string, schema map[string]any) any {
	if def, ok := schema["default"]; ok {
		return deepCopyValue(def)
	}
	switch name {
	case domain.ImageURLKey:
		return domain.PlaceholderImageURL
	case domain.IconURLKey:
		return domain.PlaceholderIconURL
	}
	switch schemaType(schema) {
	case "string":
		return ""
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	case "number", "integer":
		return float64(0)
	case "boolean":
		return false
	}
	return ""
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	}
	return v
}
