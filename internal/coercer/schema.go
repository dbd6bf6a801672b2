package coercer

import "sort"

// Поля, которые модель иногда добавляет от себя и которые не должны попасть в слайд.
var systemFields = []string{"content", "error", "raw"}

// schemaType возвращает тип из JSON-схемы. Для "type": ["string","null"] берётся первый не-null.
func schemaType(schema map[string]any) string {
	switch t := schema["type"].(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				return s
			}
		}
	}
	if _, ok := schema["properties"]; ok {
		return "object"
	}
	if _, ok := schema["items"]; ok {
		return "array"
	}
	return ""
}

func properties(schema map[string]any) map[string]map[string]any {
	raw, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]map[string]any, len(raw))
	for name, v := range raw {
		if sub, ok := v.(map[string]any); ok {
			out[name] = sub
		} else {
			out[name] = map[string]any{}
		}
	}
	return out
}

// RequiredFields возвращает обязательные поля схемы: список required,
// а если его нет, все свойства без значения default. Порядок детерминирован.
func RequiredFields(schema map[string]any) []string {
	if req, ok := schema["required"].([]any); ok {
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if req, ok := schema["required"].([]string); ok {
		return append([]string(nil), req...)
	}

	var out []string
	for name, prop := range properties(schema) {
		if _, hasDefault := prop["default"]; !hasDefault {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func intKeyword(schema map[string]any, key string) (int, bool) {
	switch v := schema[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

func itemsSchema(schema map[string]any) map[string]any {
	if items, ok := schema["items"].(map[string]any); ok {
		return items
	}
	return map[string]any{}
}
