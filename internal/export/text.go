package export

import (
	"fmt"
	"sort"
	"strings"

	"deck-server/internal/markdown"
)

// slideText - текстовое представление слайда для PDF.
type slideText struct {
	Title string
	Lines []string
}

var titleKeys = []string{"title", "heading", "name"}

// extractText раскладывает содержимое слайда на заголовок и строки текста.
// Служебные поля (__image_url__ и т.п.) пропускаются.
func extractText(content map[string]any) slideText {
	var out slideText
	used := ""
	for _, k := range titleKeys {
		if s, ok := content[k].(string); ok && strings.TrimSpace(s) != "" {
			out.Title = strings.TrimSpace(markdown.PlainText(s))
			used = k
			break
		}
	}

	for _, k := range sortedKeys(content) {
		if k == used || strings.HasPrefix(k, "__") {
			continue
		}
		out.Lines = append(out.Lines, valueLines(content[k], "")...)
	}
	return out
}

func valueLines(v any, bullet string) []string {
	switch t := v.(type) {
	case string:
		text := markdown.PlainText(t)
		if text == "" {
			return nil
		}
		lines := strings.Split(text, "\n")
		if bullet != "" {
			lines[0] = bullet + lines[0]
		}
		return lines
	case float64:
		return []string{bullet + fmt.Sprint(t)}
	case []any:
		var lines []string
		for _, item := range t {
			lines = append(lines, valueLines(item, "• ")...)
		}
		return lines
	case map[string]any:
		return []string{bullet + objectLine(t)}
	}
	return nil
}

// objectLine склеивает поля элемента списка в одну строку: "Заголовок: описание".
func objectLine(m map[string]any) string {
	var parts []string
	for _, k := range titleKeys {
		if s, ok := m[k].(string); ok && s != "" {
			parts = append(parts, markdown.PlainText(s))
			break
		}
	}
	for _, k := range sortedKeys(m) {
		if strings.HasPrefix(k, "__") || contains(titleKeys, k) {
			continue
		}
		switch t := m[k].(type) {
		case string:
			if s := markdown.PlainText(t); s != "" {
				parts = append(parts, s)
			}
		case float64:
			parts = append(parts, fmt.Sprint(t))
		}
	}
	if len(parts) > 1 {
		return parts[0] + ": " + strings.Join(parts[1:], " ")
	}
	return strings.Join(parts, "")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
