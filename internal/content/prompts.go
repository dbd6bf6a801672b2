package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"deck-server/internal/domain"
	"deck-server/internal/outline"
)

const (
	speakerNoteMin = 100
	speakerNoteMax = 250
)

// verbosityFractions - доля максимальной длины текстового поля.
var verbosityFractions = map[domain.Verbosity]string{
	domain.VerbosityConcise:   "at most 1/3 of the max character limit of each text field; missing some detail is fine",
	domain.VerbosityStandard:  "about 2/3 of the max character limit of each text field",
	domain.VerbosityTextHeavy: "at least 3/4 of the max character limit of each text field, never above the limit",
}

func systemPrompt(req Request, schema map[string]any) string {
	var b strings.Builder
	b.WriteString("You generate the content of a single presentation slide.\n")
	b.WriteString("Use only the information in the slide outline; never add generic filler.\n\n")

	if req.Instructions != "" {
		fmt.Fprintf(&b, "# User instructions\n%s\n\n", req.Instructions)
	}
	if g := outline.ToneGuide(req.Tone); g != "" {
		fmt.Fprintf(&b, "# Tone\n%s\n\n", g)
	}
	if f, ok := verbosityFractions[req.Verbosity]; ok {
		fmt.Fprintf(&b, "# Verbosity\nWrite %s.\n\n", f)
	}

	b.WriteString("# Rules\n")
	b.WriteString("- Keep the outline's own title; do not invent titles like \"Overview\".\n")
	b.WriteString("- Never exceed the max character limit or the max number of items of any field; merge points if needed.\n")
	b.WriteString("- Do not write \"this slide\" or \"this presentation\". No emoji.\n")
	b.WriteString("- Use short, abbreviated metrics.\n")
	b.WriteString("- Use markdown only to highlight important points.\n")
	fmt.Fprintf(&b, "- Put a plain-text speaker note of %d to %d characters in %q.\n", speakerNoteMin, speakerNoteMax, domain.SpeakerNoteKey)
	b.WriteString("- User instructions, tone and verbosity win over other rules, except field limits and the schema.\n")

	if bounds := fieldBounds(schema, ""); len(bounds) > 0 {
		b.WriteString("\n# Field limits\n")
		for _, line := range bounds {
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n# Image and icon fields\n")
	fmt.Fprintf(&b, "image: {\"%s\": \"short English description of the picture\"}\n", domain.ImagePromptKey)
	fmt.Fprintf(&b, "icon: {\"%s\": \"one or two English words\"}\n", domain.IconQueryKey)

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err == nil {
		fmt.Fprintf(&b, "\n# Output schema\nRespond only with a JSON object matching this schema:\n%s\n", raw)
	}
	return b.String()
}

func userPrompt(req Request, now time.Time) string {
	language := req.Language
	if language == "" {
		language = "English"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Current date\n%s\n\n", now.Format("2006-01-02 15:04"))
	b.WriteString("## Image prompt and icon query language\nEnglish\n\n")
	fmt.Fprintf(&b, "## Slide content language\n%s\n\n", language)
	fmt.Fprintf(&b, "## Slide outline\n%s\n", req.Outline.Content)
	return b.String()
}

// fieldBounds перечисляет ограничения длины строк и числа элементов массивов.
func fieldBounds(schema map[string]any, path string) []string {
	props, _ := schema["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		full := name
		if path != "" {
			full = path + "." + name
		}
		if line := boundLine(full, prop); line != "" {
			out = append(out, line)
		}
		out = append(out, fieldBounds(prop, full)...)
		if items, ok := prop["items"].(map[string]any); ok {
			out = append(out, fieldBounds(items, full+"[]")...)
		}
	}
	return out
}

func boundLine(path string, prop map[string]any) string {
	var parts []string
	if v, ok := number(prop["minLength"]); ok {
		parts = append(parts, fmt.Sprintf("min %d chars", v))
	}
	if v, ok := number(prop["maxLength"]); ok {
		parts = append(parts, fmt.Sprintf("max %d chars", v))
	}
	if v, ok := number(prop["minItems"]); ok {
		parts = append(parts, fmt.Sprintf("min %d items", v))
	}
	if v, ok := number(prop["maxItems"]); ok {
		parts = append(parts, fmt.Sprintf("max %d items", v))
	}
	if len(parts) == 0 {
		return ""
	}
	return path + ": " + strings.Join(parts, ", ")
}

func number(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

// promptSchema готовит схему для модели: URL ассетов заполняет сервер,
// а заметка докладчика добавляется отдельным полем.
func promptSchema(schema map[string]any) map[string]any {
	out := stripAssetURLs(schema).(map[string]any)
	props, _ := out["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
		out["properties"] = props
	}
	props[domain.SpeakerNoteKey] = map[string]any{
		"type":      "string",
		"minLength": speakerNoteMin,
		"maxLength": speakerNoteMax,
	}
	return out
}

func stripAssetURLs(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			switch k {
			case "properties":
				props, ok := val.(map[string]any)
				if !ok {
					out[k] = stripAssetURLs(val)
					continue
				}
				clean := make(map[string]any, len(props))
				for name, p := range props {
					if name == domain.ImageURLKey || name == domain.IconURLKey {
						continue
					}
					clean[name] = stripAssetURLs(p)
				}
				out[k] = clean
			case "required":
				out[k] = withoutAssetURLs(val)
			default:
				out[k] = stripAssetURLs(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = stripAssetURLs(item)
		}
		return out
	default:
		return v
	}
}

func withoutAssetURLs(v any) any {
	var names []string
	switch t := v.(type) {
	case []any:
		for _, n := range t {
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
	case []string:
		names = t
	default:
		return v
	}
	out := make([]any, 0, len(names))
	for _, n := range names {
		if n != domain.ImageURLKey && n != domain.IconURLKey {
			out = append(out, n)
		}
	}
	return out
}
