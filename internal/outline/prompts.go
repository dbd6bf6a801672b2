package outline

import (
	"fmt"
	"strings"
	"time"

	"deck-server/internal/domain"
)

var toneGuides = map[domain.Tone]string{
	domain.ToneCasual:       "Relaxed and conversational, simple words.",
	domain.ToneProfessional: "Formal and precise, business vocabulary.",
	domain.ToneFunny:        "Light and playful, with tasteful humor.",
	domain.ToneEducational:  "Explanatory, step by step, with examples.",
	domain.ToneSalesPitch:   "Persuasive, benefit driven, with a clear call to action.",
}

var verbosityGuides = map[domain.Verbosity]string{
	domain.VerbosityConcise:   "Keep every outline short: a heading and two or three key points.",
	domain.VerbosityStandard:  "Give every outline a heading and a few supporting points.",
	domain.VerbosityTextHeavy: "Give every outline a heading and detailed supporting paragraphs.",
}

// ToneGuide возвращает описание тона для промпта или "" для тона по умолчанию.
func ToneGuide(t domain.Tone) string { return toneGuides[t] }

// VerbosityGuide возвращает описание объёма текста для промпта.
func VerbosityGuide(v domain.Verbosity) string { return verbosityGuides[v] }

func systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an expert presentation writer. Split the user's material into slide outlines.\n")
	b.WriteString("Respond only with JSON of the form {\"slides\": [{\"content\": \"markdown\"}]}.\n\n")

	if req.Instructions != "" {
		b.WriteString("# User instructions\n")
		b.WriteString(req.Instructions)
		b.WriteString("\n\n")
	}
	if g := ToneGuide(req.Tone); g != "" {
		fmt.Fprintf(&b, "# Tone\n%s\n\n", g)
	}
	if g := VerbosityGuide(req.Verbosity); g != "" {
		fmt.Fprintf(&b, "# Verbosity\n%s\n\n", g)
	}

	b.WriteString("# Rules\n")
	b.WriteString("- Write every outline in markdown and start it with a heading.\n")
	b.WriteString("- Keep the flow logical; place emphasis on numbers and data.\n")
	b.WriteString("- Split any additional information across slides.\n")
	b.WriteString("- Do not reference images.\n")
	b.WriteString("- Follow user instructions, except for the number of slides.\n")
	b.WriteString("- Never create a table of contents slide.\n")
	if req.IncludeTitleSlide {
		b.WriteString("- The first outline is the title slide.\n")
	} else {
		b.WriteString("- Do not create a title slide.\n")
	}
	return b.String()
}

func userPrompt(req Request, now time.Time) string {
	content := req.Content
	if strings.TrimSpace(content) == "" {
		content = "Create presentation"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- Content: %s\n", content)
	fmt.Fprintf(&b, "- Output language: %s\n", req.Language)
	fmt.Fprintf(&b, "- Number of slides: %d\n", req.NSlides)
	fmt.Fprintf(&b, "- Current date: %s\n", now.Format("2006-01-02 15:04"))
	if req.AdditionalContext != "" {
		fmt.Fprintf(&b, "- Additional information:\n%s\n", req.AdditionalContext)
	}
	return b.String()
}

func responseSchema(n int) map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"slides"},
		"properties": map[string]any{
			"slides": map[string]any{
				"type":     "array",
				"minItems": n,
				"maxItems": n,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"content"},
					"properties": map[string]any{
						"content": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
