package coercer_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-server/internal/coercer"
	"deck-server/internal/domain"
)

const bulletSlideSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "minLength": 5, "maxLength": 20},
    "description": {"type": "string", "maxLength": 50},
    "bullets": {
      "type": "array",
      "minItems": 2,
      "maxItems": 3,
      "items": {
        "type": "object",
        "properties": {
          "text": {"type": "string", "maxLength": 10},
          "icon": {
            "type": "object",
            "properties": {
              "__icon_url__": {"type": "string"},
              "__icon_query__": {"type": "string"}
            },
            "required": ["__icon_url__", "__icon_query__"]
          }
        },
        "required": ["text", "icon"]
      }
    },
    "image": {
      "type": "object",
      "properties": {
        "__image_url__": {"type": "string"},
        "__image_prompt__": {"type": "string"}
      },
      "required": ["__image_url__", "__image_prompt__"]
    },
    "layoutVariant": {"type": "string", "default": "left"}
  },
  "required": ["title", "description", "bullets", "image"]
}`

func loadSchema(t *testing.T) map[string]any {
	t.Helper()
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(bulletSlideSchema), &schema))
	return schema
}

func TestRepairContent_SynthesizesMissingRequiredFields(t *testing.T) {
	c := newCoercer(t)
	out := c.RepairContent(map[string]any{}, loadSchema(t))

	assert.Equal(t, "     ", out["title"], "empty title padded to minLength")
	assert.Equal(t, "", out["description"])
	assert.Equal(t, "left", out["layoutVariant"], "optional field takes schema default")

	bullets, ok := out["bullets"].([]any)
	require.True(t, ok)
	require.Len(t, bullets, 2, "padded to minItems")
	icon := bullets[0].(map[string]any)["icon"].(map[string]any)
	assert.Equal(t, domain.PlaceholderIconURL, icon[domain.IconURLKey])

	image := out["image"].(map[string]any)
	assert.Equal(t, domain.PlaceholderImageURL, image[domain.ImageURLKey])
	assert.Equal(t, "", image[domain.ImagePromptKey])
}

func TestRepairContent_EnforcesBounds(t *testing.T) {
	c := newCoercer(t)
	content := map[string]any{
		"title":       "A very long slide title that overflows",
		"description": strings.Repeat("ж", 60),
		"bullets": []any{
			map[string]any{"text": "0123456789ABC", "icon": map[string]any{"__icon_url__": "x", "__icon_query__": "q"}},
			map[string]any{"text": "b", "icon": map[string]any{"__icon_url__": "x", "__icon_query__": "q"}},
			map[string]any{"text": "c", "icon": map[string]any{"__icon_url__": "x", "__icon_query__": "q"}},
			map[string]any{"text": "d", "icon": map[string]any{"__icon_url__": "x", "__icon_query__": "q"}},
		},
		"image": map[string]any{"__image_url__": "/static/images/placeholder.jpg", "__image_prompt__": "team"},
	}

	out := c.RepairContent(content, loadSchema(t))

	assert.Equal(t, "A very long slide ti", out["title"])
	assert.Equal(t, 50, len([]rune(out["description"].(string))), "truncation is rune-safe")
	bullets := out["bullets"].([]any)
	assert.Len(t, bullets, 3)
	assert.Equal(t, "0123456789", bullets[0].(map[string]any)["text"])

	// исходные данные не изменились
	assert.Len(t, content["bullets"].([]any), 4)
	assert.Equal(t, "A very long slide title that overflows", content["title"])
}

func TestRepairContent_UnwrapsSlidesAndDropsSystemFields(t *testing.T) {
	c := newCoercer(t)
	content := map[string]any{
		"slides": []any{
			map[string]any{
				"title":            "Quarterly results",
				"description":      "Revenue up",
				"error":            "model hiccup",
				"raw":              "...",
				"content":          "dup",
				"__speaker_note__": "Mention the Q3 dip",
				"bullets": []any{
					map[string]any{"text": "a", "icon": map[string]any{"__icon_url__": "u", "__icon_query__": "q"}},
					map[string]any{"text": "b", "icon": map[string]any{"__icon_url__": "u", "__icon_query__": "q"}},
				},
				"image": map[string]any{"__image_url__": "u", "__image_prompt__": "p"},
			},
		},
	}

	out := c.RepairContent(content, loadSchema(t))
	assert.Equal(t, "Quarterly results", out["title"])
	assert.NotContains(t, out, "error")
	assert.NotContains(t, out, "raw")
	assert.NotContains(t, out, "content")
	assert.NotContains(t, out, "slides")

	withoutNote, note := coercer.ExtractSpeakerNote(out)
	assert.Equal(t, "Mention the Q3 dip", note)
	assert.NotContains(t, withoutNote, domain.SpeakerNoteKey)
}

func TestRepairContent_ValidContentIsUnchanged(t *testing.T) {
	c := newCoercer(t)
	content := map[string]any{
		"title":         "Roadmap 2025",
		"description":   "Three launches",
		"layoutVariant": "right",
		"bullets": []any{
			map[string]any{"text": "Q1", "icon": map[string]any{"__icon_url__": "u", "__icon_query__": "q"}},
			map[string]any{"text": "Q2", "icon": map[string]any{"__icon_url__": "u", "__icon_query__": "q"}},
		},
		"image": map[string]any{"__image_url__": "u", "__image_prompt__": "p"},
	}

	assert.Equal(t, content, c.RepairContent(content, loadSchema(t)))
}

func TestRepairContent_TypeDrift(t *testing.T) {
	c := newCoercer(t)
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "number"},
			"label": map[string]any{"type": []any{"string", "null"}},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}

	out := c.RepairContent(map[string]any{"count": "12.5", "label": 7.0, "tags": "solo"}, schema)
	assert.Equal(t, 12.5, out["count"])
	assert.Equal(t, "7", out["label"])
	assert.Equal(t, []any{"solo"}, out["tags"])
}

func TestRequiredFields_WithoutRequiredList(t *testing.T) {
	schema := map[string]any{
		"properties": map[string]any{
			"b": map[string]any{"type": "string"},
			"a": map[string]any{"type": "string"},
			"c": map[string]any{"type": "string", "default": "x"},
		},
	}
	assert.Equal(t, []string{"a", "b"}, coercer.RequiredFields(schema))
}
