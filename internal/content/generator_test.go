package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deck-server/internal/coercer"
	"deck-server/internal/domain"
	"deck-server/internal/llm"
	"deck-server/internal/mocks"
)

func imageLayout() domain.SlideLayout {
	return domain.SlideLayout{
		ID:   "general:image-and-text",
		Name: "Image And Text",
		JSONSchema: map[string]any{
			"type":     "object",
			"required": []any{"title", "content", "image"},
			"properties": map[string]any{
				"title":   map[string]any{"type": "string", "minLength": float64(3), "maxLength": float64(20)},
				"content": map[string]any{"type": "string", "maxLength": float64(80)},
				"image": map[string]any{
					"type":     "object",
					"required": []any{domain.ImageURLKey, domain.ImagePromptKey},
					"properties": map[string]any{
						domain.ImageURLKey:    map[string]any{"type": "string"},
						domain.ImagePromptKey: map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func newTestGenerator(t *testing.T, p llm.TextGenerationProvider) *Generator {
	t.Helper()
	return NewGenerator(p, coercer.New(zap.NewNop()), zap.NewNop())
}

func TestGenerate_RepairsAndExtractsSpeakerNote(t *testing.T) {
	provider := mocks.NewTextGenerationProvider(t)
	provider.On("Generate", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Operation == "content" && assert.Contains(t, r.UserPrompt, "# Pricing")
	})).Return("```json\n{\"title\": \"Pricing that scales with you\", \"content\": \"Three plans.\", "+
		"\"image\": {\"__image_prompt__\": \"growth chart\"}, \"__speaker_note__\": \" Walk through the plans. \"}\n```",
		llm.Usage{}, nil).Once()

	got, err := newTestGenerator(t, provider).Generate(context.Background(), Request{
		Layout:    imageLayout(),
		Outline:   domain.OutlineEntry{Content: "# Pricing\n\nThree plans"},
		Language:  "English",
		Verbosity: domain.VerbosityConcise,
	})
	require.NoError(t, err)
	assert.Equal(t, "Walk through the plans.", got.SpeakerNote)
	assert.Equal(t, "Pricing that scales ", got.Content["title"])
	assert.Equal(t, "Three plans.", got.Content["content"])
	assert.Equal(t, map[string]any{
		domain.ImageURLKey:    domain.PlaceholderImageURL,
		domain.ImagePromptKey: "growth chart",
	}, got.Content["image"])
	assert.NotContains(t, got.Content, domain.SpeakerNoteKey)
}

func TestGenerate_ProseYieldsDefaults(t *testing.T) {
	provider := mocks.NewTextGenerationProvider(t)
	provider.On("Generate", mock.Anything, mock.Anything).
		Return("I cannot produce JSON today.", llm.Usage{}, nil).Once()

	got, err := newTestGenerator(t, provider).Generate(context.Background(), Request{Layout: imageLayout()})
	require.NoError(t, err)
	assert.Equal(t, "   ", got.Content["title"])
	// объявленное в схеме поле content сохраняет исходный текст
	assert.Equal(t, "I cannot produce JSON today.", got.Content["content"])
	image := got.Content["image"].(map[string]any)
	assert.Equal(t, domain.PlaceholderImageURL, image[domain.ImageURLKey])
	assert.Empty(t, got.SpeakerNote)
}

func TestGenerate_ProviderErrorIsReturned(t *testing.T) {
	provider := mocks.NewTextGenerationProvider(t)
	provider.On("Generate", mock.Anything, mock.Anything).Return("", llm.Usage{}, llm.ErrGenerationFailed).Once()

	_, err := newTestGenerator(t, provider).Generate(context.Background(), Request{Layout: imageLayout()})
	assert.ErrorIs(t, err, llm.ErrGenerationFailed)
}

func TestPromptSchema(t *testing.T) {
	layout := imageLayout()
	schema := promptSchema(layout.JSONSchema)

	image := schema["properties"].(map[string]any)["image"].(map[string]any)
	assert.NotContains(t, image["properties"], domain.ImageURLKey)
	assert.Equal(t, []any{domain.ImagePromptKey}, image["required"])
	assert.Contains(t, schema["properties"], domain.SpeakerNoteKey)

	// исходная схема макета не меняется
	origImage := layout.JSONSchema["properties"].(map[string]any)["image"].(map[string]any)
	assert.Contains(t, origImage["properties"], domain.ImageURLKey)
	assert.NotContains(t, layout.JSONSchema["properties"], domain.SpeakerNoteKey)
}

func TestSystemPrompt(t *testing.T) {
	req := Request{Layout: imageLayout(), Verbosity: domain.VerbosityTextHeavy, Tone: domain.ToneFunny, Instructions: "mention Go"}
	p := systemPrompt(req, promptSchema(req.Layout.JSONSchema))

	assert.Contains(t, p, "title: min 3 chars, max 20 chars")
	assert.Contains(t, p, "content: max 80 chars")
	assert.Contains(t, p, "at least 3/4")
	assert.Contains(t, p, "mention Go")
	assert.Contains(t, p, "humor")
	assert.Contains(t, p, domain.SpeakerNoteKey)
}
