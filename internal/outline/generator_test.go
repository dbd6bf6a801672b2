package outline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deck-server/internal/coercer"
	"deck-server/internal/domain"
	"deck-server/internal/llm"
	"deck-server/internal/mocks"
	"deck-server/internal/outline"
)

func newGenerator(t *testing.T, p llm.TextGenerationProvider) *outline.Generator {
	t.Helper()
	return outline.NewGenerator(p, coercer.New(zap.NewNop()), zap.NewNop())
}

func TestGenerate_StreamsAndCoerces(t *testing.T) {
	provider := mocks.NewTextGenerationProvider(t)
	provider.On("Stream", mock.Anything, mock.MatchedBy(func(r llm.Request) bool {
		return r.Operation == "outline" &&
			assert.Contains(t, r.UserPrompt, "Number of slides: 3") &&
			assert.Contains(t, r.SystemPrompt, "The first outline is the title slide.")
	}), mock.Anything).
		Run(mocks.StreamChunks("Sure! ```json\n{\"slides\": [", `{"content": "# Intro"},`, `{"content": "# Body"}, {"content": "# End"}]}`, "\n```")).
		Return(llm.Usage{TotalTokens: 20}, nil).Once()

	var chunks []string
	got, err := newGenerator(t, provider).Generate(context.Background(), outline.Request{
		Content:           "Go concurrency",
		NSlides:           3,
		Language:          "English",
		IncludeTitleSlide: true,
	}, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, chunks, 4)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "# Intro", got.Slides[0].Content)
	assert.Equal(t, "# End", got.Slides[2].Content)
}

func TestGenerate_TruncatesExtraOutlines(t *testing.T) {
	provider := mocks.NewTextGenerationProvider(t)
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(mocks.StreamChunks(`["a", "b", "c"]`)).
		Return(llm.Usage{}, nil).Once()

	got, err := newGenerator(t, provider).Generate(context.Background(), outline.Request{NSlides: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, []domain.OutlineEntry{{Content: "a"}, {Content: "b"}}, got.Slides)
}

func TestGenerate_ProseBecomesSingleOutline(t *testing.T) {
	provider := mocks.NewTextGenerationProvider(t)
	provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(mocks.StreamChunks("Here is my deck about ", "cats and dogs")).
		Return(llm.Usage{}, nil).Once()

	got, err := newGenerator(t, provider).Generate(context.Background(), outline.Request{NSlides: 4}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Here is my deck about cats and dogs", got.Slides[0].Content)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		provider := mocks.NewTextGenerationProvider(t)
		provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).
			Return(llm.Usage{}, llm.ErrGenerationFailed).Once()

		_, err := newGenerator(t, provider).Generate(context.Background(), outline.Request{NSlides: 2}, nil)
		assert.ErrorIs(t, err, llm.ErrGenerationFailed)
	})

	t.Run("invalid slide count", func(t *testing.T) {
		provider := mocks.NewTextGenerationProvider(t)
		_, err := newGenerator(t, provider).Generate(context.Background(), outline.Request{NSlides: 0}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("chunk handler error", func(t *testing.T) {
		stop := errors.New("client disconnected")
		provider := mocks.NewTextGenerationProvider(t)
		provider.On("Stream", mock.Anything, mock.Anything, mock.Anything).
			Return(func(ctx context.Context, r llm.Request, h llm.ChunkHandler) llm.Usage { return llm.Usage{} },
				func(ctx context.Context, r llm.Request, h llm.ChunkHandler) error { return h("x") }).Once()

		_, err := newGenerator(t, provider).Generate(context.Background(), outline.Request{NSlides: 2}, func(string) error {
			return stop
		})
		assert.ErrorIs(t, err, stop)
	})
}

func TestFromMarkdownAndTitle(t *testing.T) {
	o := outline.FromMarkdown([]string{"  # Launch plan\n\nDetails", "", "## Next"})
	require.Equal(t, 2, o.Len())
	assert.Equal(t, "Launch plan", outline.Title(o))
	assert.Equal(t, "", outline.Title(domain.Outline{}))
}
