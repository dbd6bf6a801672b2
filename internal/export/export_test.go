package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"deck-server/internal/domain"
	"deck-server/internal/mocks"
)

func sampleDeck() Deck {
	return Deck{
		Presentation: domain.Presentation{ID: "p1", Title: "Quarterly review"},
		Slides: []domain.Slide{
			{Index: 0, LayoutID: "general:title-slide", Content: map[string]any{
				"title":         "Quarterly review",
				"description":   "**Q3** results",
				"__image_url__": "/static/images/placeholder.jpg",
			}, SpeakerNote: "Welcome everyone"},
			{Index: 1, LayoutID: "general:bullets-with-icons", Content: map[string]any{
				"title": "Highlights",
				"bullets": []any{
					map[string]any{"title": "Revenue", "description": "up 12%", "__icon_url__": "/static/icons/money.svg"},
					map[string]any{"title": "Churn", "description": "down to 2%"},
				},
			}},
		},
	}
}

func TestExtractText(t *testing.T) {
	st := extractText(sampleDeck().Slides[1].Content)
	assert.Equal(t, "Highlights", st.Title)
	assert.Equal(t, []string{"• Revenue: up 12%", "• Churn: down to 2%"}, st.Lines)

	st = extractText(sampleDeck().Slides[0].Content)
	assert.Equal(t, "Quarterly review", st.Title)
	assert.Equal(t, []string{"Q3 results"}, st.Lines)

	assert.Empty(t, extractText(map[string]any{"__image_prompt__": "a cat"}).Lines)
}

func TestPDFRenderer_ProducesDocument(t *testing.T) {
	data, err := PDFRenderer{}.Render(context.Background(), sampleDeck())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "output must be a PDF document")
}

func TestPPTXRenderer(t *testing.T) {
	t.Run("posts deck and returns document", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/export/pptx", r.URL.Path)
			var deck Deck
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &deck))
			assert.Equal(t, "p1", deck.Presentation.ID)
			assert.Len(t, deck.Slides, 2)
			_, _ = w.Write([]byte("PK\x03\x04pptx"))
		}))
		defer srv.Close()

		data, err := NewPPTXRenderer(srv.URL+"/", time.Second, zap.NewNop()).Render(context.Background(), sampleDeck())
		require.NoError(t, err)
		assert.Equal(t, "PK\x03\x04pptx", string(data))
	})

	t.Run("renderer error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewPPTXRenderer(srv.URL, time.Second, zap.NewNop()).Render(context.Background(), sampleDeck())
		assert.ErrorIs(t, err, ErrRenderFailed)
	})
}

type staticRenderer struct {
	data []byte
	err  error
}

func (r staticRenderer) Render(context.Context, Deck) ([]byte, error) { return r.data, r.err }

func TestService_Export(t *testing.T) {
	store := mocks.NewBlobStore(t)
	store.On("Put", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "p1/") && strings.HasSuffix(name, ".pdf")
	}), []byte("%PDF-1.4")).Return("/static/exports/p1/file.pdf", nil).Once()

	svc := NewService(staticRenderer{data: []byte("%PDF-1.4")}, nil, store, zap.NewNop())
	deck := sampleDeck()

	res, err := svc.Export(context.Background(), deck.Presentation, deck.Slides, domain.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, domain.PresentationPathAndEditPath{
		PresentationID: "p1",
		Path:           "/static/exports/p1/file.pdf",
		EditPath:       "/presentation?id=p1",
	}, res)

	assert.False(t, svc.Supports(domain.ExportFormatPPTX))
	_, err = svc.Export(context.Background(), deck.Presentation, deck.Slides, domain.ExportFormatPPTX)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_ExportRenderError(t *testing.T) {
	store := mocks.NewBlobStore(t)
	svc := NewService(staticRenderer{err: errors.New("font missing")}, nil, store, zap.NewNop())

	_, err := svc.Export(context.Background(), domain.Presentation{ID: "p1"}, nil, domain.ExportFormatPDF)
	require.Error(t, err)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}
