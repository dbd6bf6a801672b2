package assets_test

import (
	"context"
	"errors"
	"fmt"
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

	"deck-server/internal/assets"
	"deck-server/internal/domain"
	"deck-server/internal/mocks"
)

func slideContent() map[string]any {
	return map[string]any{
		"title": "Growth",
		"image": map[string]any{
			domain.ImageURLKey:    domain.PlaceholderImageURL,
			domain.ImagePromptKey: "rocket over city",
		},
		"bullets": []any{
			map[string]any{"text": "Team", "icon": map[string]any{domain.IconQueryKey: "team"}},
			map[string]any{"text": "Money", "icon": map[string]any{domain.IconQueryKey: "pricing", domain.IconURLKey: ""}},
		},
	}
}

func TestResolve_FillsImagesAndIcons(t *testing.T) {
	images := mocks.NewImageProvider(t)
	store := mocks.NewBlobStore(t)
	images.On("Generate", mock.Anything, "rocket over city, flat style").Return([]byte("jpeg"), nil).Once()
	store.On("Put", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "images/") && strings.HasSuffix(name, ".jpg")
	}), []byte("jpeg")).Return("/static/generated/images/x.jpg", nil).Once()

	r := assets.NewResolver(images, store, assets.NewIconCatalog("/static/icons"), ", flat style", zap.NewNop())
	in := slideContent()
	out := r.Resolve(context.Background(), in)

	image := out["image"].(map[string]any)
	assert.Equal(t, "/static/generated/images/x.jpg", image[domain.ImageURLKey])
	assert.Equal(t, "rocket over city", image[domain.ImagePromptKey])

	bullets := out["bullets"].([]any)
	assert.Equal(t, "/static/icons/users.svg", bullets[0].(map[string]any)["icon"].(map[string]any)[domain.IconURLKey])
	assert.Equal(t, "/static/icons/money.svg", bullets[1].(map[string]any)["icon"].(map[string]any)[domain.IconURLKey])

	// вход не изменён
	assert.Equal(t, slideContent(), in)
}

func TestResolve_FailuresKeepPlaceholders(t *testing.T) {
	t.Run("generation error", func(t *testing.T) {
		images := mocks.NewImageProvider(t)
		store := mocks.NewBlobStore(t)
		images.On("Generate", mock.Anything, mock.Anything).Return(nil, assets.ErrImageGenerationFailed).Once()

		out := assets.NewResolver(images, store, nil, "", zap.NewNop()).Resolve(context.Background(), slideContent())
		assert.Equal(t, domain.PlaceholderImageURL, out["image"].(map[string]any)[domain.ImageURLKey])
		icon := out["bullets"].([]any)[0].(map[string]any)["icon"].(map[string]any)
		assert.Equal(t, domain.PlaceholderIconURL, icon[domain.IconURLKey])
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("save error", func(t *testing.T) {
		images := mocks.NewImageProvider(t)
		store := mocks.NewBlobStore(t)
		images.On("Generate", mock.Anything, mock.Anything).Return([]byte("x"), nil).Once()
		store.On("Put", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full")).Once()

		out := assets.NewResolver(images, store, nil, "", zap.NewNop()).Resolve(context.Background(), slideContent())
		assert.Equal(t, domain.PlaceholderImageURL, out["image"].(map[string]any)[domain.ImageURLKey])
	})

	t.Run("no image provider", func(t *testing.T) {
		out := assets.NewResolver(nil, nil, nil, "", zap.NewNop()).Resolve(context.Background(), slideContent())
		assert.Equal(t, domain.PlaceholderImageURL, out["image"].(map[string]any)[domain.ImageURLKey])
	})
}

func TestResolve_KeepsResolvedURL(t *testing.T) {
	images := mocks.NewImageProvider(t)
	content := map[string]any{"image": map[string]any{
		domain.ImageURLKey:    "https://cdn/x.jpg",
		domain.ImagePromptKey: "cat",
	}}
	out := assets.NewResolver(images, mocks.NewBlobStore(t), nil, "", zap.NewNop()).Resolve(context.Background(), content)
	assert.Equal(t, "https://cdn/x.jpg", out["image"].(map[string]any)[domain.ImageURLKey])
}

func TestResolve_ManyImagesConcurrently(t *testing.T) {
	images := mocks.NewImageProvider(t)
	store := mocks.NewBlobStore(t)
	var items []any
	for i := 0; i < 6; i++ {
		prompt := fmt.Sprintf("p%d", i)
		items = append(items, map[string]any{domain.ImagePromptKey: prompt})
		images.On("Generate", mock.Anything, prompt).Return([]byte(prompt), nil).Once()
		store.On("Put", mock.Anything, mock.Anything, []byte(prompt)).Return("/img/"+prompt, nil).Once()
	}

	out := assets.NewResolver(images, store, nil, "", zap.NewNop()).Resolve(context.Background(), map[string]any{"gallery": items})
	for i, item := range out["gallery"].([]any) {
		assert.Equal(t, fmt.Sprintf("/img/p%d", i), item.(map[string]any)[domain.ImageURLKey])
	}
}

func TestIconCatalog_Search(t *testing.T) {
	c := assets.NewIconCatalog("/icons/")
	assert.Equal(t, "/icons/rocket.svg", c.Search("rocket"))
	assert.Equal(t, "/icons/shield.svg", c.Search("Security"))
	assert.Equal(t, "/icons/chart-bar.svg", c.Search("chart-bar"))
	assert.Equal(t, "/icons/trophy.svg", c.Search("awards"))
	assert.Equal(t, domain.PlaceholderIconURL, c.Search("xylophone"))
	assert.Equal(t, domain.PlaceholderIconURL, c.Search(""))
}

func TestHTTPImageProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "broken") {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
			return
		}
		assert.Equal(t, "/generate", r.URL.Path)
		assert.JSONEq(t, `{"prompt":"a cat","ratio":"16:9"}`, string(body))
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	p := assets.NewHTTPImageProvider(assets.HTTPImageProviderConfig{
		BaseURL:       srv.URL + "/",
		Timeout:       5 * time.Second,
		RatePerSecond: 100,
		Burst:         2,
	}, zap.NewNop())

	data, err := p.Generate(context.Background(), "a cat")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	_, err = p.Generate(context.Background(), "broken")
	assert.ErrorIs(t, err, assets.ErrImageGenerationFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Generate(ctx, "a cat")
	assert.Error(t, err)
}
