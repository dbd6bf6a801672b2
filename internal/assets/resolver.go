// Package assets заполняет плейсхолдеры изображений и иконок в содержимом слайдов.
package assets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"deck-server/internal/domain"
	"deck-server/internal/storage"
)

const imagesPerSlideLimit = 4

var assetsResolved = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deck_assets_resolved_total",
		Help: "Total number of image and icon placeholders processed.",
	},
	[]string{"kind", "status"}, // kind: image|icon, status: success|placeholder|error_generation|error_save
)

// Resolver превращает плейсхолдеры в URL. Ошибки не возвращаются:
// при сбое остаётся URL плейсхолдера.
type Resolver struct {
	images      ImageProvider
	store       storage.BlobStore
	icons       IconProvider
	styleSuffix string
	logger      *zap.Logger
}

// NewResolver создаёт Resolver. images может быть nil: тогда изображения
// всегда получают плейсхолдер.
func NewResolver(images ImageProvider, store storage.BlobStore, icons IconProvider, styleSuffix string, logger *zap.Logger) *Resolver {
	return &Resolver{
		images:      images,
		store:       store,
		icons:       icons,
		styleSuffix: styleSuffix,
		logger:      logger.Named("assets"),
	}
}

// Resolve возвращает копию content с заполненными __image_url__ и __icon_url__.
// Исходная карта не изменяется, поля плейсхолдеров никогда не удаляются.
func (r *Resolver) Resolve(ctx context.Context, content map[string]any) map[string]any {
	out, _ := deepCopy(content).(map[string]any)
	if out == nil {
		return nil
	}

	var imageNodes []map[string]any
	walkObjects(out, func(node map[string]any) {
		if _, ok := node[domain.ImagePromptKey]; ok {
			imageNodes = append(imageNodes, node)
		}
		if q, ok := node[domain.IconQueryKey]; ok {
			query, _ := q.(string)
			node[domain.IconURLKey] = r.iconURL(query)
		}
	})

	var g errgroup.Group
	g.SetLimit(imagesPerSlideLimit)
	for _, node := range imageNodes {
		prompt, _ := node[domain.ImagePromptKey].(string)
		current, _ := node[domain.ImageURLKey].(string)
		if current != "" && current != domain.PlaceholderImageURL {
			continue
		}
		g.Go(func() error {
			node[domain.ImageURLKey] = r.imageURL(ctx, prompt)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Resolver) iconURL(query string) string {
	if r.icons == nil || strings.TrimSpace(query) == "" {
		assetsResolved.WithLabelValues("icon", "placeholder").Inc()
		return domain.PlaceholderIconURL
	}
	url := r.icons.Search(query)
	status := "success"
	if url == domain.PlaceholderIconURL {
		status = "placeholder"
	}
	assetsResolved.WithLabelValues("icon", status).Inc()
	return url
}

func (r *Resolver) imageURL(ctx context.Context, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if r.images == nil || r.store == nil || prompt == "" {
		assetsResolved.WithLabelValues("image", "placeholder").Inc()
		return domain.PlaceholderImageURL
	}

	log := r.logger.With(zap.String("prompt_hash", fmt.Sprintf("%x", uuid.NewSHA1(uuid.NameSpaceDNS, []byte(prompt)))))
	data, err := r.images.Generate(ctx, prompt+r.styleSuffix)
	if err != nil {
		log.Warn("Image generation failed, keeping placeholder", zap.Error(err))
		assetsResolved.WithLabelValues("image", "error_generation").Inc()
		return domain.PlaceholderImageURL
	}

	url, err := r.store.Put(ctx, "images/"+uuid.NewString()+".jpg", data)
	if err != nil {
		log.Warn("Image save failed, keeping placeholder", zap.Error(fmt.Errorf("%w: %v", ErrImageSaveFailed, err)))
		assetsResolved.WithLabelValues("image", "error_save").Inc()
		return domain.PlaceholderImageURL
	}
	assetsResolved.WithLabelValues("image", "success").Inc()
	log.Debug("Image stored", zap.String("url", url), zap.Int("size_bytes", len(data)))
	return url
}

func walkObjects(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		fn(t)
		for _, child := range t {
			walkObjects(child, fn)
		}
	case []any:
		for _, item := range t {
			walkObjects(item, fn)
		}
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
