package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_llm_requests_total",
			Help: "Total number of requests to the text generation provider.",
		},
		[]string{"provider", "model", "operation", "status"},
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_llm_request_duration_seconds",
			Help:    "Histogram of text generation request durations.",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"provider", "model", "operation"},
	)
	llmTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_llm_tokens",
			Help:    "Histogram of token counts per request.",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10), // 64 .. 32768
		},
		[]string{"provider", "model", "kind"},
	)
)

func observeRequest(provider, model, operation, status string, started time.Time) {
	if operation == "" {
		operation = "unknown"
	}
	llmRequestsTotal.WithLabelValues(provider, model, operation, status).Inc()
	if status == "success" || status == "success_stream" {
		llmRequestDuration.WithLabelValues(provider, model, operation).Observe(time.Since(started).Seconds())
	}
}

func observeUsage(provider, model string, u Usage) {
	if u.TotalTokens <= 0 {
		return
	}
	llmTokens.WithLabelValues(provider, model, "prompt").Observe(float64(u.PromptTokens))
	llmTokens.WithLabelValues(provider, model, "completion").Observe(float64(u.CompletionTokens))
	llmTokens.WithLabelValues(provider, model, "total").Observe(float64(u.TotalTokens))
}
