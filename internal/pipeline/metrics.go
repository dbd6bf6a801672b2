package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Фазы конвейера для метрик.
const (
	phaseOutline   = "outline"
	phaseStructure = "structure"
	phaseSlides    = "slides"
	phasePersist   = "persist"
	phaseExport    = "export"
)

var phaseDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "deck_pipeline_phase_duration_seconds",
		Help:    "Duration of presentation generation phases.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	},
	[]string{"phase"},
)

func observePhase(phase string, started time.Time) {
	phaseDuration.WithLabelValues(phase).Observe(time.Since(started).Seconds())
}
