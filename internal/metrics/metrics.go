// Package metrics provides Prometheus-based metrics recording for generation requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives one observation per settled generation.
type Recorder interface {
	ObserveGeneration(mode string, success bool, reason string, promptTokens int, duration time.Duration)
}

// Nop discards every observation.
type Nop struct{}

// ObserveGeneration does nothing
func (Nop) ObserveGeneration(string, bool, string, int, time.Duration) {}

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	promptTokens       *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the generation metrics with reg.
// A nil reg uses the default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		generationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cv_assistant_generations_total",
				Help: "Total number of generation requests by mode, status and failure reason",
			},
			[]string{"mode", "status", "reason"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cv_assistant_generation_duration_seconds",
				Help:    "Duration of generation requests in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"mode"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cv_assistant_prompt_tokens",
				Help:    "Approximate prompt size in tokens",
				Buckets: prometheus.ExponentialBuckets(256, 2, 8),
			},
			[]string{"mode"},
		),
	}
}

// ObserveGeneration records metrics for a settled generation request.
func (p *PrometheusRecorder) ObserveGeneration(mode string, success bool, reason string, promptTokens int, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	p.generationsTotal.WithLabelValues(mode, status, reason).Inc()
	p.generationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if promptTokens > 0 {
		p.promptTokens.WithLabelValues(mode).Observe(float64(promptTokens))
	}
}
