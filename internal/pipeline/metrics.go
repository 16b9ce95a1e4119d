package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"scenegen/internal/types"
)

// Metrics are the pipeline's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	failures      *prometheus.CounterVec
	exportBytes   prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scenegen_pipeline_runs_total",
			Help: "Pipeline runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scenegen_pipeline_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: []float64{.001, .01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scenegen_pipeline_failures_total",
			Help: "Pipeline failures by stage and error kind.",
		}, []string{"stage", "kind"}),
		exportBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scenegen_export_bytes",
			Help:    "Size of written assets.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
}

func (m *Metrics) observeStage(stage Stage, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (m *Metrics) observeRun(mode types.Mode, f *Failure) {
	if m == nil {
		return
	}
	if f != nil {
		m.runs.WithLabelValues(string(mode), "failed").Inc()
		m.failures.WithLabelValues(string(f.Stage), string(f.Kind)).Inc()
		return
	}
	m.runs.WithLabelValues(string(mode), "completed").Inc()
}

func (m *Metrics) observeExport(size int64) {
	if m == nil {
		return
	}
	m.exportBytes.Observe(float64(size))
}
