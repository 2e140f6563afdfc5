package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Alias1177/StockAuto/internal/model"
)

// Recorder exposes scheduler and provider activity as Prometheus metrics.
type Recorder struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	evaluations   *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	notifications *prometheus.CounterVec
	lastScore     *prometheus.GaugeVec
	heartbeat     prometheus.Gauge
}

// NewRecorder registers the collectors with reg. A nil reg uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockauto_cycles_total",
			Help: "Total number of completed scoring cycles",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockauto_cycle_duration_seconds",
			Help:    "Wall time of one pass over all tickers",
			Buckets: []float64{30, 60, 120, 300, 600, 900, 1800},
		}),
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockauto_evaluations_total",
				Help: "Ticker evaluations by resulting label",
			},
			[]string{"symbol", "label"},
		),
		fetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockauto_fetch_failures_total",
				Help: "Indicator fetches that came back unavailable",
			},
			[]string{"indicator"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockauto_notifications_total",
				Help: "Notification attempts by outcome",
			},
			[]string{"outcome"},
		),
		lastScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockauto_last_score",
				Help: "Most recent composite score per ticker",
			},
			[]string{"symbol"},
		),
		heartbeat: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockauto_heartbeat_timestamp_seconds",
			Help: "Unix time of the last scheduler heartbeat",
		}),
	}
}

// RecordCycle records a finished cycle and its duration.
func (r *Recorder) RecordCycle(d time.Duration) {
	r.cycles.Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// RecordEvaluation records one scored ticker.
func (r *Recorder) RecordEvaluation(symbol string, result model.ScoreResult) {
	r.evaluations.WithLabelValues(symbol, string(result.Label)).Inc()
	if result.Label != model.LabelInsufficientData {
		r.lastScore.WithLabelValues(symbol).Set(float64(result.Score))
	}
}

// RecordFetchFailure records an unavailable indicator.
func (r *Recorder) RecordFetchFailure(indicator string) {
	r.fetchFailures.WithLabelValues(indicator).Inc()
}

// RecordNotification records a delivery attempt; outcome is "sent" or "failed".
func (r *Recorder) RecordNotification(outcome string) {
	r.notifications.WithLabelValues(outcome).Inc()
}

// RecordHeartbeat records the scheduler's last sign of life.
func (r *Recorder) RecordHeartbeat(t time.Time) {
	r.heartbeat.Set(float64(t.Unix()))
}
