package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	passesTotal       prometheus.Counter
	pairsAnalyzed     prometheus.Counter
	pairsSkipped      prometheus.Counter
	signalsEmitted    *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	lastPrice         *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		passesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "swingradar_passes_total",
				Help: "Total number of completed analysis passes",
			},
		),
		pairsAnalyzed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "swingradar_pairs_analyzed_total",
				Help: "Total number of pairs analyzed successfully",
			},
		),
		pairsSkipped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "swingradar_pairs_skipped_total",
				Help: "Total number of pairs skipped due to upstream errors",
			},
		),
		signalsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingradar_signals_emitted_total",
				Help: "Total number of trading signals emitted",
			},
			[]string{"classification"},
		),
		notificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingradar_notifications_sent_total",
				Help: "Total number of notifications attempted",
			},
			[]string{"kind", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swingradar_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swingradar_last_price",
				Help: "Last recorded price for a pair",
			},
			[]string{"pair"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swingradar_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPass records a completed analysis pass.
func (r *Recorder) RecordPass() {
	r.passesTotal.Inc()
}

// RecordPairAnalyzed records a pair that produced an analysis.
func (r *Recorder) RecordPairAnalyzed() {
	r.pairsAnalyzed.Inc()
}

// RecordPairSkipped records a pair skipped on error.
func (r *Recorder) RecordPairSkipped() {
	r.pairsSkipped.Inc()
}

// RecordSignal records an emitted trading signal.
func (r *Recorder) RecordSignal(classification string) {
	r.signalsEmitted.WithLabelValues(classification).Inc()
}

// RecordNotification records a notification attempt outcome.
func (r *Recorder) RecordNotification(kind, result string) {
	r.notificationsSent.WithLabelValues(kind, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a pair.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
