package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts    *prometheus.CounterVec
	fitDuration  *prometheus.HistogramVec
	clamped      *prometheus.CounterVec
	upstream     *prometheus.CounterVec
	upstreamTime prometheus.Histogram
	cache        *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// New returns the recorder bound to the default Prometheus registry.
// Collectors are registered once per process.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewWithRegistry(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// NewWithRegistry registers a fresh set of collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_forecasts_total",
				Help: "Forecast requests by model and result",
			},
			[]string{"model", "result"},
		),
		fitDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricecast_forecast_duration_seconds",
				Help:    "Validate, fit and predict duration",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"model"},
		),
		clamped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_forecast_horizon_clamped_total",
				Help: "Forecasts whose requested horizon exceeded the limit",
			},
			[]string{"model"},
		),
		upstream: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_upstream_requests_total",
				Help: "History provider calls by result",
			},
			[]string{"result"},
		),
		upstreamTime: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pricecast_upstream_duration_seconds",
				Help:    "History provider call duration including retries",
				Buckets: prometheus.DefBuckets,
			},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_history_cache_total",
				Help: "History cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricecast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordForecast records one forecast outcome (ok, invalid, error).
func (r *Recorder) RecordForecast(model, result string, seconds float64) {
	r.forecasts.WithLabelValues(model, result).Inc()
	if result == "ok" {
		r.fitDuration.WithLabelValues(model).Observe(seconds)
	}
}

// RecordClamped counts a horizon cut to the engine limit.
func (r *Recorder) RecordClamped(model string) {
	r.clamped.WithLabelValues(model).Inc()
}

// RecordUpstream records a history provider call.
func (r *Recorder) RecordUpstream(result string, seconds float64) {
	r.upstream.WithLabelValues(result).Inc()
	r.upstreamTime.Observe(seconds)
}

// RecordCache records a history cache hit or miss.
func (r *Recorder) RecordCache(result string) {
	r.cache.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
