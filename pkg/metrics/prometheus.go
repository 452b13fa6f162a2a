package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	cacheLookups  *prometheus.CounterVec
	cacheErrors   *prometheus.CounterVec
	sourceFetches *prometheus.CounterVec
	sourceLatency *prometheus.HistogramVec
	fallbacks     *prometheus.CounterVec
	forecastTime  *prometheus.HistogramVec
	prewarm       *prometheus.CounterVec
}

// New creates a recorder registered on reg. A nil reg means the default
// registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrocast_cache_lookups_total",
				Help: "Cache lookups by tier and result",
			},
			[]string{"tier", "result"},
		),
		cacheErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrocast_cache_errors_total",
				Help: "Persistent cache tier errors swallowed by the service",
			},
			[]string{"op"},
		),
		sourceFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrocast_source_fetches_total",
				Help: "Provider fetches by series and outcome",
			},
			[]string{"series", "outcome"},
		),
		sourceLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrocast_source_fetch_seconds",
				Help:    "Provider fetch latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"series"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrocast_forecast_fallbacks_total",
				Help: "Forecasts served by the linear fallback, by reason",
			},
			[]string{"reason"},
		),
		forecastTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrocast_forecast_seconds",
				Help:    "Forecast computation time by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		prewarm: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrocast_prewarm_runs_total",
				Help: "Pre-warm attempts by series and result",
			},
			[]string{"series", "result"},
		),
	}
}

// RecordCacheLookup records a hit or miss on one tier.
func (r *Recorder) RecordCacheLookup(tier string, hit bool) {
	r.cacheLookups.WithLabelValues(tier, result(hit, "hit", "miss")).Inc()
}

// RecordCacheError records a swallowed persistent tier error.
func (r *Recorder) RecordCacheError(op string) {
	r.cacheErrors.WithLabelValues(op).Inc()
}

// RecordSourceFetch records one provider call.
func (r *Recorder) RecordSourceFetch(series, outcome string, seconds float64) {
	r.sourceFetches.WithLabelValues(series, outcome).Inc()
	r.sourceLatency.WithLabelValues(series).Observe(seconds)
}

// RecordFallback records a forecast that fell back to the linear model.
func (r *Recorder) RecordFallback(reason string) {
	r.fallbacks.WithLabelValues(reason).Inc()
}

// RecordForecast records forecast latency in seconds.
func (r *Recorder) RecordForecast(method string, seconds float64) {
	r.forecastTime.WithLabelValues(method).Observe(seconds)
}

// RecordPrewarm records the outcome of pre-warming one series.
func (r *Recorder) RecordPrewarm(series string, ok bool) {
	r.prewarm.WithLabelValues(series, result(ok, "ok", "error")).Inc()
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
