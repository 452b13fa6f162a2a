package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/timeseries"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
	domsvc "MacroCast/internal/domain/service"
	applogger "MacroCast/pkg/logger"
)

// MinARIMAPoints is the shortest history the ARIMA model is tried on.
const MinARIMAPoints = 5

// ARIMAMinFitPoints is the shortest history goarima accepts for order
// (1,1,1). Shorter series fail the fit and take the linear fallback.
const ARIMAMinFitPoints = 13

// Fallback reasons, also used as metric labels.
const (
	ReasonShortSeries = "short_series"
	ReasonModelError  = "model_error"
	ReasonFitError    = "fit_error"
)

// ModelFunc fits a model on series and returns horizon predictions.
type ModelFunc func(series []float64, horizon int) ([]float64, error)

// Option configures Forecaster.
type Option func(*Forecaster)

// Forecaster runs ARIMA(1,1,1) and degrades to a least squares line, then to
// repeating the last value.
type Forecaster struct {
	log     *applogger.Logger
	metrics drepo.Metrics
	model   ModelFunc
}

func NewForecaster(opts ...Option) *Forecaster {
	f := &Forecaster{
		log:   applogger.Nop(),
		model: ARIMA111,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithLogger(l *applogger.Logger) Option {
	return func(f *Forecaster) {
		if l != nil {
			f.log = l
		}
	}
}

func WithMetrics(m drepo.Metrics) Option {
	return func(f *Forecaster) {
		f.metrics = m
	}
}

// WithModel swaps the statistical model.
func WithModel(m ModelFunc) Option {
	return func(f *Forecaster) {
		if m != nil {
			f.model = m
		}
	}
}

// Forecast returns exactly horizon values.
func (f *Forecaster) Forecast(series []float64, horizon int) ([]float64, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidHorizon, horizon)
	}
	if len(series) == 0 {
		return nil, models.ErrEmptySeries
	}

	clean := dropNaN(series)
	if len(clean) == 0 {
		return nil, fmt.Errorf("%w: only NaN values", models.ErrEmptySeries)
	}

	start := time.Now()
	if len(clean) < MinARIMAPoints {
		f.log.Debug("short series, using linear forecast",
			applogger.Int("points", len(clean)),
			applogger.Int("horizon", horizon),
		)
		f.recordFallback(ReasonShortSeries)
		return f.linear(clean, horizon, start), nil
	}

	out, err := f.runModel(clean, horizon)
	if err != nil {
		f.log.Warn("arima failed, using linear forecast",
			applogger.Int("points", len(clean)),
			applogger.Int("horizon", horizon),
			applogger.Error(err),
		)
		f.recordFallback(ReasonModelError)
		return f.linear(clean, horizon, start), nil
	}

	if f.metrics != nil {
		f.metrics.RecordForecast("arima", time.Since(start).Seconds())
	}
	return out, nil
}

// runModel turns panics and unusable output into errors.
func (f *Forecaster) runModel(series []float64, horizon int) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("model panic: %v", r)
		}
	}()

	out, err = f.model(append([]float64(nil), series...), horizon)
	if err != nil {
		return nil, err
	}
	if len(out) != horizon {
		return nil, fmt.Errorf("model returned %d values, want %d", len(out), horizon)
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("model returned non-finite value at step %d", i+1)
		}
	}
	return out, nil
}

func (f *Forecaster) linear(series []float64, horizon int, start time.Time) []float64 {
	out, ok := LinearForecast(series, horizon)
	if !ok {
		f.log.Warn("linear fit degenerate, repeating last value", applogger.Int("points", len(series)))
		f.recordFallback(ReasonFitError)
	}
	if f.metrics != nil {
		f.metrics.RecordForecast("linear", time.Since(start).Seconds())
	}
	return out
}

func (f *Forecaster) recordFallback(reason string) {
	if f.metrics != nil {
		f.metrics.RecordFallback(reason)
	}
}

// ARIMA111 fits an ARIMA(1,1,1) model.
func ARIMA111(series []float64, horizon int) ([]float64, error) {
	model := arima.New(1, 1, 1)
	if err := model.Fit(&timeseries.Series{Values: series}); err != nil {
		return nil, fmt.Errorf("arima fit: %w", err)
	}
	out, err := model.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("arima predict: %w", err)
	}
	return out, nil
}

// LinearForecast extrapolates a least squares line fitted over indices
// 0..n-1 to n..n+horizon-1. One point is repeated. ok is false when the fit
// is not finite and the last value was repeated instead.
func LinearForecast(series []float64, horizon int) ([]float64, bool) {
	n := len(series)
	last := series[n-1]
	if n == 1 {
		return repeat(last, horizon), true
	}

	var meanX, meanY float64
	for i, y := range series {
		meanX += float64(i)
		meanY += y
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxy, sxx float64
	for i, y := range series {
		dx := float64(i) - meanX
		sxy += dx * (y - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return repeat(last, horizon), false
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX
	if !finite(slope) || !finite(intercept) {
		return repeat(last, horizon), false
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = intercept + slope*float64(n+i)
	}
	return out, true
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func dropNaN(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var _ domsvc.Forecaster = (*Forecaster)(nil)
