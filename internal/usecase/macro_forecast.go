package usecase

import (
	"context"
	"fmt"
	"time"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
	dservice "MacroCast/internal/domain/service"
	"MacroCast/internal/service/bcb"
	"MacroCast/pkg/cache"
	applogger "MacroCast/pkg/logger"
	"MacroCast/pkg/util"
)

const (
	DefaultFallbackMonths = 24
	DefaultHorizon        = 3
)

// SeriesResolver maps user input to a provider series.
type SeriesResolver interface {
	Resolve(name string) (models.MacroSeries, error)
}

// MacroForecaster is the entry point consumed by transports and jobs.
type MacroForecaster interface {
	GetMacroForecast(ctx context.Context, series, from string, horizon *int) (models.ForecastResult, error)
}

// MacroForecastUseCase fetches, forecasts and caches macro series.
type MacroForecastUseCase struct {
	catalog    SeriesResolver
	source     drepo.SeriesSource
	forecaster dservice.Forecaster
	cache      *cache.Layered[models.CacheKey, models.ForecastResult]
	store      drepo.ForecastStore

	log            *applogger.Logger
	metrics        drepo.Metrics
	now            func() time.Time
	fallbackMonths int
	defaultHorizon int
}

type MacroOption func(*MacroForecastUseCase)

// WithClock replaces time.Now when deciding "today".
func WithClock(now func() time.Time) MacroOption {
	return func(uc *MacroForecastUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

func WithLogger(l *applogger.Logger) MacroOption {
	return func(uc *MacroForecastUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithMetrics(m drepo.Metrics) MacroOption {
	return func(uc *MacroForecastUseCase) {
		uc.metrics = m
	}
}

// WithFallbackMonths sets the look-back used when no start date is given.
func WithFallbackMonths(months int) MacroOption {
	return func(uc *MacroForecastUseCase) {
		if months > 0 {
			uc.fallbackMonths = months
		}
	}
}

func WithDefaultHorizon(h int) MacroOption {
	return func(uc *MacroForecastUseCase) {
		if h >= 0 {
			uc.defaultHorizon = h
		}
	}
}

// NewMacroForecastUseCase wires the pipeline. store may be nil for a
// memory-only cache.
func NewMacroForecastUseCase(
	catalog SeriesResolver,
	source drepo.SeriesSource,
	forecaster dservice.Forecaster,
	memory *cache.MemoryCache[models.CacheKey, models.ForecastResult],
	store drepo.ForecastStore,
	opts ...MacroOption,
) *MacroForecastUseCase {
	uc := &MacroForecastUseCase{
		catalog:        catalog,
		source:         source,
		forecaster:     forecaster,
		store:          store,
		log:            applogger.Nop(),
		now:            time.Now,
		fallbackMonths: DefaultFallbackMonths,
		defaultHorizon: DefaultHorizon,
	}
	for _, opt := range opts {
		opt(uc)
	}

	var tier cache.Tier[models.CacheKey, models.ForecastResult]
	if store != nil {
		tier = store
	}
	uc.cache = cache.NewLayered(memory, tier, cache.WithErrorHandler(uc.onStoreError))
	return uc
}

// GetMacroForecast returns the historical series plus horizon forecast
// points, served from cache while fresh.
func (uc *MacroForecastUseCase) GetMacroForecast(ctx context.Context, series, from string, horizon *int) (models.ForecastResult, error) {
	ms, err := uc.catalog.Resolve(series)
	if err != nil {
		return models.ForecastResult{}, err
	}

	today := uc.now()
	start, err := util.ParseFromDate(from, uc.fallbackMonths, today)
	if err != nil {
		return models.ForecastResult{}, err
	}
	start, end, err := util.BuildRange(start, nil, today)
	if err != nil {
		return models.ForecastResult{}, err
	}

	h := uc.defaultHorizon
	if horizon != nil {
		h = *horizon
	}
	if h < 0 {
		return models.ForecastResult{}, fmt.Errorf("%w: %d", models.ErrInvalidHorizon, h)
	}

	key := models.CacheKey{Alias: ms.Alias, StartDate: start, EndDate: end, Horizon: h}
	if entry, ok := uc.lookup(ctx, key); ok {
		return entry.Payload, nil
	}

	began := time.Now()
	result, err := uc.compute(ctx, ms, start, end, h)
	if err != nil {
		return models.ForecastResult{}, err
	}
	uc.cache.Set(ctx, key, result)

	uc.log.Info("macro forecast computed",
		applogger.String("series", ms.Alias),
		applogger.Int("points", len(result.HistoricalValues)),
		applogger.Int("horizon", h),
		applogger.Duration("elapsed_ms", time.Since(began)),
	)
	return result, nil
}

func (uc *MacroForecastUseCase) compute(ctx context.Context, ms models.MacroSeries, start, end time.Time, h int) (models.ForecastResult, error) {
	records, err := uc.source.Fetch(ctx, ms, start, end)
	if err != nil {
		return models.ForecastResult{}, err
	}

	dates, values := bcb.ParseRecords(records)
	if len(values) == 0 {
		return models.ForecastResult{}, fmt.Errorf("%w: %s between %s and %s",
			models.ErrEmptySeriesFromSource, ms.Alias, start.Format(util.ISODateLayout), end.Format(util.ISODateLayout))
	}

	forecast := []float64{}
	if h > 0 {
		forecast, err = uc.forecaster.Forecast(values, h)
		if err != nil {
			return models.ForecastResult{}, err
		}
	}

	last := dates[len(dates)-1]
	return models.ForecastResult{
		HistoricalValues:     values,
		ForecastValues:       forecast,
		HistoricalTimestamps: models.NewDates(dates),
		ForecastTimestamps:   models.NewDates(bcb.GenerateFutureDates(last, h, dates)),
		Horizon:              h,
		Source:               ms.SourceDescription(),
		SeriesID:             ms.Alias,
		SeriesDescription:    ms.Description,
		LastUpdated:          models.NewDate(last),
	}, nil
}

// lookup consults both tiers and records which one answered.
func (uc *MacroForecastUseCase) lookup(ctx context.Context, key models.CacheKey) (models.CacheEntry, bool) {
	e, src, ok := uc.cache.Get(ctx, key)

	if uc.metrics != nil {
		uc.metrics.RecordCacheLookup(string(cache.SourceMemory), src == cache.SourceMemory)
		if src != cache.SourceMemory && uc.cache.Persistent() {
			uc.metrics.RecordCacheLookup(string(cache.SourcePersistent), src == cache.SourcePersistent)
		}
	}
	if !ok {
		return models.CacheEntry{}, false
	}

	uc.log.Debug("macro cache hit",
		applogger.String("key", key.String()),
		applogger.String("tier", string(src)),
		applogger.String("expires_at", e.ExpiresAt.Format(time.RFC3339)),
	)
	return models.CacheEntry{Payload: e.Value, ExpiresAt: e.ExpiresAt, UpdatedAt: e.UpdatedAt}, true
}

func (uc *MacroForecastUseCase) onStoreError(op string, err error) {
	uc.log.Warn("persistent macro cache error", applogger.String("op", op), applogger.Error(err))
	if uc.metrics != nil {
		uc.metrics.RecordCacheError(op)
	}
}

// ClearMemoryCache drops the in-process tier only.
func (uc *MacroForecastUseCase) ClearMemoryCache() {
	uc.cache.ClearMemory()
}

// ClearCache drops both tiers.
func (uc *MacroForecastUseCase) ClearCache(ctx context.Context) {
	uc.cache.Clear(ctx)
}

// Close releases the persistent tier.
func (uc *MacroForecastUseCase) Close() error {
	if uc.store == nil {
		return nil
	}
	return uc.store.Close()
}
