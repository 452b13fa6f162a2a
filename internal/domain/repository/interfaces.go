package repository

import (
	"context"
	"time"

	"MacroCast/internal/domain/models"
	"MacroCast/pkg/cache"
)

// SeriesSource fetches raw observations from the statistical provider.
type SeriesSource interface {
	Fetch(ctx context.Context, series models.MacroSeries, start, end time.Time) ([]models.RawRecord, error)
}

// ForecastStore is the persistent cache tier. Get returns cache.ErrCacheMiss
// for absent, expired or corrupt rows.
type ForecastStore interface {
	cache.Tier[models.CacheKey, models.ForecastResult]
	Close() error
}

// HealthChecker is implemented by dependencies that can report liveness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// ReportPublisher ships pre-warm reports to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report models.PrewarmReport) error
	Close() error
}

type Metrics interface {
	RecordCacheLookup(tier string, hit bool)
	RecordCacheError(op string)
	RecordSourceFetch(series, outcome string, seconds float64)
	RecordFallback(reason string)
	RecordForecast(method string, seconds float64)
	RecordPrewarm(series string, ok bool)
}
