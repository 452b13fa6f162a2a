package di

import (
	"context"
	"fmt"

	"MacroCast/internal/domain/models"
	"MacroCast/internal/domain/repository"
	dservice "MacroCast/internal/domain/service"
	"MacroCast/internal/handler/api"
	internalrepo "MacroCast/internal/repository"
	"MacroCast/internal/service/bcb"
	"MacroCast/internal/service/catalog"
	"MacroCast/internal/services/analytics"
	"MacroCast/internal/usecase"
	"MacroCast/pkg/cache"
	"MacroCast/pkg/config"
	xhttp "MacroCast/pkg/http"
	"MacroCast/pkg/http/middleware"
	pkgkafka "MacroCast/pkg/kafka"
	applogger "MacroCast/pkg/logger"
	"MacroCast/pkg/metrics"
	"MacroCast/pkg/postgres"
	"MacroCast/pkg/server"
)

const userAgent = "MacroCast/1.0 (+https://api.bcb.gov.br)"

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideHTTPClient creates the outbound client used for the SGS API.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Macro.HTTPTimeout()),
		xhttp.WithRateLimit(cfg.Macro.RequestsPerSecond, cfg.Macro.Burst),
		xhttp.WithUserAgent(userAgent),
	)
}

func ProvideSeriesSource(client *xhttp.Client, cfg *config.Config, l *applogger.Logger, m repository.Metrics) repository.SeriesSource {
	return bcb.New(client,
		bcb.WithBaseURL(cfg.Macro.BaseURL),
		bcb.WithLogger(l),
		bcb.WithMetrics(m),
	)
}

func ProvideSeriesResolver() usecase.SeriesResolver {
	return catalog.New()
}

func ProvideForecaster(l *applogger.Logger, m repository.Metrics) dservice.Forecaster {
	return analytics.NewForecaster(
		analytics.WithLogger(l),
		analytics.WithMetrics(m),
	)
}

// ProvideMemoryCache creates the in-process forecast tier.
func ProvideMemoryCache(cfg *config.Config) *cache.MemoryCache[models.CacheKey, models.ForecastResult] {
	return cache.NewMemoryCache[models.CacheKey, models.ForecastResult](
		models.ForecastResult.Clone,
		cache.WithTTL(cfg.Macro.CacheTTL()),
	)
}

// ProvideForecastStore opens the persistent tier selected by cache.backend.
// Connection failures degrade to memory-only and return nil.
func ProvideForecastStore(cfg *config.Config, l *applogger.Logger) repository.ForecastStore {
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Database.ConnectTimeout)
	defer cancel()

	ttl := cfg.Macro.CacheTTL()
	opts := []internalrepo.StoreOption{internalrepo.WithStoreLogger(l)}

	switch cfg.Cache.Backend {
	case config.BackendDatabase:
		client, err := postgres.NewClient(ctx,
			postgres.WithDSN(cfg.Database.DSN()),
			postgres.WithMaxConnections(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns),
			postgres.WithConnMaxLifetime(cfg.Database.ConnMaxLifetime),
			postgres.WithConnectTimeout(cfg.Database.ConnectTimeout),
		)
		if err != nil {
			l.Warn("postgres unavailable, using memory cache only", applogger.Error(err))
			return nil
		}
		store := internalrepo.NewPostgresMacroCache(client, ttl, opts...)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			l.Warn("macro_cache schema failed, using memory cache only", applogger.Error(err))
			return nil
		}
		l.Info("persistent cache ready",
			applogger.String("backend", config.BackendDatabase),
			applogger.String("host", cfg.Database.Host),
			applogger.String("database", cfg.Database.Name),
		)
		return store

	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx,
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			l.Warn("redis unavailable, using memory cache only", applogger.Error(err))
			return nil
		}
		l.Info("persistent cache ready",
			applogger.String("backend", config.BackendRedis),
			applogger.String("addr", cfg.Redis.Addr),
		)
		return internalrepo.NewRedisMacroCache(rc, ttl, opts...)
	}

	l.Info("persistent cache disabled", applogger.String("backend", cfg.Cache.Backend))
	return nil
}

// ProvideMacroForecastUseCase builds the orchestrator. The cleanup closes
// the persistent tier.
func ProvideMacroForecastUseCase(
	resolver usecase.SeriesResolver,
	source repository.SeriesSource,
	forecaster dservice.Forecaster,
	memory *cache.MemoryCache[models.CacheKey, models.ForecastResult],
	store repository.ForecastStore,
	cfg *config.Config,
	l *applogger.Logger,
	m repository.Metrics,
) (*usecase.MacroForecastUseCase, func()) {
	uc := usecase.NewMacroForecastUseCase(resolver, source, forecaster, memory, store,
		usecase.WithLogger(l),
		usecase.WithMetrics(m),
		usecase.WithFallbackMonths(cfg.Macro.FallbackMonths),
		usecase.WithDefaultHorizon(cfg.Macro.DefaultHorizon),
	)
	cleanup := func() {
		if err := uc.Close(); err != nil {
			l.Warn("persistent cache close error", applogger.Error(err))
		}
	}
	return uc, cleanup
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *middleware.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return middleware.NewLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Refill)
}

func ProvideMacroHandler(l *applogger.Logger, uc *usecase.MacroForecastUseCase, limiter *middleware.Limiter) xhttp.Handler {
	return api.NewMacroEchoHandler(l, uc, limiter)
}

// ProvideApp creates the application server. A persistent cache tier that
// can report liveness is added to /healthz.
func ProvideApp(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, store repository.ForecastStore) *server.App {
	var opts []xhttp.ServerOption
	if hc, ok := store.(repository.HealthChecker); ok {
		opts = append(opts, xhttp.WithHealthCheck("cache_"+cfg.Cache.Backend, hc.Health))
	}
	return server.New(cfg, l, h, opts...)
}

// ProvideReportPublisher returns nil when no report topic is configured.
func ProvideReportPublisher(cfg *config.Config, l *applogger.Logger) (repository.ReportPublisher, func(), error) {
	if cfg.Prewarm.ReportTopic == "" {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaReportPublisher(producer, cfg.Prewarm.ReportTopic)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pub, cleanup, nil
}

// ProvidePrewarmer creates the cache pre-warm job.
func ProvidePrewarmer(
	uc *usecase.MacroForecastUseCase,
	params usecase.PrewarmParams,
	pub repository.ReportPublisher,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.Prewarmer {
	opts := []usecase.PrewarmOption{
		usecase.WithPrewarmLogger(l),
		usecase.WithPrewarmMetrics(m),
	}
	if pub != nil {
		opts = append(opts, usecase.WithReportPublisher(pub))
	}
	return usecase.NewPrewarmer(uc, params, opts...)
}
