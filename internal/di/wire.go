//go:build wireinject
// +build wireinject

package di

import (
	"MacroCast/internal/usecase"
	"MacroCast/pkg/config"
	"MacroCast/pkg/server"

	"github.com/google/wire"
)

var forecastSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure clients
	ProvideHTTPClient,
	ProvideSeriesSource,
	ProvideMemoryCache,
	ProvideForecastStore,

	// Domain services
	ProvideSeriesResolver,
	ProvideForecaster,

	// Use cases
	ProvideMacroForecastUseCase,
)

// InitializeApp wires up the HTTP service.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		forecastSet,
		ProvideRateLimiter,
		ProvideMacroHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializePrewarmer wires up the batch pre-warm job.
func InitializePrewarmer(cfg *config.Config, params usecase.PrewarmParams) (*usecase.Prewarmer, func(), error) {
	wire.Build(
		forecastSet,
		ProvideReportPublisher,
		ProvidePrewarmer,
	)
	return nil, nil, nil
}
