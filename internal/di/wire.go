//go:build wireinject
// +build wireinject

package di

import (
	domrepo "PriceCast/internal/domain/repository"
	"PriceCast/pkg/config"
	"PriceCast/pkg/metrics"
	"PriceCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(domrepo.Metrics), new(*metrics.Recorder)),

		// Infrastructure clients
		ProvideCache,
		ProvideHTTPClient,
		ProvideHistoryProvider,
		ProvideForecastPublisher,
		ProvideForecastStore,

		// Use cases
		ProvideEngine,
		ProvideHistoryUseCase,
		ProvideForecastUseCase,
		ProvideWarmer,

		// Transport
		ProvideHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
