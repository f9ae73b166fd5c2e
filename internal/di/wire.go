//go:build wireinject
// +build wireinject

package di

import (
	"SwingRadar/pkg/config"
	"SwingRadar/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Market data
		ProvideTickerStream,
		ProvideMarketData,
		ProvideIndicators,
		ProvideForecaster,
		ProvideEngine,

		// Storage and messaging
		ProvideBytesCache,
		ProvideSnapshotStore,
		ProvideClickHouseClient,
		ProvideSignalHistory,
		ProvideKafkaProducer,
		ProvideEventPublisher,

		// Notifications
		ProvideNotifier,

		// Use cases
		ProvideLedger,
		ProvideAnalyzer,
		ProvideScheduler,

		// HTTP surface
		ProvideAdminStore,
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
