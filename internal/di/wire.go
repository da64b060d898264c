//go:build wireinject
// +build wireinject

package di

import (
	"SignalPull/pkg/config"
	"SignalPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideRunStore,
		ProvideActionPublisher,
		ProvideSnapshotStore,

		// Core services and use cases
		ProvideGuard,
		ProvidePipeline,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
