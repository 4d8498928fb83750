//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"workflowbuilder/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideCatalog,
	ProvideSchemaTable,
	ProvideAWSConfig,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvidePublisher,
	ProvideCollector,
	ProvideCloudWatch,
	ProvideMetrics,
	ProvideHub,
	ProvideStreamServer,
	ProvideSinks,
	ProvideSessionRepository,
	ProvideSessionService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideTracer,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
