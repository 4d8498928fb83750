package di

import (
	"go.uber.org/zap"

	"workflowbuilder/application/commands/bus"
	querybus "workflowbuilder/application/queries/bus"
	"workflowbuilder/application/services"
	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
	"workflowbuilder/infrastructure/config"
	"workflowbuilder/infrastructure/messaging/eventbridge"
	"workflowbuilder/infrastructure/metrics"
	"workflowbuilder/interfaces/http/rest"
	"workflowbuilder/interfaces/websocket"
)

// Container holds all application dependencies. Collector, CloudWatch and
// Publisher are nil when their feature flag is off.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Catalog    *palette.Catalog
	Table      *inspector.Table
	Sessions   *services.SessionService
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Hub        *websocket.Hub
	Publisher  *eventbridge.Publisher
	Collector  *metrics.Collector
	CloudWatch *metrics.CloudWatch
	Router     *rest.Router
}
