package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"workflowbuilder/application/commands/bus"
	commandhandlers "workflowbuilder/application/commands/handlers"
	"workflowbuilder/application/ports"
	querybus "workflowbuilder/application/queries/bus"
	queryhandlers "workflowbuilder/application/queries/handlers"
	"workflowbuilder/application/services"
	"workflowbuilder/application/session"
	domainconfig "workflowbuilder/domain/config"
	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
	"workflowbuilder/infrastructure/config"
	"workflowbuilder/infrastructure/messaging/eventbridge"
	"workflowbuilder/infrastructure/metrics"
	"workflowbuilder/infrastructure/persistence/memory"
	"workflowbuilder/interfaces/http/rest"
	"workflowbuilder/interfaces/websocket"
	"workflowbuilder/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zcfg.Level = level
	}
	if cfg.IsLambda {
		zcfg.InitialFields = map[string]interface{}{"function": cfg.LambdaFunctionName}
	}
	return zcfg.Build()
}

// ProvideDomainConfig picks the editor rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideCatalog loads the palette, falling back to the built-in one
func ProvideCatalog(cfg *config.Config) (*palette.Catalog, error) {
	if cfg.CatalogPath == "" {
		return palette.Default(), nil
	}
	return palette.Load(cfg.CatalogPath)
}

// ProvideSchemaTable loads the inspector field table, falling back to the built-in one
func ProvideSchemaTable(cfg *config.Config) (*inspector.Table, error) {
	if cfg.SchemaPath == "" {
		return inspector.DefaultTable(), nil
	}
	return inspector.LoadTable(cfg.SchemaPath)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvidePublisher creates the EventBridge publisher, nil when disabled
func ProvidePublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) *eventbridge.Publisher {
	if !cfg.EnableEventBridge {
		return nil
	}
	return eventbridge.NewPublisher(client, eventbridge.Options{
		EventBusName: cfg.EventBusName,
		Source:       cfg.EventSource,
	}, logger.Named("eventbridge"))
}

// ProvideCollector creates the Prometheus collector, nil when disabled
func ProvideCollector(cfg *config.Config) *metrics.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return metrics.NewCollector("workflow_builder")
}

// ProvideCloudWatch creates the CloudWatch flusher, nil when disabled
func ProvideCloudWatch(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *metrics.CloudWatch {
	if !cfg.EnableCloudWatch {
		return nil
	}
	namespace := fmt.Sprintf("%s/%s", cfg.CloudWatchNamespace, cfg.Environment)
	return metrics.NewCloudWatch(client, namespace, logger.Named("cloudwatch"))
}

// ProvideMetrics fans observations out to whichever backends are enabled
func ProvideMetrics(collector *metrics.Collector, cw *metrics.CloudWatch) ports.Metrics {
	var fan metrics.Fanout
	if collector != nil {
		fan = append(fan, collector)
	}
	if cw != nil {
		fan = append(fan, cw)
	}
	switch len(fan) {
	case 0:
		return ports.NopMetrics{}
	case 1:
		return fan[0]
	default:
		return fan
	}
}

// ProvideHub creates the websocket hub
func ProvideHub(logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(logger.Named("websocket"))
}

// ProvideStreamServer creates the websocket upgrade server
func ProvideStreamServer(hub *websocket.Hub, cfg *config.Config, logger *zap.Logger) *websocket.Server {
	wsCfg := websocket.DefaultServerConfig()
	if cfg.IsProduction() {
		wsCfg.CheckOrigin = originChecker(cfg.CORSOrigins)
	}
	return websocket.NewServer(hub, wsCfg, logger.Named("websocket"))
}

// ProvideSinks lists every notification sink
func ProvideSinks(hub *websocket.Hub, publisher *eventbridge.Publisher) []ports.NotificationSink {
	sinks := []ports.NotificationSink{hub}
	if publisher != nil {
		sinks = append(sinks, publisher)
	}
	return sinks
}

// ProvideSessionRepository creates the in-memory session store
func ProvideSessionRepository(cfg *config.Config) session.Repository {
	return memory.NewSessionRepository(cfg.MaxSessions)
}

// ProvideSessionService creates the session service
func ProvideSessionService(
	repo session.Repository,
	domainCfg *domainconfig.DomainConfig,
	catalog *palette.Catalog,
	table *inspector.Table,
	sinks []ports.NotificationSink,
	m ports.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) *services.SessionService {
	return services.NewSessionService(repo, session.Deps{
		Config:  domainCfg,
		Catalog: catalog,
		Table:   table,
		Sinks:   sinks,
		Metrics: m,
		Logger:  logger,
	}, cfg.SessionTTL, logger.Named("sessions"))
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(svc *services.SessionService, m ports.Metrics, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(m),
	)
	if err := commandhandlers.NewEditorHandlers(svc, logger).Register(commandBus); err != nil {
		return nil, err
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	svc *services.SessionService,
	catalog *palette.Catalog,
	table *inspector.Table,
	m ports.Metrics,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(m),
	)
	if err := queryhandlers.NewEditorQueries(svc, catalog, table).Register(queryBus); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("workflow-builder", cfg.EnableTracing)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	collector *metrics.Collector,
	streams *websocket.Server,
	tracer *observability.Tracer,
	repo session.Repository,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, cfg, collector, streams, tracer, readiness(repo, cfg.MaxSessions), logger)
}

// readiness fails once the session store is full
func readiness(repo session.Repository, limit int) rest.ReadinessCheck {
	return func() error {
		n, err := repo.Count(context.Background())
		if err != nil {
			return err
		}
		if n >= limit {
			return fmt.Errorf("session capacity reached (%d)", limit)
		}
		return nil
	}
}
