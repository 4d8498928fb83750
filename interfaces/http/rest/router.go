package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"workflowbuilder/application/commands/bus"
	querybus "workflowbuilder/application/queries/bus"
	"workflowbuilder/infrastructure/config"
	"workflowbuilder/infrastructure/metrics"
	"workflowbuilder/interfaces/http/rest/handlers"
	"workflowbuilder/interfaces/http/rest/middleware"
	pkgerrors "workflowbuilder/pkg/errors"
	"workflowbuilder/pkg/observability"
)

// ReadinessCheck reports whether the service can take traffic
type ReadinessCheck func() error

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cfg        *config.Config
	collector  *metrics.Collector
	streams    handlers.StreamServer
	tracer     *observability.Tracer
	limiter    *middleware.RateLimiter
	ready      ReadinessCheck
	logger     *zap.Logger
}

// NewRouter creates a new router instance. collector, streams and ready may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	collector *metrics.Collector,
	streams handlers.StreamServer,
	tracer *observability.Tracer,
	ready ReadinessCheck,
	logger *zap.Logger,
) *Router {
	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		cfg:        cfg,
		collector:  collector,
		streams:    streams,
		tracer:     tracer,
		limiter:    limiter,
		ready:      ready,
		logger:     logger,
	}
}

// Limiter returns the rate limiter, nil when limiting is off
func (rt *Router) Limiter() *middleware.RateLimiter {
	return rt.limiter
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	errs := pkgerrors.NewErrorHandler(rt.logger, rt.cfg.IsDevelopment())
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}
	router.Use(rt.tracer.Middleware)

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "If-None-Match", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "ETag", "Location"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	deps := handlers.Deps{
		CommandBus:   rt.commandBus,
		QueryBus:     rt.queryBus,
		Errors:       errs,
		Logger:       rt.logger,
		Tracer:       rt.tracer,
		MaxBodyBytes: rt.cfg.MaxBodyBytes,
	}
	sessionHandler := handlers.NewSessionHandler(deps, rt.streams)
	canvasHandler := handlers.NewCanvasHandler(deps)
	inspectorHandler := handlers.NewInspectorHandler(deps)
	catalogHandler := handlers.NewCatalogHandler(deps)

	router.Route("/api/v1", func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(rt.limiter.Middleware(errs))
		}

		r.Get("/catalog", catalogHandler.ListCatalog)
		r.Get("/templates", catalogHandler.ListTemplates)
		r.Get("/templates/{name}", catalogHandler.GetTemplate)
		r.Get("/schemas/{type}", catalogHandler.GetSchema)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Get("/", sessionHandler.ListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.CloseSession)
				r.Put("/name", sessionHandler.RenameWorkflow)
				r.Get("/canvas", sessionHandler.GetCanvas)
				r.Get("/workflow", sessionHandler.GetWorkflow)
				r.Get("/events", sessionHandler.Events)

				r.Post("/nodes", canvasHandler.DropNode)
				r.Patch("/nodes/{nodeID}", canvasHandler.UpdateNodeData)
				r.Put("/nodes/{nodeID}/position", canvasHandler.MoveNode)
				r.Delete("/nodes/{nodeID}", canvasHandler.DeleteNode)
				r.Post("/connections", canvasHandler.Connect)
				r.Delete("/connections/{connectionID}", canvasHandler.DeleteConnection)
				r.Put("/selection", canvasHandler.Select)
				r.Post("/pointer", canvasHandler.Pointer)
				r.Put("/mode", canvasHandler.SetMode)
				r.Post("/zoom", canvasHandler.Zoom)
				r.Post("/wheel", canvasHandler.Wheel)
				r.Post("/grid", canvasHandler.ToggleGrid)
				r.Post("/template", canvasHandler.ApplyTemplate)

				r.Route("/inspector", func(r chi.Router) {
					r.Get("/", inspectorHandler.View)
					r.Put("/fields/{key}", inspectorHandler.SetField)
					r.Put("/title", inspectorHandler.SetTitle)
					r.Post("/save", inspectorHandler.Save)
					r.Post("/discard", inspectorHandler.Discard)
					r.Post("/delete", inspectorHandler.Delete)
					r.Post("/test", inspectorHandler.Test)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.ready != nil {
		if err := rt.ready(); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
