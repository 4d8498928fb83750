// Package metrics implements the service telemetry port with Prometheus
// and an optional CloudWatch flusher.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workflowbuilder/application/ports"
)

// Collector holds all Prometheus metrics for the service. Each collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec

	ActiveSessions prometheus.Gauge
	Notifications  *prometheus.CounterVec
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates a collector with the given namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Editor commands handled",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Editor command latency in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"command"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Editor queries handled",
		}, []string{"query", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Editor query latency in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"query"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open editor sessions",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications pushed out of editor sessions",
		}, []string{"kind"}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.CommandDuration,
		c.Queries,
		c.QueryDuration,
		c.ActiveSessions,
		c.Notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one HTTP request
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) ObserveCommand(name string, d time.Duration, err error) {
	c.Commands.WithLabelValues(name, status(err)).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (c *Collector) ObserveQuery(name string, d time.Duration, err error) {
	c.Queries.WithLabelValues(name, status(err)).Inc()
	c.QueryDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (c *Collector) SetActiveSessions(n int) {
	c.ActiveSessions.Set(float64(n))
}

func (c *Collector) IncNotification(kind ports.NotificationKind) {
	c.Notifications.WithLabelValues(string(kind)).Inc()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Fanout sends every observation to each of its members
type Fanout []ports.Metrics

func (f Fanout) ObserveCommand(name string, d time.Duration, err error) {
	for _, m := range f {
		m.ObserveCommand(name, d, err)
	}
}

func (f Fanout) ObserveQuery(name string, d time.Duration, err error) {
	for _, m := range f {
		m.ObserveQuery(name, d, err)
	}
}

func (f Fanout) SetActiveSessions(n int) {
	for _, m := range f {
		m.SetActiveSessions(n)
	}
}

func (f Fanout) IncNotification(kind ports.NotificationKind) {
	for _, m := range f {
		m.IncNotification(kind)
	}
}
