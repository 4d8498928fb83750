package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowbuilder/application/ports"
	"workflowbuilder/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:          "test",
		MaxBodyBytes:         1 << 20,
		SessionTTL:           time.Minute,
		SessionSweepInterval: time.Minute,
		MaxSessions:          2,
		AWSRegion:            "us-west-2",
		LogLevel:             "error",
		RateLimitRPS:         100,
		RateLimitBurst:       100,
		EnableMetrics:        true,
	}
}

func TestInitializeContainer(t *testing.T) {
	c, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)

	assert.NotNil(t, c.Collector)
	assert.Nil(t, c.CloudWatch)
	assert.Nil(t, c.Publisher)
	assert.NotEmpty(t, c.Catalog.Templates())

	handler := c.Router.Setup()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	ctx := context.Background()
	_, err = c.Sessions.Create(ctx, "a")
	require.NoError(t, err)
	_, err = c.Sessions.Create(ctx, "b")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "store is full")
}

func TestProvideLogger_InvalidLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"
	_, err := ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideMetrics(t *testing.T) {
	assert.Equal(t, ports.NopMetrics{}, ProvideMetrics(nil, nil))

	collector := ProvideCollector(testConfig())
	assert.Same(t, collector, ProvideMetrics(collector, nil))
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example.com", "https://*.preview.dev"})

	cases := map[string]bool{
		"":                            true,
		"https://app.example.com":     true,
		"https://pr-12.preview.dev":   true,
		"https://.preview.dev":        false,
		"https://evil.com":            false,
		"http://app.example.com.evil": false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, check(r), origin)
	}
}
