package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Editor sessions
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	MaxSessions          int

	// Palette and inspector data; empty means built-in
	CatalogPath string
	SchemaPath  string

	// AWS configuration
	AWSRegion           string
	EventBusName        string
	EventSource         string
	CloudWatchNamespace string
	MetricsFlushPeriod  time.Duration

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// HTTP edge
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	// Feature flags
	EnableMetrics     bool
	EnableCloudWatch  bool
	EnableEventBridge bool
	EnableTracing     bool
	EnableCORS        bool
}

// LoadConfig loads configuration from environment variables, after
// reading an optional .env file. Variables already set win over the file.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		SessionTTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		MaxSessions:          getEnvInt("MAX_SESSIONS", 1000),

		CatalogPath: getEnv("CATALOG_PATH", ""),
		SchemaPath:  getEnv("SCHEMA_PATH", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-west-2"),
		EventBusName:        getEnv("EVENT_BUS_NAME", "workflow-builder-events"),
		EventSource:         getEnv("EVENT_SOURCE", "workflowbuilder.editor"),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "WorkflowBuilder"),
		MetricsFlushPeriod:  getEnvDuration("METRICS_FLUSH_PERIOD", time.Minute),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),

		EnableMetrics:     getEnvBool("ENABLE_METRICS", true),
		EnableCloudWatch:  getEnvBool("ENABLE_CLOUDWATCH", false),
		EnableEventBridge: getEnvBool("ENABLE_EVENTBRIDGE", false),
		EnableTracing:     getEnvBool("ENABLE_TRACING", false),
		EnableCORS:        getEnvBool("ENABLE_CORS", true),
	}
	if cfg.LambdaFunctionName != "" {
		cfg.IsLambda = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.IsProduction() && c.EnableEventBridge && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
