package config

import "time"

// DomainConfig holds all configurable editor rules and geometry constants
type DomainConfig struct {
	// Graph constraints
	MaxNodesPerWorkflow       int
	MaxConnectionsPerWorkflow int
	DefaultWorkflowName       string

	// Viewport
	MinZoom       float64
	MaxZoom       float64
	ZoomStep      float64 // toolbar buttons
	WheelZoomStep float64 // one wheel tick with the modifier held

	// Layout
	GridSize   float64
	ShowGrid   bool
	NodeWidth  float64
	NodeHeight float64

	// Hit testing
	HandleRadius     float64
	DeleteButtonSize float64
	HitStrokeWidth   float64

	// Connection rendering
	CurveOffset  float64
	PathSamples  int
	InputHandle  string
	OutputHandle string

	// Inspector
	TestRunDelay time.Duration
	SecretMask   string
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Graph constraints
		MaxNodesPerWorkflow:       500,
		MaxConnectionsPerWorkflow: 2000,
		DefaultWorkflowName:       "New Workflow",

		// Viewport
		MinZoom:       0.5,
		MaxZoom:       2.0,
		ZoomStep:      1.2,
		WheelZoomStep: 1.1,

		// Layout
		GridSize:   20,
		ShowGrid:   true,
		NodeWidth:  200,
		NodeHeight: 80,

		// Hit testing
		HandleRadius:     10,
		DeleteButtonSize: 20,
		HitStrokeWidth:   12,

		// Connection rendering
		CurveOffset:  50,
		PathSamples:  32,
		InputHandle:  "input",
		OutputHandle: "output",

		// Inspector
		TestRunDelay: time.Second,
		SecretMask:   "••••••••",
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter limits for shared deployments
	config.MaxNodesPerWorkflow = 200
	config.MaxConnectionsPerWorkflow = 800

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxNodesPerWorkflow = 5000
	config.MaxConnectionsPerWorkflow = 20000
	config.TestRunDelay = 250 * time.Millisecond

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// ClampZoom bounds a zoom factor to the configured range
func (c *DomainConfig) ClampZoom(zoom float64) float64 {
	if zoom < c.MinZoom {
		return c.MinZoom
	}
	if zoom > c.MaxZoom {
		return c.MaxZoom
	}
	return zoom
}
