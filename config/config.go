// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Fluid     FluidConfig     `yaml:"fluid"`
	Obstacles ObstaclesConfig `yaml:"obstacles"`
	Particles ParticlesConfig `yaml:"particles"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds solver grid geometry.
// The solver grid is a fraction of the render resolution; Scale is the
// number of render pixels per grid cell.
type GridConfig struct {
	Scale         int `yaml:"scale"`
	WallThickness int `yaml:"wall_thickness"` // top/bottom channel walls, in cells
}

// FluidConfig holds the solver's numeric parameters.
type FluidConfig struct {
	DT                float64 `yaml:"dt"`         // seconds per step
	ClockRate         float64 `yaml:"clock_rate"` // clock units per second of simulated time
	FlowSpeed         float64 `yaml:"flow_speed"` // inflow target, cells per second
	Viscosity         float64 `yaml:"viscosity"`
	Dissipation       float64 `yaml:"dissipation"` // advection decay factor, < 1
	PressureIters     int     `yaml:"pressure_iterations"`
	DiffusionIters    int     `yaml:"diffusion_iterations"`
	VorticityStrength float64 `yaml:"vorticity_strength"`
	InflowWidth       float64 `yaml:"inflow_width"`        // fraction of domain width
	Turbulence        float64 `yaml:"turbulence"`          // background curl-noise gain
	ObstacleShrink    float64 `yaml:"obstacle_shrink"`     // rasterized radius factor
	CacheRefreshTicks int     `yaml:"cache_refresh_ticks"` // steps between CPU snapshot refreshes
	NoiseSeed         int64   `yaml:"noise_seed"`
	DefaultFlowX      float64 `yaml:"default_flow_x"` // query result before first refresh
	DefaultFlowY      float64 `yaml:"default_flow_y"`
}

// ObstaclesConfig holds the procedural obstacle scenario parameters.
type ObstaclesConfig struct {
	Count     int     `yaml:"count"`
	MinRadius float64 `yaml:"min_radius"` // render pixels
	MaxRadius float64 `yaml:"max_radius"`
	Seed      int64   `yaml:"seed"`
}

// ParticlesConfig holds tracer particle parameters.
type ParticlesConfig struct {
	TargetCount int     `yaml:"target_count"`
	SpawnRate   int     `yaml:"spawn_rate"`
	MinLifespan int     `yaml:"min_lifespan"` // ticks
	MaxLifespan int     `yaml:"max_lifespan"`
	Drag        float64 `yaml:"drag"`
	MaxSpeed    float64 `yaml:"max_speed"` // render pixels per tick
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	GridW     int     // solver grid width in cells
	GridH     int     // solver grid height in cells
	DT32      float32 // Fluid.DT as float32
	ScreenW32 float32
	ScreenH32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	scale := c.Grid.Scale
	if scale < 1 {
		scale = 1
	}
	c.Derived.GridW = c.Screen.Width / scale
	c.Derived.GridH = c.Screen.Height / scale
	c.Derived.DT32 = float32(c.Fluid.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
