// Package config provides configuration loading and access for the solver.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the solver parameters. The defaults reproduce the
// reference dam-break configuration (64000 particles in a 3x2x1 box).
type SimulationConfig struct {
	ParticleCount   int     `yaml:"particle_count"`
	SmoothingRadius float64 `yaml:"smoothing_radius"`
	ParticleMass    float64 `yaml:"particle_mass"`
	RestDensity     float64 `yaml:"rest_density"`
	GasConstant     float64 `yaml:"gas_constant"`
	Viscosity       float64 `yaml:"viscosity"`
	Damping         float64 `yaml:"damping"` // Negative inverts the axis velocity on wall contact

	Gravity [3]float64 `yaml:"gravity"`
	Box     [3]float64 `yaml:"box"` // Bounding box extent per axis

	DT         float64 `yaml:"dt"`           // Fixed step size for headless runs
	MaxFrameDT float64 `yaml:"max_frame_dt"` // Frame-time cap for interactive runs

	Integrator            string `yaml:"integrator"` // "leapfrog" or "euler"
	ClampNegativePressure bool   `yaml:"clamp_negative_pressure"`
	GhostFloor            bool   `yaml:"ghost_floor"` // Seed a static boundary layer on the floor
}

// ViewerConfig holds interactive display parameters.
type ViewerConfig struct {
	ParticleDisplaySize float64 `yaml:"particle_display_size"`
	OrbitDistance       float64 `yaml:"orbit_distance"`
	StartPaused         bool    `yaml:"start_paused"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowSteps int `yaml:"stats_window_steps"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellCount  [3]int // Grid cells per axis: ceil(box / smoothing_radius)
	TotalCells int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
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

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.ParticleCount <= 0 {
		return fmt.Errorf("config: particle_count must be positive, got %d", c.Simulation.ParticleCount)
	}
	if c.Simulation.SmoothingRadius <= 0 {
		return fmt.Errorf("config: smoothing_radius must be positive, got %g", c.Simulation.SmoothingRadius)
	}
	switch c.Simulation.Integrator {
	case "leapfrog", "euler":
	default:
		return fmt.Errorf("config: unknown integrator %q", c.Simulation.Integrator)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	for i, extent := range c.Simulation.Box {
		c.Derived.CellCount[i] = int(math.Ceil(extent / c.Simulation.SmoothingRadius))
	}
	c.Derived.TotalCells = c.Derived.CellCount[0] * c.Derived.CellCount[1] * c.Derived.CellCount[2]
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
