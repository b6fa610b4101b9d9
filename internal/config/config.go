// Package config handles sculpt tool configuration loading and management.
package config

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Config holds all tool settings.
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Mesh    MeshConfig    `yaml:"mesh" toml:"mesh"`
	Brush   BrushConfig   `yaml:"brush" toml:"brush"`
	Deform  DeformConfig  `yaml:"deform" toml:"deform"`
	Remesh  RemeshConfig  `yaml:"remesh" toml:"remesh"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WindowConfig holds viewer display settings.
type WindowConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`
}

// MeshConfig selects the mesh to sculpt. Path wins over Primitive when set.
type MeshConfig struct {
	Path         string  `yaml:"path" toml:"path"`
	Primitive    string  `yaml:"primitive" toml:"primitive"` // icosphere, uvsphere, grid
	Subdivisions int     `yaml:"subdivisions" toml:"subdivisions"`
	Scale        float32 `yaml:"scale" toml:"scale"`
}

// FalloffKey is one control point of a keyframed falloff curve.
type FalloffKey struct {
	U      float32 `yaml:"u" toml:"u"`
	Weight float32 `yaml:"weight" toml:"weight"`
}

// BrushConfig holds the stamp parameters used by interactive tools.
type BrushConfig struct {
	Radius      float32      `yaml:"radius" toml:"radius"`
	Strength    float32      `yaml:"strength" toml:"strength"`
	Falloff     string       `yaml:"falloff" toml:"falloff"` // linear, smooth, constant, keys
	FalloffKeys []FalloffKey `yaml:"falloff_keys" toml:"falloff_keys"`
}

// DeformConfig holds brush deformation engine settings.
type DeformConfig struct {
	WeldDuplicateVertices  bool    `yaml:"weld_duplicate_vertices" toml:"weld_duplicate_vertices"`
	WeldEpsilon            float32 `yaml:"weld_epsilon" toml:"weld_epsilon"`
	RecalcNormals          bool    `yaml:"recalc_normals" toml:"recalc_normals"`
	RecalcTangents         bool    `yaml:"recalc_tangents" toml:"recalc_tangents"`
	RecalcBounds           bool    `yaml:"recalc_bounds" toml:"recalc_bounds"`
	ColliderUpdateInterval int     `yaml:"collider_update_interval" toml:"collider_update_interval"` // 0 disables auto refresh
}

// RemeshConfig holds adaptive remesher settings.
type RemeshConfig struct {
	MaxEdgeLength    float32 `yaml:"max_edge_length" toml:"max_edge_length"`
	SplitsPerStep    int     `yaml:"splits_per_step" toml:"splits_per_step"`
	MaxPasses        int     `yaml:"max_passes" toml:"max_passes"`
	SmoothIterations int     `yaml:"smooth_iterations" toml:"smooth_iterations"`
	SmoothLambda     float32 `yaml:"smooth_lambda" toml:"smooth_lambda"`
	AutoRun          bool    `yaml:"auto_run" toml:"auto_run"`
	IntervalSeconds  float32 `yaml:"interval_seconds" toml:"interval_seconds"`
	RebuildCollider  bool    `yaml:"rebuild_collider" toml:"rebuild_collider"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Mesh: MeshConfig{
			Primitive:    "icosphere",
			Subdivisions: 3,
			Scale:        1,
		},
		Brush: BrushConfig{
			Radius:   0.25,
			Strength: 0.01,
			Falloff:  "smooth",
		},
		Deform: DeformConfig{
			WeldDuplicateVertices:  true,
			WeldEpsilon:            1e-5,
			RecalcNormals:          true,
			RecalcTangents:         false,
			RecalcBounds:           true,
			ColliderUpdateInterval: 5,
		},
		Remesh: RemeshConfig{
			MaxEdgeLength:    0.08,
			SplitsPerStep:    200,
			MaxPasses:        4,
			SmoothIterations: 1,
			SmoothLambda:     0.2,
			AutoRun:          true,
			IntervalSeconds:  0.5,
			RebuildCollider:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() (*Config, error) {
	out := &Config{}
	if err := copier.CopyWithOption(out, c, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("cloning config: %w", err)
	}
	return out, nil
}

// Validate reports settings the core cannot run with.
func (c *Config) Validate() error {
	if c.Deform.ColliderUpdateInterval < 0 {
		return fmt.Errorf("deform.collider_update_interval must be >= 0, got %d", c.Deform.ColliderUpdateInterval)
	}
	if !(c.Deform.WeldEpsilon > 0) {
		return fmt.Errorf("deform.weld_epsilon must be > 0, got %g", c.Deform.WeldEpsilon)
	}
	if !(c.Remesh.MaxEdgeLength > 0) {
		return fmt.Errorf("remesh.max_edge_length must be > 0, got %g", c.Remesh.MaxEdgeLength)
	}
	if c.Remesh.SmoothLambda < 0 || c.Remesh.SmoothLambda > 1 {
		return fmt.Errorf("remesh.smooth_lambda must be in [0,1], got %g", c.Remesh.SmoothLambda)
	}
	if c.Remesh.SplitsPerStep < 0 || c.Remesh.SmoothIterations < 0 {
		return fmt.Errorf("remesh budgets must be >= 0")
	}
	if c.Brush.Radius <= 0 {
		return fmt.Errorf("brush.radius must be > 0, got %g", c.Brush.Radius)
	}
	return nil
}
