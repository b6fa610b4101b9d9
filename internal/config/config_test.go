package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if !cfg.Deform.WeldDuplicateVertices {
		t.Error("expected welding to be enabled by default")
	}
	if cfg.Deform.RecalcTangents {
		t.Error("expected tangent recalculation to be opt-in")
	}
	if cfg.Deform.ColliderUpdateInterval != 5 {
		t.Errorf("expected collider interval 5, got %d", cfg.Deform.ColliderUpdateInterval)
	}

	if cfg.Remesh.SplitsPerStep != 200 {
		t.Errorf("expected 200 splits per step, got %d", cfg.Remesh.SplitsPerStep)
	}
	if cfg.Remesh.SmoothLambda != 0.2 {
		t.Errorf("expected smooth lambda 0.2, got %f", cfg.Remesh.SmoothLambda)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sculpt.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

mesh:
  primitive: "uvsphere"
  subdivisions: 2

brush:
  radius: 0.5
  strength: 0.02
  falloff: "keys"
  falloff_keys:
    - {u: 0, weight: 1}
    - {u: 1, weight: 0}

deform:
  weld_duplicate_vertices: false
  weld_epsilon: 0.001
  recalc_tangents: true
  collider_update_interval: 0

remesh:
  max_edge_length: 0.05
  splits_per_step: 10
  smooth_iterations: 3
  smooth_lambda: 0.5
  auto_run: false
  interval_seconds: 1.5

logging:
  level: "debug"
  log_file: "sculpt.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("vsync not in file, default should survive")
	}
	if cfg.Mesh.Primitive != "uvsphere" {
		t.Errorf("expected uvsphere, got %s", cfg.Mesh.Primitive)
	}
	if len(cfg.Brush.FalloffKeys) != 2 || cfg.Brush.FalloffKeys[1].U != 1 {
		t.Errorf("unexpected falloff keys %+v", cfg.Brush.FalloffKeys)
	}
	if cfg.Deform.WeldDuplicateVertices {
		t.Error("expected welding disabled")
	}
	if cfg.Deform.ColliderUpdateInterval != 0 {
		t.Errorf("expected collider interval 0, got %d", cfg.Deform.ColliderUpdateInterval)
	}
	if cfg.Remesh.SplitsPerStep != 10 {
		t.Errorf("expected 10 splits, got %d", cfg.Remesh.SplitsPerStep)
	}
	if cfg.Remesh.IntervalSeconds != 1.5 {
		t.Errorf("expected interval 1.5, got %f", cfg.Remesh.IntervalSeconds)
	}
	if cfg.Logging.LogFile != "sculpt.log" {
		t.Errorf("expected log file 'sculpt.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sculpt.toml")

	tomlContent := `
[remesh]
max_edge_length = 0.12
splits_per_step = 64
auto_run = false

[brush]
falloff = "linear"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load toml config: %v", err)
	}
	if cfg.Remesh.SplitsPerStep != 64 {
		t.Errorf("expected 64 splits, got %d", cfg.Remesh.SplitsPerStep)
	}
	if cfg.Remesh.AutoRun {
		t.Error("expected auto_run false")
	}
	if cfg.Brush.Falloff != "linear" {
		t.Errorf("expected linear falloff, got %s", cfg.Brush.Falloff)
	}
	if cfg.Remesh.SmoothIterations != 1 {
		t.Errorf("default smooth iterations should survive, got %d", cfg.Remesh.SmoothIterations)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
remesh:
  splits_per_step: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/sculpt.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative collider interval", func(c *Config) { c.Deform.ColliderUpdateInterval = -1 }},
		{"lambda above one", func(c *Config) { c.Remesh.SmoothLambda = 1.5 }},
		{"negative budget", func(c *Config) { c.Remesh.SplitsPerStep = -3 }},
		{"zero radius", func(c *Config) { c.Brush.Radius = 0 }},
		{"zero weld epsilon", func(c *Config) { c.Deform.WeldEpsilon = 0 }},
		{"negative weld epsilon", func(c *Config) { c.Deform.WeldEpsilon = -1e-5 }},
		{"zero max edge", func(c *Config) { c.Remesh.MaxEdgeLength = 0 }},
		{"negative max edge", func(c *Config) { c.Remesh.MaxEdgeLength = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cfg.Brush.FalloffKeys = []FalloffKey{{U: 0, Weight: 1}}

	clone, err := cfg.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	clone.Brush.FalloffKeys[0].Weight = 0.25
	clone.Remesh.SplitsPerStep = 1

	if cfg.Brush.FalloffKeys[0].Weight != 1 {
		t.Error("clone shares falloff keys with original")
	}
	if cfg.Remesh.SplitsPerStep != 200 {
		t.Error("clone mutation leaked into original")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "sculpt.toml")
	if err := os.WriteFile(configPath, []byte("[window]\nwidth = 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find sculpt.toml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "mesh flag",
			setup: func() { *flagMesh = "bust.obj" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesh.Path != "bust.obj" {
					t.Errorf("expected mesh path bust.obj, got %s", cfg.Mesh.Path)
				}
			},
			teardown: func() { *flagMesh = "" },
		},
		{
			name:  "no-weld flag",
			setup: func() { *flagNoWeld = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Deform.WeldDuplicateVertices {
					t.Error("expected welding disabled with no-weld flag")
				}
			},
			teardown: func() { *flagNoWeld = false },
		},
		{
			name:  "no-remesh flag",
			setup: func() { *flagNoRemesh = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Remesh.AutoRun {
					t.Error("expected auto remesh disabled")
				}
			},
			teardown: func() { *flagNoRemesh = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sculpt.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height from file
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Remesh.SplitsPerStep = 77
			cfg.Brush.Falloff = "constant"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo failed: %v", err)
			}

			loaded := Default()
			if err := loadFromFile(loaded, path); err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			if loaded.Remesh.SplitsPerStep != 77 || loaded.Brush.Falloff != "constant" {
				t.Errorf("round trip lost values: %+v", loaded.Remesh)
			}
		})
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sculpt.yaml")
	if err := os.WriteFile(path, []byte("remesh:\n  splits_per_step: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("remesh:\n  splits_per_step: 42\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	// A truncating write can surface as more than one event; wait for the final content.
	deadline := time.After(3 * time.Second)
	for got := false; !got; {
		select {
		case cfg := <-changes:
			got = cfg.Remesh.SplitsPerStep == 42
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned error: %v", err)
	}
}
