// Package config provides configuration loading for the light engine and demo.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/raylight/internal/render/lighting"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Lighting  LightingConfig  `yaml:"lighting"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Demo      DemoConfig      `yaml:"demo"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// LightingConfig holds the light manager's initial state.
type LightingConfig struct {
	LightMapScale          int        `yaml:"light_map_scale"`
	MaxTextureSize         int        `yaml:"max_texture_size"`
	Ambient                [4]float64 `yaml:"ambient"` // RGBA in [0, 1]
	Shadows                bool       `yaml:"shadows"`
	Blur                   bool       `yaml:"blur"`
	BlurNum                int        `yaml:"blur_num"`
	SoftShadows            bool       `yaml:"soft_shadows"`
	Pseudo3D               bool       `yaml:"pseudo3d"`
	InterpolateShadowColor bool       `yaml:"interpolate_shadow_color"`
	Culling                bool       `yaml:"culling"`
	Gamma                  bool       `yaml:"gamma"`
	Diffuse                bool       `yaml:"diffuse"`
}

// Options converts the lighting section into light manager options.
func (l LightingConfig) Options() lighting.Options {
	return lighting.Options{
		LightMapScale: l.LightMapScale,
		Ambient: lighting.Color{
			R: float32(l.Ambient[0]),
			G: float32(l.Ambient[1]),
			B: float32(l.Ambient[2]),
			A: float32(l.Ambient[3]),
		},
		Shadows:                l.Shadows,
		Blur:                   l.Blur,
		BlurNum:                l.BlurNum,
		SoftShadows:            l.SoftShadows,
		Pseudo3D:               l.Pseudo3D,
		InterpolateShadowColor: l.InterpolateShadowColor,
		Culling:                l.Culling,
		Gamma:                  l.Gamma,
		Diffuse:                l.Diffuse,
	}
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// TelemetryConfig holds frame statistics output settings.
type TelemetryConfig struct {
	StatsPath string `yaml:"stats_path"` // CSV destination; empty disables output
	Interval  int    `yaml:"interval"`   // Frames between rows
}

// DemoConfig describes the demo scene.
type DemoConfig struct {
	PixelsPerUnit float64    `yaml:"pixels_per_unit"`
	TileSize      float64    `yaml:"tile_size"`
	WallHeight    float64    `yaml:"wall_height"`
	NormalMap     string     `yaml:"normal_map"`
	Rays          RaysConfig `yaml:"rays"`
	Map           []string   `yaml:"map"`
}

// RaysConfig holds the ray count of each demo light.
type RaysConfig struct {
	Point       int `yaml:"point"`
	Cone        int `yaml:"cone"`
	Directional int `yaml:"directional"`
	Chain       int `yaml:"chain"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LightMapWidth  int     // Screen.Width / LightMapScale, before any texture clamp
	LightMapHeight int     // Screen.Height / LightMapScale, before any texture clamp
	WorldWidth     float64 // Screen.Width in world units
	WorldHeight    float64 // Screen.Height in world units
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	}
	if c.Lighting.LightMapScale < 1 {
		return fmt.Errorf("lighting.light_map_scale %d must be at least 1", c.Lighting.LightMapScale)
	}
	if c.Lighting.BlurNum < 0 {
		return fmt.Errorf("lighting.blur_num %d must not be negative", c.Lighting.BlurNum)
	}
	if c.Demo.PixelsPerUnit <= 0 {
		return fmt.Errorf("demo.pixels_per_unit %g must be positive", c.Demo.PixelsPerUnit)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.LightMapWidth = max(1, c.Screen.Width/c.Lighting.LightMapScale)
	c.Derived.LightMapHeight = max(1, c.Screen.Height/c.Lighting.LightMapScale)
	c.Derived.WorldWidth = float64(c.Screen.Width) / c.Demo.PixelsPerUnit
	c.Derived.WorldHeight = float64(c.Screen.Height) / c.Demo.PixelsPerUnit
}

// WriteYAML saves the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
