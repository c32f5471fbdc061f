// Package config loads the demo's settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/blur"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/shadow"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full demo configuration. Fields missing from a file keep their Default value.
type Config struct {
	API            gpu.API `yaml:"api" toml:"api"`
	FramesInFlight int     `yaml:"frames_in_flight" toml:"frames_in_flight"`
	LogLevel       string  `yaml:"log_level" toml:"log_level"`
	Profiling      bool    `yaml:"profiling" toml:"profiling"`

	Window Window `yaml:"window" toml:"window"`
	Shadow Shadow `yaml:"shadow" toml:"shadow"`
	Light  Light  `yaml:"light" toml:"light"`
	Scene  Scene  `yaml:"scene" toml:"scene"`
}

// Window configures the demo window.
type Window struct {
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	Title  string `yaml:"title" toml:"title"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`
}

// Shadow configures the cascade coordinator.
type Shadow struct {
	Cascades          shadow.CascadeDesc `yaml:"cascades" toml:"cascades"`
	BlurSigma         float32            `yaml:"blur_sigma" toml:"blur_sigma"`
	ViewCameraFrustum bool               `yaml:"view_camera_frustum" toml:"view_camera_frustum"`
	ShaderOverrideDir string             `yaml:"shader_override_dir" toml:"shader_override_dir"`
}

// Light configures the directional light.
type Light struct {
	Direction [3]float32 `yaml:"direction" toml:"direction"`
	Intensity float32    `yaml:"intensity" toml:"intensity"`
	Ambient   float32    `yaml:"ambient" toml:"ambient"`
	// OrbitSpeed rotates the light around +Y, in radians per second.
	OrbitSpeed float32 `yaml:"orbit_speed" toml:"orbit_speed"`
}

// Scene configures what the demo draws.
type Scene struct {
	// Model is an optional glTF file placed on the ground plane.
	Model   string `yaml:"model" toml:"model"`
	Grid    int    `yaml:"grid" toml:"grid"`
	Workers int    `yaml:"workers" toml:"workers"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		API:            gpu.APIVulkan,
		FramesInFlight: renderer.DefaultFrameCount,
		LogLevel:       "info",
		Window: Window{
			Width:  1280,
			Height: 720,
			Title:  "oxy-csm",
			VSync:  true,
		},
		// lit.wgsl picks a receiver's cascade by its viewer depth, so the slices follow the
		// viewer frustum unless a config turns it off.
		Shadow: Shadow{
			Cascades:          shadow.DefaultCascadeDesc(),
			BlurSigma:         blur.DefaultSigma,
			ViewCameraFrustum: true,
		},
		Light: Light{
			Direction:  light.DefaultDirection,
			Intensity:  1,
			Ambient:    0.15,
			OrbitSpeed: 0.2,
		},
		Scene: Scene{Grid: 5},
	}
}

// Load reads path over Default and validates the result. The format follows the extension:
// .yaml/.yml or .toml.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - Config: the loaded configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	cfg := Default()
	dec, err := DecoderFor(path)
	if err != nil {
		return cfg, err
	}
	if err := Open(&cfg, path, dec); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalid or shadow.ErrInvalidCascadeDesc
func (c Config) Validate() error {
	if c.FramesInFlight < 1 {
		return fmt.Errorf("%w: frames_in_flight %d must be at least 1", ErrInvalid, c.FramesInFlight)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if err := c.Shadow.Cascades.Validate(); err != nil {
		return err
	}
	if !(c.Shadow.BlurSigma > 0) {
		return fmt.Errorf("%w: blur_sigma %g must be positive", ErrInvalid, c.Shadow.BlurSigma)
	}
	dir := mgl32.Vec3(c.Light.Direction)
	for _, v := range dir {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("%w: light direction %v must be finite", ErrInvalid, c.Light.Direction)
		}
	}
	if dir.Len() == 0 {
		return fmt.Errorf("%w: light direction must be non-zero", ErrInvalid)
	}
	if c.Light.Intensity < 0 || c.Light.Ambient < 0 || c.Light.Ambient > 1 {
		return fmt.Errorf("%w: light intensity %g must be non-negative and ambient %g within [0, 1]",
			ErrInvalid, c.Light.Intensity, c.Light.Ambient)
	}
	if c.Scene.Grid < 0 || c.Scene.Workers < 0 {
		return fmt.Errorf("%w: scene grid %d and workers %d must be non-negative", ErrInvalid, c.Scene.Grid, c.Scene.Workers)
	}
	return nil
}

// Level parses LogLevel.
//
// Returns:
//   - slog.Level: the level
//   - error: non-nil for an unknown level name
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// LightDirection returns the light direction as a vector.
func (c Config) LightDirection() mgl32.Vec3 {
	return mgl32.Vec3(c.Light.Direction)
}
