package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/shadow"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
api: dx12
frames_in_flight: 2
log_level: debug
window:
  width: 800
  height: 600
  title: yaml demo
shadow:
  cascades:
    near: 10
    medium: 40
    far: 90
    max_resolution: 1024
    use_soft_shadow: false
  blur_sigma: 3
  view_camera_frustum: true
light:
  direction: [0, -1, 0]
scene:
  model: assets/fox.glb
`

const tomlConfig = `
api = "vulkan"
frames_in_flight = 3

[window]
width = 1024
height = 768

[shadow]
blur_sigma = 1.5
view_camera_frustum = false

[shadow.cascades]
near = 5
medium = 15
far = 45
max_resolution = 512
use_soft_shadow = true

[light]
direction = [1.0, -1.0, 0.0]
ambient = 0.3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, gpu.APIVulkan, cfg.API)
	assert.Equal(t, shadow.DefaultCascadeDesc(), cfg.Shadow.Cascades)
	assert.True(t, cfg.Shadow.ViewCameraFrustum, "cascades follow the viewer by default")
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "demo.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, gpu.APIDirectX12, cfg.API)
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, Window{Width: 800, Height: 600, Title: "yaml demo", VSync: true}, cfg.Window)
	assert.Equal(t, shadow.CascadeDesc{Near: 10, Medium: 40, Far: 90, MaxResolution: 1024}, cfg.Shadow.Cascades)
	assert.Equal(t, float32(3), cfg.Shadow.BlurSigma)
	assert.True(t, cfg.Shadow.ViewCameraFrustum)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, cfg.LightDirection())
	assert.Equal(t, float32(1), cfg.Light.Intensity, "unset keys keep defaults")
	assert.Equal(t, "assets/fox.glb", cfg.Scene.Model)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_TOML(t *testing.T) {
	cfg, err := Load(writeFile(t, "demo.toml", tomlConfig))
	require.NoError(t, err)

	assert.Equal(t, gpu.APIVulkan, cfg.API)
	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, "oxy-csm", cfg.Window.Title)
	assert.Equal(t, shadow.CascadeDesc{Near: 5, Medium: 15, Far: 45, MaxResolution: 512, UseSoftShadow: true}, cfg.Shadow.Cascades)
	assert.Equal(t, float32(1.5), cfg.Shadow.BlurSigma)
	assert.False(t, cfg.Shadow.ViewCameraFrustum)
	assert.Equal(t, mgl32.Vec3{1, -1, 0}, cfg.LightDirection())
	assert.Equal(t, float32(0.3), cfg.Light.Ambient)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	for _, name := range []string{"empty.yml", "empty.toml"} {
		cfg, err := Load(writeFile(t, name, ""))
		require.NoError(t, err, name)
		assert.Equal(t, Default(), cfg, name)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unsupported extension", "demo.json", "{}", `unsupported format ".json"`},
		{"unknown yaml key", "demo.yaml", "colour: red\n", "field colour not found"},
		{"unknown toml key", "demo.toml", "colour = \"red\"\n", "strict mode"},
		{"bad api", "demo.yaml", "api: metal\n", `unknown graphics API "metal"`},
		{"bad cascades", "demo.yaml", "shadow:\n  cascades:\n    near: 50\n    medium: 20\n    far: 100\n    max_resolution: 64\n", "medium 20 must be greater than near 50"},
		{"bad frames", "demo.toml", "frames_in_flight = 0\n", "frames_in_flight 0 must be at least 1"},
		{"bad level", "demo.yaml", "log_level: loud\n", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"zero window", func(c *Config) { c.Window.Width = 0 }, "window size 0x720 must be positive"},
		{"zero sigma", func(c *Config) { c.Shadow.BlurSigma = 0 }, "blur_sigma 0 must be positive"},
		{"nan sigma", func(c *Config) { c.Shadow.BlurSigma = math32.NaN() }, "blur_sigma NaN must be positive"},
		{"zero light", func(c *Config) { c.Light.Direction = [3]float32{} }, "light direction must be non-zero"},
		{"infinite light", func(c *Config) { c.Light.Direction[1] = math32.Inf(-1) }, "must be finite"},
		{"ambient above one", func(c *Config) { c.Light.Ambient = 2 }, "ambient 2 within [0, 1]"},
		{"negative grid", func(c *Config) { c.Scene.Grid = -1 }, "scene grid -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}

	cfg := Default()
	cfg.Shadow.Cascades.MaxResolution = 0
	assert.ErrorIs(t, cfg.Validate(), shadow.ErrInvalidCascadeDesc)
}
