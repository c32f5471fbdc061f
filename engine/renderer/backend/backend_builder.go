package backend

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// backendConfig collects the options applied by CreateInstance.
type backendConfig struct {
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	width, height        uint32
	presentMode          PresentMode
	forceFallbackAdapter bool
	headless             []gpu.HeadlessOption
}

// BackendBuilderOption is a functional option applied to CreateInstance.
type BackendBuilderOption func(*backendConfig)

// WithSurface sets the window surface the device presents to. Without a surface the
// wgpu devices render the default pass into an offscreen texture.
//
// Parameters:
//   - desc: the platform surface descriptor, typically Window.SurfaceDescriptor()
//
// Returns:
//   - BackendBuilderOption: a function that applies the surface option
func WithSurface(desc *wgpu.SurfaceDescriptor) BackendBuilderOption {
	return func(c *backendConfig) {
		c.surfaceDescriptor = desc
	}
}

// WithSurfaceSize sets the backbuffer size in pixels.
//
// Parameters:
//   - width, height: the backbuffer size
//
// Returns:
//   - BackendBuilderOption: a function that applies the size option
func WithSurfaceSize(width, height uint32) BackendBuilderOption {
	return func(c *backendConfig) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(c *backendConfig) {
		c.presentMode = mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - BackendBuilderOption: a function that applies the fallback adapter option
func WithForceSoftwareRenderer(force bool) BackendBuilderOption {
	return func(c *backendConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithHeadlessOptions forwards options to gpu.NewHeadlessDevice when the headless API is selected.
//
// Parameters:
//   - options: headless device options
//
// Returns:
//   - BackendBuilderOption: a function that applies the headless options
func WithHeadlessOptions(options ...gpu.HeadlessOption) BackendBuilderOption {
	return func(c *backendConfig) {
		c.headless = append(c.headless, options...)
	}
}
