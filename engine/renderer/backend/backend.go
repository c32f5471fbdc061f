package backend

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// CreateInstance selects and creates the Device for the requested graphics API.
// This is the only place where the API enum is switched on; everything above it works
// against gpu.Device.
//
// An unsupported API, a missing adapter or an adapter that reports a different backend
// than requested is fatal and panics.
//
// Parameters:
//   - api: the graphics API to use
//   - options: functional options to configure the device
//
// Returns:
//   - gpu.Device: the created device
func CreateInstance(api gpu.API, options ...BackendBuilderOption) gpu.Device {
	cfg := &backendConfig{
		width:       1280,
		height:      720,
		presentMode: PresentModeVSync,
	}
	for _, option := range options {
		option(cfg)
	}

	var dev gpu.Device
	switch api {
	case gpu.APIHeadless:
		dev = gpu.NewHeadlessDevice(append(cfg.headless, gpu.WithBackbufferSize(cfg.width, cfg.height))...)
	case gpu.APIDirectX12:
		dev = newWGPUDevice(api, wgpu.InstanceBackendDX12, wgpu.BackendTypeD3D12, cfg)
	case gpu.APIVulkan:
		dev = newWGPUDevice(api, wgpu.InstanceBackendVulkan, wgpu.BackendTypeVulkan, cfg)
	default:
		common.Fatalf("backend: unsupported graphics API %s", api)
	}

	common.Logger().Info("graphics device created", "api", api.String(), "width", cfg.width, "height", cfg.height)
	return dev
}
