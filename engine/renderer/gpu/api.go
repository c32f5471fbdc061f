package gpu

import (
	"fmt"
	"strings"
)

// API identifies the graphics API a Device is backed by.
// Selection happens once at startup through backend.CreateInstance.
type API int

const (
	// APIHeadless records commands in memory without touching a GPU.
	// Used by tests and offline tooling.
	APIHeadless API = iota

	// APIDirectX12 selects a Direct3D 12 device.
	APIDirectX12

	// APIVulkan selects a Vulkan device.
	APIVulkan
)

func (a API) String() string {
	switch a {
	case APIHeadless:
		return "headless"
	case APIDirectX12:
		return "dx12"
	case APIVulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("API(%d)", int(a))
	}
}

// ParseAPI converts a config string into an API value.
// Accepted spellings are case-insensitive: "headless", "dx12"/"directx12"/"d3d12", "vulkan"/"vk".
//
// Parameters:
//   - s: the API name
//
// Returns:
//   - API: the parsed API
//   - error: non-nil if the name is not recognized
func ParseAPI(s string) (API, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "headless", "null":
		return APIHeadless, nil
	case "dx12", "directx12", "d3d12":
		return APIDirectX12, nil
	case "vulkan", "vk":
		return APIVulkan, nil
	}
	return 0, fmt.Errorf("gpu: unknown graphics API %q", s)
}

// MarshalText implements encoding.TextMarshaler so API values round-trip through config files.
func (a API) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *API) UnmarshalText(text []byte) error {
	v, err := ParseAPI(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
