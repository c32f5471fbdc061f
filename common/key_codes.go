package common

// Key codes delivered by the window's key callbacks. Printable keys use their ASCII value.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87 // W key (ASCII)
	KeyA     = 65 // A key (ASCII)
	KeyS     = 83 // S key (ASCII)
	KeyD     = 68 // D key (ASCII)
	KeyQ     = 81 // Q key (ASCII)
	KeyE     = 69 // E key (ASCII)
	KeyL     = 76 // L key (ASCII)
	KeySpace = 32 // Spacebar (ASCII)
)
