package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*orbitController)

// WithRadius sets the initial orbit radius (distance from the pivot).
//
// Parameters:
//   - radius: distance from the pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithRadiusLimits bounds the orbit radius used by Zoom.
//
// Parameters:
//   - minRadius: the closest zoom distance
//   - maxRadius: the farthest zoom distance
//
// Returns:
//   - CameraControllerOption: functional option to set the radius limits
func WithRadiusLimits(minRadius, maxRadius float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.minRadius, oc.maxRadius = minRadius, maxRadius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.elevation = elevation
	}
}

// WithPivot sets the point the controller orbits and looks at.
//
// Parameters:
//   - pivot: the world-space pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the pivot
func WithPivot(pivot mgl32.Vec3) CameraControllerOption {
	return func(oc *orbitController) {
		oc.target = pivot
	}
}

// WithOrbitSpeed sets the angle in radians of one OrbitLeft/Right/Up/Down step.
//
// Parameters:
//   - speed: radians per step
//
// Returns:
//   - CameraControllerOption: functional option to set the orbit speed
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the multiplier applied to Zoom deltas.
//
// Parameters:
//   - speed: the zoom multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.zoomSpeed = speed
	}
}

// WithAutoOrbit makes Advance rotate the eye around the pivot continuously.
//
// Parameters:
//   - radiansPerSecond: azimuth change per second, 0 disables
//
// Returns:
//   - CameraControllerOption: functional option to set the automatic orbit
func WithAutoOrbit(radiansPerSecond float32) CameraControllerOption {
	return func(oc *orbitController) {
		oc.autoOrbit = radiansPerSecond
	}
}
