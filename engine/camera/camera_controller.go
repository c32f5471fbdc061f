package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraController owns the position and target of a camera. The camera reads both in Update
// and re-orients itself when they changed.
type CameraController interface {
	// Position returns the world-space eye position.
	Position() mgl32.Vec3

	// Target returns the orbit pivot the camera looks at.
	Target() mgl32.Vec3

	// SetTarget moves the pivot and keeps the spherical offset.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target mgl32.Vec3)

	// Advance applies time-based motion such as the automatic orbit.
	//
	// Parameters:
	//   - dt: seconds since the last frame
	Advance(dt float32)

	// OrbitLeft rotates the eye left around the pivot by one orbit step.
	OrbitLeft()

	// OrbitRight rotates the eye right around the pivot by one orbit step.
	OrbitRight()

	// OrbitUp raises the eye by one orbit step, clamped to the maximum elevation.
	OrbitUp()

	// OrbitDown lowers the eye by one orbit step, clamped to the minimum elevation.
	OrbitDown()

	// Zoom moves the eye toward the pivot for positive delta, clamped to the radius limits.
	//
	// Parameters:
	//   - delta: zoom amount, scaled by the zoom speed
	Zoom(delta float32)

	Radius() float32
	Azimuth() float32
	Elevation() float32
}

// orbitController keeps the eye on a sphere around the target using radius, azimuth (around +Y,
// 0 on +Z) and elevation (from the horizontal plane).
type orbitController struct {
	mu *sync.Mutex

	target   mgl32.Vec3
	position mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius, maxRadius       float32
	minElevation, maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
	// autoOrbit is the azimuth change in radians per second applied by Advance.
	autoOrbit float32
}

var _ CameraController = &orbitController{}

// NewOrbitController creates an orbit controller around the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	oc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       30,
		elevation:    math32.Pi / 6,
		minRadius:    2,
		maxRadius:    500,
		minElevation: 0.05,
		maxElevation: math32.Pi/2 - 0.1,
		orbitSpeed:   0.03,
		zoomSpeed:    1,
	}
	for _, opt := range options {
		opt(oc)
	}
	oc.clamp()
	oc.updatePosition()
	return oc
}

// clamp keeps radius and elevation inside their limits. Caller must hold the mutex.
func (oc *orbitController) clamp() {
	oc.radius = mgl32.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = mgl32.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
}

// updatePosition recomputes the eye from the spherical coordinates. Caller must hold the mutex.
func (oc *orbitController) updatePosition() {
	sinE, cosE := math32.Sincos(oc.elevation)
	sinA, cosA := math32.Sincos(oc.azimuth)
	oc.position = oc.target.Add(mgl32.Vec3{
		oc.radius * cosE * sinA,
		oc.radius * sinE,
		oc.radius * cosE * cosA,
	})
}

func (oc *orbitController) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

func (oc *orbitController) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(target mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.updatePosition()
}

func (oc *orbitController) Advance(dt float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if oc.autoOrbit == 0 || dt <= 0 {
		return
	}
	oc.azimuth += oc.autoOrbit * dt
	oc.updatePosition()
}

func (oc *orbitController) rotate(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += dAzimuth
	oc.elevation += dElevation
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) OrbitLeft()  { oc.rotate(-oc.orbitSpeed, 0) }
func (oc *orbitController) OrbitRight() { oc.rotate(oc.orbitSpeed, 0) }
func (oc *orbitController) OrbitUp()    { oc.rotate(0, oc.orbitSpeed) }
func (oc *orbitController) OrbitDown()  { oc.rotate(0, -oc.orbitSpeed) }

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius -= delta * oc.zoomSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}
