package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/timer"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// parallelThreshold is the |cos| above which up is treated as parallel to the look direction.
const parallelThreshold = 0.99

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	// worldUp is the up vector last requested through LookAt
	worldUp mgl32.Vec3

	// orthonormal basis derived from the last LookAt
	look  mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	orthographic bool
	orthoWidth   float32
	orthoHeight  float32

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4

	// dirty is set when the orientation changed and cleared when Update rebuilds the view.
	dirty bool

	controller CameraController
}

// Camera is a dual-mode camera: a perspective lens for the viewer or an orthographic lens for a
// directional light. Both modes share the same query surface, so an orthographic camera still
// reports the field of view and aspect it was created with.
//
// The projection is rebuilt eagerly by the lens setters. The view matrix is rebuilt lazily by
// Update and only if the orientation changed since the previous Update.
type Camera interface {
	// SetLens switches to a perspective projection with WebGPU depth range [0, 1].
	//
	// Parameters:
	//   - fovY: the full vertical field of view in radians
	//   - aspect: width / height
	//   - near: the near plane distance
	//   - far: the far plane distance
	SetLens(fovY, aspect, near, far float32)

	// SetOrthoLens switches to an orthographic projection centred on the view axis.
	//
	// Parameters:
	//   - width: the view volume width
	//   - height: the view volume height
	//   - near: the near plane distance, may be negative
	//   - far: the far plane distance
	SetOrthoLens(width, height, near, far float32)

	// LookAt orients the camera and marks the view dirty unless the arguments equal the current
	// orientation. A degenerate up vector (parallel to the look direction) is replaced by a
	// perpendicular axis.
	//
	// Parameters:
	//   - eye: the camera position
	//   - target: the point looked at
	//   - up: the approximate up direction
	LookAt(eye, target, up mgl32.Vec3)

	// Update advances the attached controller, if any, then recomputes the view matrix if the
	// orientation changed.
	//
	// Parameters:
	//   - t: the frame timer, may be nil when no controller is attached
	Update(t timer.Timer)

	// Dirty reports whether the orientation changed since the last Update.
	Dirty() bool

	View() mgl32.Mat4
	Projection() mgl32.Mat4
	ViewProjection() mgl32.Mat4

	Position() mgl32.Vec3
	Target() mgl32.Vec3
	Look() mgl32.Vec3
	Right() mgl32.Vec3
	Up() mgl32.Vec3

	// Fov returns the full vertical field of view in radians.
	Fov() float32
	Aspect() float32
	Near() float32
	Far() float32

	// Orthographic reports whether the orthographic lens is active.
	Orthographic() bool

	// OrthoSize returns the width and height of the orthographic view volume.
	OrthoSize() (width, height float32)

	// Controller returns the attached controller or nil.
	Controller() CameraController

	// SetController attaches a controller whose position and target drive the camera in Update.
	//
	// Parameters:
	//   - ctrl: the controller, nil to detach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera at (0,0,5) looking at the origin with a 45 degree
// field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 5},
		worldUp:  mgl32.Vec3{0, 1, 0},
		fov:      mgl32.DegToRad(45),
		aspect:   1,
		near:     0.1,
		far:      100,
	}
	for _, option := range options {
		option(c)
	}
	c.orient(c.position, c.target, c.worldUp)
	c.rebuildProjection()
	c.rebuildView()
	return c
}

// NewLightCamera creates the camera representing a directional light: orthographic, looking
// down -Y at the origin, with a 100x100 view volume. The coordinator resizes the lens.
//
// Parameters:
//   - options: functional options applied after the light defaults
//
// Returns:
//   - Camera: the light camera
func NewLightCamera(options ...CameraBuilderOption) Camera {
	defaults := []CameraBuilderOption{
		WithPosition(mgl32.Vec3{0, 1, 0}),
		WithTarget(mgl32.Vec3{}),
		WithOrthoLens(100, 100, -100, 100),
	}
	return NewCamera(append(defaults, options...)...)
}

// SafeUp returns up if it is usable with the given look direction, otherwise a world axis that
// is not parallel to look: +Z, or +X if look is itself along Z.
//
// Parameters:
//   - look: the normalized look direction
//   - up: the requested up vector
//
// Returns:
//   - mgl32.Vec3: a unit up vector not parallel to look
func SafeUp(look, up mgl32.Vec3) mgl32.Vec3 {
	up = common.NormalizeOr(up, mgl32.Vec3{0, 1, 0})
	if math32.Abs(look.Dot(up)) <= parallelThreshold {
		return up
	}
	fallback := mgl32.Vec3{0, 0, 1}
	if math32.Abs(look.Dot(fallback)) > parallelThreshold {
		fallback = mgl32.Vec3{1, 0, 0}
	}
	return fallback
}

// orient derives the basis from eye/target/up. Caller must hold the mutex or own c exclusively.
func (c *cameraImpl) orient(eye, target, up mgl32.Vec3) {
	c.position = eye
	c.target = target
	c.worldUp = up
	c.look = common.NormalizeOr(target.Sub(eye), mgl32.Vec3{0, 0, -1})
	c.right = c.look.Cross(SafeUp(c.look, up)).Normalize()
	c.up = c.right.Cross(c.look)
	c.dirty = true
}

func (c *cameraImpl) rebuildView() {
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.look), c.up)
	c.viewProjection = c.projection.Mul4(c.view)
	c.dirty = false
}

func (c *cameraImpl) rebuildProjection() {
	if c.orthographic {
		hw, hh := c.orthoWidth/2, c.orthoHeight/2
		c.projection = common.OrthoZO(-hw, hw, -hh, hh, c.near, c.far)
	} else {
		c.projection = common.PerspectiveZO(c.fov, c.aspect, c.near, c.far)
	}
	c.viewProjection = c.projection.Mul4(c.view)
}

func (c *cameraImpl) SetLens(fovY, aspect, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orthographic = false
	c.fov, c.aspect, c.near, c.far = fovY, aspect, near, far
	c.rebuildProjection()
}

func (c *cameraImpl) SetOrthoLens(width, height, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orthographic = true
	c.orthoWidth, c.orthoHeight = width, height
	c.near, c.far = near, far
	c.rebuildProjection()
}

func (c *cameraImpl) LookAt(eye, target, up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if eye == c.position && target == c.target && up == c.worldUp {
		return
	}
	c.orient(eye, target, up)
}

func (c *cameraImpl) Update(t timer.Timer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller != nil {
		var dt float32
		if t != nil {
			dt = t.Delta()
		}
		c.controller.Advance(dt)
		if pos, target := c.controller.Position(), c.controller.Target(); pos != c.position || target != c.target {
			c.orient(pos, target, c.worldUp)
		}
	}
	if c.dirty {
		c.rebuildView()
	}
}

func (c *cameraImpl) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Look() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.look
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Orthographic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orthographic
}

func (c *cameraImpl) OrthoSize() (width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orthoWidth, c.orthoHeight
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}
