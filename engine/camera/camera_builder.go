package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option applied to a camera during construction via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the eye position.
//
// Parameters:
//   - position: the world-space eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(position mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithTarget sets the point the camera looks at.
//
// Parameters:
//   - target: the world-space target
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the approximate up direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.worldUp = up
	}
}

// WithFov sets the camera's full vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithOrthoLens starts the camera with an orthographic lens instead of the perspective default.
//
// Parameters:
//   - width, height: the view volume size
//   - near, far: the depth range
//
// Returns:
//   - CameraBuilderOption: functional option to set the orthographic lens
func WithOrthoLens(width, height, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orthographic = true
		c.orthoWidth, c.orthoHeight = width, height
		c.near, c.far = near, far
	}
}

// WithController attaches a controller. Its position and target override WithPosition and
// WithTarget from the first Update on.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
