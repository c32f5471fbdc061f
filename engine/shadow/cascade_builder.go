package shadow

// CoordinatorBuilderOption is a functional option applied in NewCascadeShadowCoordinator.
type CoordinatorBuilderOption func(*cascadeShadowCoordinator)

// WithViewCamera cuts the cascade slices from the viewer's frustum instead of the light
// camera's.
//
// Parameters:
//   - cam: the viewer camera, e.g. a camera.Camera
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the view camera option
func WithViewCamera(cam FrustumSource) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.viewCamera = cam
	}
}

// WithLightLens sets the orthographic volume of the light camera. Defaults to a 2*Far square
// spanning [-Far, Far] in depth.
//
// Parameters:
//   - width: the volume width
//   - height: the volume height
//   - near: the near plane, may be negative
//   - far: the far plane
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the lens option
func WithLightLens(width, height, near, far float32) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.lens = &lightLens{width: width, height: height, near: near, far: far}
	}
}

// WithBlurSigma sets the blur kernel standard deviation of every cascade.
//
// Parameters:
//   - sigma: the standard deviation in texels, must be positive
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the sigma option
func WithBlurSigma(sigma float32) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.blurSigma = sigma
	}
}

// WithShadowShader replaces the depth-moments shader asset path.
//
// Parameters:
//   - path: the shader path
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the shader option
func WithShadowShader(path string) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.shadowShader = path
	}
}

// WithBlurShader replaces the Gaussian blur shader asset path.
//
// Parameters:
//   - path: the shader path
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the shader option
func WithBlurShader(path string) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.blurShader = path
	}
}

// WithShaderOverrideDir makes every cascade look for shaders in dir before the embedded assets.
//
// Parameters:
//   - dir: the override directory
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the override directory option
func WithShaderOverrideDir(dir string) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.overrideDir = dir
	}
}

// WithCascadeCulling skips drawables outside each cascade's light frustum.
//
// Parameters:
//   - enabled: whether cascades cull
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the culling option
func WithCascadeCulling(enabled bool) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.cull = enabled
	}
}

// WithDepthBias sets the rasterizer depth bias of every cascade.
//
// Parameters:
//   - bias: the constant bias
//   - slopeScale: the slope-scaled bias
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the depth bias option
func WithDepthBias(bias int32, slopeScale float32) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.depthBias = bias
		c.depthSlopeBias = slopeScale
	}
}

// WithCoordinatorLabel sets the prefix of every resource the coordinator creates.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - CoordinatorBuilderOption: a function that applies the label option
func WithCoordinatorLabel(label string) CoordinatorBuilderOption {
	return func(c *cascadeShadowCoordinator) {
		c.label = label
	}
}
