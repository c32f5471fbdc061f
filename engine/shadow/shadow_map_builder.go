package shadow

// ShadowMapBuilderOption is a functional option applied to a ShadowMap in NewShadowMap.
type ShadowMapBuilderOption func(*shadowMap)

// WithLabel sets the prefix of every resource the shadow map creates.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the label option
func WithLabel(label string) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		s.label = label
	}
}

// WithSoftShadow toggles the Gaussian blur after the depth pass. Defaults to true. Cascade
// coordinators always leave it on.
//
// Parameters:
//   - enabled: whether Draw blurs the moments
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the soft shadow option
func WithSoftShadow(enabled bool) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		s.softShadow = enabled
	}
}

// WithMapBlurSigma sets the blur kernel standard deviation in texels.
//
// Parameters:
//   - sigma: the standard deviation, must be positive
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the sigma option
func WithMapBlurSigma(sigma float32) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		s.blurSigma = sigma
	}
}

// WithCulling skips drawables whose bounds lie outside the light frustum.
//
// Parameters:
//   - enabled: whether Draw culls
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the culling option
func WithCulling(enabled bool) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		s.cull = enabled
	}
}

// WithShaderPaths replaces the depth-moments and blur shader asset paths. An empty path keeps
// the embedded default.
//
// Parameters:
//   - depthMoments: the depth-moments shader path
//   - gaussianBlur: the blur shader path
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the shader path option
func WithShaderPaths(depthMoments, gaussianBlur string) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		if depthMoments != "" {
			s.shaderPath = depthMoments
		}
		if gaussianBlur != "" {
			s.blurShaderPath = gaussianBlur
		}
	}
}

// WithMapShaderOverrideDir makes shader loading look in dir before the embedded assets.
//
// Parameters:
//   - dir: the override directory
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the override directory option
func WithMapShaderOverrideDir(dir string) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		s.overrideDir = dir
	}
}

// WithMapDepthBias sets the rasterizer depth bias of the depth-moments pipeline.
//
// Parameters:
//   - bias: the constant bias
//   - slopeScale: the slope-scaled bias
//
// Returns:
//   - ShadowMapBuilderOption: a function that applies the depth bias option
func WithMapDepthBias(bias int32, slopeScale float32) ShadowMapBuilderOption {
	return func(s *shadowMap) {
		s.depthBias = bias
		s.depthSlopeBias = slopeScale
	}
}
