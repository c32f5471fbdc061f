package blur

import "github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"

// GaussianBlurBuilderOption is a functional option applied to a GaussianBlur in NewGaussianBlur.
type GaussianBlurBuilderOption func(*gaussianBlur)

// WithSigma sets the standard deviation of the kernel in texels. Defaults to DefaultSigma.
//
// Parameters:
//   - sigma: the standard deviation, must be positive
//
// Returns:
//   - GaussianBlurBuilderOption: a function that applies the sigma option
func WithSigma(sigma float32) GaussianBlurBuilderOption {
	return func(b *gaussianBlur) {
		b.sigma = sigma
	}
}

// WithLabel sets the prefix used for every resource the blur creates.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - GaussianBlurBuilderOption: a function that applies the label option
func WithLabel(label string) GaussianBlurBuilderOption {
	return func(b *gaussianBlur) {
		b.label = label
	}
}

// WithShaderPath replaces the embedded blur shader with another asset path.
//
// Parameters:
//   - path: the shader asset path
//
// Returns:
//   - GaussianBlurBuilderOption: a function that applies the shader path option
func WithShaderPath(path string) GaussianBlurBuilderOption {
	return func(b *gaussianBlur) {
		b.shaderPath = path
	}
}

// WithShaderOverrideDir makes shader loading look in dir before the embedded assets.
//
// Parameters:
//   - dir: the override directory
//
// Returns:
//   - GaussianBlurBuilderOption: a function that applies the override directory option
func WithShaderOverrideDir(dir string) GaussianBlurBuilderOption {
	return func(b *gaussianBlur) {
		b.overrideDir = dir
	}
}

// WithFormat sets the format of the textures being blurred. Defaults to RG32Float moments.
//
// Parameters:
//   - format: the colour format
//
// Returns:
//   - GaussianBlurBuilderOption: a function that applies the format option
func WithFormat(format gpu.TextureFormat) GaussianBlurBuilderOption {
	return func(b *gaussianBlur) {
		b.format = format
	}
}

// WithQuad shares an existing full-screen quad instead of allocating one. The blur does not
// release a shared quad.
//
// Parameters:
//   - q: the quad
//
// Returns:
//   - GaussianBlurBuilderOption: a function that applies the quad option
func WithQuad(q *Quad) GaussianBlurBuilderOption {
	return func(b *gaussianBlur) {
		b.quad = q
	}
}
