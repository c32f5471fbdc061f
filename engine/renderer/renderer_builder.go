package renderer

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithFrameCount sets N, the number of frames in flight and the size of every frame ring.
// Values below 1 are fatal at construction.
//
// Parameters:
//   - n: the frame count
//
// Returns:
//   - RendererBuilderOption: a function that applies the frame count option to a renderer
func WithFrameCount(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.frameCount = n
	}
}

// WithClearColor sets the colour the default render pass clears the backbuffer to.
//
// Parameters:
//   - c: the clear colour
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(c gpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
// The pipeline is not compiled; use RegisterPipelines for that.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the Pipeline to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}
