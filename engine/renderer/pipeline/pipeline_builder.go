package pipeline

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/shader"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithShader sets the shader this pipeline compiles its vertex and fragment stages from.
//
// Parameters:
//   - s: the shader to use for this pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the shader for this pipeline
func WithShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.shader = s
	}
}

// WithVertexBuffers sets the vertex buffer layouts, one per vertex buffer slot.
//
// Parameters:
//   - layouts: the vertex buffer layouts in slot order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex buffer layouts for this pipeline
func WithVertexBuffers(layouts ...gpu.VertexBufferLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexBuffers = layouts
	}
}

// WithBindGroupLayouts sets the bind group layouts in group index order.
//
// Parameters:
//   - layouts: the bind group layouts, layouts[i] is bound at group i
//
// Returns:
//   - PipelineBuilderOption: a function that sets the bind group layouts for this pipeline
func WithBindGroupLayouts(layouts ...gpu.BindGroupLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.bindGroupLayouts = layouts
	}
}

// WithColorFormats sets the colour attachment formats. A pipeline without colour formats has no
// fragment stage.
//
// Parameters:
//   - formats: the colour target formats in attachment order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the colour formats for this pipeline
func WithColorFormats(formats ...gpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorFormats = formats
	}
}

// WithDepthFormat sets the depth attachment format. TextureFormatUndefined disables the depth stage.
//
// Parameters:
//   - format: the depth target format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth format for this pipeline
func WithDepthFormat(format gpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth test enabled state for this pipeline
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writing should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write enabled state for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthCompare sets the depth compare function used when depth testing is enabled.
//
// Parameters:
//   - compare: the compare function
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth compare function for this pipeline
func WithDepthCompare(compare gpu.CompareFunction) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthCompare = compare
	}
}

// WithDepthBias sets the depth bias parameters for this pipeline.
//
// Parameters:
//   - bias: the constant depth bias to apply
//   - slopeScale: the slope scale depth bias to apply
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias parameters for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled sets whether source-alpha blending is enabled for this pipeline.
//
// Parameters:
//   - enabled: a boolean indicating whether blending should be enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend enabled state for this pipeline
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use for this pipeline (gpu.CullModeNone, gpu.CullModeFront, gpu.CullModeBack)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode gpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face to use for this pipeline (gpu.FrontFaceCCW, gpu.FrontFaceCW)
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face for this pipeline
func WithFrontFace(frontFace gpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}
