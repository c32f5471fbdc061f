package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/shader"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the creation state of a render pipeline and, once initialised, the device object.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// shader provides the WGSL module and the vertex/fragment entry points
	shader shader.Shader

	// renderPipeline is the compiled pipeline, nil until Init is called
	renderPipeline gpu.RenderPipeline
	module         gpu.ShaderModule

	vertexBuffers    []gpu.VertexBufferLayout
	bindGroupLayouts []gpu.BindGroupLayout
	colorFormats     []gpu.TextureFormat
	depthFormat      gpu.TextureFormat

	// The following properties are toggled with the builder options.

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthCompare        gpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            gpu.CullMode
	frontFace           gpu.FrontFace
}

// Pipeline defines the interface for a GPU render pipeline. It holds all configuration state
// required for pipeline creation including depth, blend, cull and attachment formats, and is
// compiled against a device with Init.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shader this pipeline is built from.
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if none was set
	Shader() shader.Shader

	// Descriptor assembles the backend-neutral description of this pipeline.
	// The Module field is nil until Init has compiled the shader.
	//
	// Returns:
	//   - gpu.RenderPipelineDescriptor: the descriptor
	Descriptor() gpu.RenderPipelineDescriptor

	// Init compiles the shader module and the render pipeline on the given device.
	// Calling Init on an initialised pipeline is a no-op.
	//
	// Parameters:
	//   - dev: the device to compile on
	//
	// Returns:
	//   - error: an error if the pipeline has no shader
	Init(dev gpu.Device) error

	// RenderPipeline returns the compiled pipeline, or nil before Init.
	//
	// Returns:
	//   - gpu.RenderPipeline: the compiled pipeline
	RenderPipeline() gpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias configured for this pipeline.
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	DepthBiasSlopeScale() float32

	// BlendEnabled returns whether alpha blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	CullMode() gpu.CullMode

	// FrontFace returns the front face winding order configured for this pipeline.
	FrontFace() gpu.FrontFace

	// Release frees the compiled pipeline and shader module.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. Depth testing and writing are enabled
// by default with a less-than compare, culling is off and the front face is counter-clockwise.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthCompare:      gpu.CompareFunctionLess,
		cullMode:          gpu.CullModeNone,
		frontFace:         gpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Descriptor() gpu.RenderPipelineDescriptor {
	desc := gpu.RenderPipelineDescriptor{
		Label:               p.pipelineKey,
		Module:              p.module,
		VertexBuffers:       p.vertexBuffers,
		BindGroupLayouts:    p.bindGroupLayouts,
		ColorFormats:        p.colorFormats,
		DepthFormat:         p.depthFormat,
		DepthTestEnabled:    p.depthTestEnabled,
		DepthWriteEnabled:   p.depthWriteEnabled,
		DepthCompare:        p.depthCompare,
		DepthBias:           p.depthBias,
		DepthBiasSlopeScale: p.depthBiasSlopeScale,
		CullMode:            p.cullMode,
		FrontFace:           p.frontFace,
		Blend:               gpu.BlendModeOpaque,
	}
	if p.blendEnabled {
		desc.Blend = gpu.BlendModeAlpha
	}
	if p.shader != nil {
		desc.VertexEntry = p.shader.VertexEntry()
		if len(p.colorFormats) > 0 {
			desc.FragmentEntry = p.shader.FragmentEntry()
		}
	}
	return desc
}

func (p *pipeline) Init(dev gpu.Device) error {
	if p.renderPipeline != nil {
		return nil
	}
	if p.shader == nil {
		return fmt.Errorf("pipeline %q has no shader", p.pipelineKey)
	}
	p.module = dev.CreateShaderModule(gpu.ShaderModuleDescriptor{
		Label:  p.shader.Key(),
		Source: p.shader.Source(),
	})
	p.renderPipeline = dev.CreateRenderPipeline(p.Descriptor())
	return nil
}

func (p *pipeline) RenderPipeline() gpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() gpu.CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() gpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
