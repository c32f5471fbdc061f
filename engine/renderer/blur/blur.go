package blur

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/shader"
)

// DefaultSigma is the kernel standard deviation used when WithSigma is not given.
const DefaultSigma float32 = 2.0

// clearMoments is the colour the blur passes clear to, the moments of a fully lit texel.
var clearMoments = gpu.Color{R: 1, G: 1, B: 0, A: 0}

// sourceTarget holds the resources bound when a given texture is blurred in place.
type sourceTarget struct {
	textures    bind_group_provider.BindGroupProvider
	framebuffer gpu.Framebuffer
}

// gaussianBlur is the implementation of the GaussianBlur interface.
type gaussianBlur struct {
	r     renderer.Renderer
	label string

	width, height uint32
	format        gpu.TextureFormat
	sigma         float32
	weights       [Taps]float32

	shaderPath  string
	overrideDir string

	quad     *Quad
	ownsQuad bool

	pass         gpu.RenderPass
	pipeline     pipeline.Pipeline
	paramsLayout gpu.BindGroupLayout
	sourceLayout gpu.BindGroupLayout

	horizontal bind_group_provider.BindGroupProvider
	vertical   bind_group_provider.BindGroupProvider

	intermediate       *renderer.FrameRing[gpu.Texture]
	intermediateFBs    *renderer.FrameRing[gpu.Framebuffer]
	intermediateSource bind_group_provider.BindGroupProvider

	sources map[gpu.Texture]*sourceTarget
}

// GaussianBlur is a separable two-pass blur that filters a colour target in place through a
// frame-ring intermediate texture.
type GaussianBlur interface {
	// DrawPS records the horizontal pass from fb's colour target idx into the current
	// intermediate texture, then the vertical pass back into the target. Any render pass open on
	// the direct command list is ended first.
	//
	// Parameters:
	//   - fb: the framebuffer holding the texture to blur
	//   - renderTargetIndex: the index into fb.ColorTargets()
	DrawPS(fb gpu.Framebuffer, renderTargetIndex int)

	// Weights returns the one-sided weight table, w[0] is the centre tap.
	Weights() [Taps]float32

	// Sigma returns the kernel standard deviation in texels.
	Sigma() float32

	// Width returns the width of the textures this blur accepts.
	Width() uint32

	// Height returns the height of the textures this blur accepts.
	Height() uint32

	// Quad returns the full-screen quad the passes draw.
	Quad() *Quad

	// Release frees every resource the blur created.
	Release()
}

var _ GaussianBlur = &gaussianBlur{}

// NewGaussianBlur computes the weight table once and allocates the intermediate textures, the
// static horizontal and vertical parameter buffers and the blur pipeline. Textures passed to
// DrawPS must be width x height, carry the blur format and be usable as both a render attachment
// and a texture binding. A zero size or non-positive sigma is fatal.
//
// Parameters:
//   - r: the renderer
//   - width: the width of the blurred textures
//   - height: the height of the blurred textures
//   - options: a variadic list of GaussianBlurBuilderOption functions
//
// Returns:
//   - GaussianBlur: the blur
func NewGaussianBlur(r renderer.Renderer, width, height uint32, options ...GaussianBlurBuilderOption) GaussianBlur {
	if r == nil {
		common.Fatalf("blur: nil renderer")
	}
	if width == 0 || height == 0 {
		common.Fatalf("blur: size must be non-zero, got %dx%d", width, height)
	}
	b := &gaussianBlur{
		r:          r,
		label:      "gaussian_blur",
		width:      width,
		height:     height,
		format:     gpu.TextureFormatRG32Float,
		sigma:      DefaultSigma,
		shaderPath: shader.GaussianBlurPath,
		sources:    make(map[gpu.Texture]*sourceTarget),
	}
	for _, opt := range options {
		opt(b)
	}
	b.weights = ComputeWeights(b.sigma)

	dev := r.Device()
	if b.quad == nil {
		b.quad = NewQuad(r, b.label)
		b.ownsQuad = true
	}

	s := shader.NewShader(b.label, b.shaderPath, shader.WithOverrideDir(b.overrideDir))
	b.paramsLayout = dev.CreateBindGroupLayout(s.BindGroupLayoutDescriptor(0))
	b.sourceLayout = dev.CreateBindGroupLayout(s.BindGroupLayoutDescriptor(1))

	b.pipeline = pipeline.NewPipeline(b.label+"_pipeline",
		pipeline.WithShader(s),
		pipeline.WithVertexBuffers(QuadVertexLayout),
		pipeline.WithBindGroupLayouts(b.paramsLayout, b.sourceLayout),
		pipeline.WithColorFormats(b.format),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithCullMode(gpu.CullModeNone),
	)
	if err := b.pipeline.Init(dev); err != nil {
		common.Fatalf("blur: %v", err)
	}

	b.pass = dev.CreateRenderPass(gpu.RenderPassDescriptor{
		Label:       b.label + "_pass",
		ColorLoadOp: gpu.LoadOpClear,
		ClearColor:  clearMoments,
	})

	b.horizontal = b.newParams("h", [2]float32{1, 0})
	b.vertical = b.newParams("v", [2]float32{0, 1})

	b.intermediate = renderer.NewFrameRing(r, func(slot int) gpu.Texture {
		return dev.CreateTexture(gpu.TextureDescriptor{
			Label:  fmt.Sprintf("%s_intermediate_f%d", b.label, slot),
			Width:  width,
			Height: height,
			Format: b.format,
			Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
		})
	})
	b.intermediateFBs = renderer.NewFrameRing(r, func(slot int) gpu.Framebuffer {
		return dev.CreateFramebuffer(gpu.FramebufferDescriptor{
			Label:        fmt.Sprintf("%s_intermediate_fb_f%d", b.label, slot),
			Width:        width,
			Height:       height,
			ColorTargets: []gpu.Texture{b.intermediate.Slot(slot)},
		})
	})
	b.intermediateSource = bind_group_provider.NewBindGroupProvider(r, b.label+"_intermediate_src",
		gpu.BindGroupLayoutDescriptor{},
		bind_group_provider.WithLayout(b.sourceLayout),
		bind_group_provider.WithFrameTextureViews(0, func(slot int) gpu.TextureView {
			return b.intermediate.Slot(slot).View()
		}),
	)

	common.Logger().Debug("gaussian blur created", "label", b.label, "width", width, "height", height, "sigma", b.sigma)
	return b
}

func (b *gaussianBlur) newParams(suffix string, dir [2]float32) bind_group_provider.BindGroupProvider {
	p := bind_group_provider.NewBindGroupProvider(b.r, b.label+"_"+suffix, gpu.BindGroupLayoutDescriptor{},
		bind_group_provider.WithLayout(b.paramsLayout),
		bind_group_provider.WithStatic(),
	)
	p.Write(0, 0, Params{Direction: dir, Weights: b.weights}.Marshal())
	return p
}

// source returns the bindings used to read from and render back into target, creating them on
// first use.
func (b *gaussianBlur) source(target gpu.Texture) *sourceTarget {
	if src, ok := b.sources[target]; ok {
		return src
	}
	n := len(b.sources)
	src := &sourceTarget{
		textures: bind_group_provider.NewBindGroupProvider(b.r, fmt.Sprintf("%s_src%d", b.label, n),
			gpu.BindGroupLayoutDescriptor{},
			bind_group_provider.WithLayout(b.sourceLayout),
			bind_group_provider.WithStatic(),
			bind_group_provider.WithTextureView(0, target.View()),
		),
		framebuffer: b.r.Device().CreateFramebuffer(gpu.FramebufferDescriptor{
			Label:        fmt.Sprintf("%s_target%d", b.label, n),
			Width:        b.width,
			Height:       b.height,
			ColorTargets: []gpu.Texture{target},
		}),
	}
	b.sources[target] = src
	return src
}

func (b *gaussianBlur) DrawPS(fb gpu.Framebuffer, renderTargetIndex int) {
	targets := fb.ColorTargets()
	if renderTargetIndex < 0 || renderTargetIndex >= len(targets) {
		common.Logger().Error("blur target index out of range", "label", b.label, "framebuffer", fb.Label(), "index", renderTargetIndex)
		return
	}
	target := targets[renderTargetIndex]
	if target.Width() != b.width || target.Height() != b.height {
		common.Logger().Error("blur target size mismatch", "label", b.label, "target", target.Label(),
			"width", target.Width(), "height", target.Height())
		return
	}
	src := b.source(target)

	cmd := b.r.CommandList(gpu.CommandListDirect)
	if cmd.InRenderPass() {
		cmd.EndRenderPass()
	}

	b.drawPass(cmd, b.intermediateFBs.Current(), b.horizontal.BindGroup(), src.textures.BindGroup())
	b.drawPass(cmd, src.framebuffer, b.vertical.BindGroup(), b.intermediateSource.BindGroup())
}

func (b *gaussianBlur) drawPass(cmd gpu.CommandList, fb gpu.Framebuffer, params, source gpu.BindGroup) {
	cmd.BeginRenderPass(b.pass, fb)
	cmd.SetPipeline(b.pipeline.RenderPipeline())
	cmd.SetBindGroup(0, params)
	cmd.SetBindGroup(1, source)
	b.quad.Draw(cmd)
	cmd.EndRenderPass()
}

func (b *gaussianBlur) Weights() [Taps]float32 {
	return b.weights
}

func (b *gaussianBlur) Sigma() float32 {
	return b.sigma
}

func (b *gaussianBlur) Width() uint32 {
	return b.width
}

func (b *gaussianBlur) Height() uint32 {
	return b.height
}

func (b *gaussianBlur) Quad() *Quad {
	return b.quad
}

func (b *gaussianBlur) Release() {
	for target, src := range b.sources {
		src.textures.Release()
		delete(b.sources, target)
	}
	b.intermediateSource.Release()
	b.intermediate.Each(func(_ int, t gpu.Texture) { t.Release() })
	b.horizontal.Release()
	b.vertical.Release()
	b.pipeline.Release()
	b.paramsLayout.Release()
	b.sourceLayout.Release()
	if b.ownsQuad {
		b.quad.Release()
	}
}
