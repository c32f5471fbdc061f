package shadow

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/blur"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MomentsFormat is the colour format of a shadow map: depth and depth squared.
	MomentsFormat = gpu.TextureFormatRG32Float
	// DepthFormat is the depth attachment format of a shadow map.
	DepthFormat = gpu.TextureFormatDepth32Float

	defaultDepthBias      int32   = 2
	defaultDepthSlopeBias float32 = 2.0
)

// clearMoments are the moments of an unoccluded texel.
var clearMoments = gpu.Color{R: 1, G: 1, B: 0, A: 0}

// Drawable is anything a shadow map can render into its depth moments.
type Drawable interface {
	// World returns the model-to-world matrix.
	World() mgl32.Mat4
	// Bounds returns the world-space axis-aligned bounds.
	Bounds() (min, max mgl32.Vec3)
	// DrawNoMaterial records the geometry draw with whatever pipeline and groups are bound.
	DrawNoMaterial(cmd gpu.CommandList)
}

// registered is one Add call: the drawable and its per-object constant buffers.
type registered struct {
	drawable Drawable
	object   bind_group_provider.BindGroupProvider
}

// shadowMap is the implementation of the ShadowMap interface.
type shadowMap struct {
	mu sync.RWMutex

	r     renderer.Renderer
	label string

	width, height uint32

	softShadow     bool
	cull           bool
	blurSigma      float32
	shaderPath     string
	blurShaderPath string
	overrideDir    string
	depthBias      int32
	depthSlopeBias float32

	moments     gpu.Texture
	depth       gpu.Texture
	framebuffer gpu.Framebuffer
	pass        gpu.RenderPass

	pipeline     pipeline.Pipeline
	lightLayout  gpu.BindGroupLayout
	objectLayout gpu.BindGroupLayout
	light        bind_group_provider.BindGroupProvider

	quad *blur.Quad
	blur blur.GaussianBlur

	drawables []registered
	nextID    int
}

// ShadowMap renders registered drawables from a light into an RG32Float moments target and,
// with soft shadows enabled, filters the result with a separable Gaussian blur.
type ShadowMap interface {
	// Draw ends any render pass open on the direct command list, renders every registered
	// drawable with the given light matrix and blurs the moments if soft shadows are enabled.
	//
	// Parameters:
	//   - lightViewProj: the cropped light view-projection for this map
	Draw(lightViewProj mgl32.Mat4)

	// Add registers a drawable. Registering the same drawable twice draws it twice.
	//
	// Parameters:
	//   - d: the drawable
	Add(d Drawable)

	// Remove unregisters the first registration of d and releases its buffers.
	//
	// Parameters:
	//   - d: the drawable
	//
	// Returns:
	//   - bool: whether d was registered
	Remove(d Drawable) bool

	// Framebuffer returns the moments and depth attachments.
	Framebuffer() gpu.Framebuffer

	// ShadowView returns the view of the filtered moments texture for the colour pass.
	ShadowView() gpu.TextureView

	Width() uint32
	Height() uint32

	// Models returns a copy of the registration list.
	Models() []Drawable

	// Blur returns the moments filter.
	Blur() blur.GaussianBlur

	// SoftShadow reports whether Draw blurs the moments.
	SoftShadow() bool

	// Release frees every resource the shadow map created. Registered drawables are not released.
	Release()
}

var _ ShadowMap = &shadowMap{}

// NewShadowMap allocates the moments and depth targets, the depth-moments pipeline, the light
// constant buffers and the blur. A nil renderer or zero size is fatal.
//
// Parameters:
//   - r: the renderer
//   - width: the target width in texels
//   - height: the target height in texels
//   - options: a variadic list of ShadowMapBuilderOption functions
//
// Returns:
//   - ShadowMap: the shadow map
func NewShadowMap(r renderer.Renderer, width, height uint32, options ...ShadowMapBuilderOption) ShadowMap {
	if r == nil {
		common.Fatalf("shadow: nil renderer")
	}
	if width == 0 || height == 0 {
		common.Fatalf("shadow: shadow map size must be non-zero, got %dx%d", width, height)
	}
	s := &shadowMap{
		r:              r,
		label:          "shadow_map",
		width:          width,
		height:         height,
		softShadow:     true,
		blurSigma:      blur.DefaultSigma,
		shaderPath:     shader.ShadowDepthPath,
		blurShaderPath: shader.GaussianBlurPath,
		depthBias:      defaultDepthBias,
		depthSlopeBias: defaultDepthSlopeBias,
	}
	for _, option := range options {
		option(s)
	}
	dev := r.Device()

	s.moments = dev.CreateTexture(gpu.TextureDescriptor{
		Label:  s.label + "_moments",
		Width:  width,
		Height: height,
		Format: MomentsFormat,
		Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
	})
	s.depth = dev.CreateTexture(gpu.TextureDescriptor{
		Label:  s.label + "_depth",
		Width:  width,
		Height: height,
		Format: DepthFormat,
		Usage:  gpu.TextureUsageRenderAttachment,
	})
	s.framebuffer = dev.CreateFramebuffer(gpu.FramebufferDescriptor{
		Label:        s.label + "_fb",
		Width:        width,
		Height:       height,
		ColorTargets: []gpu.Texture{s.moments},
		DepthTarget:  s.depth,
	})
	s.pass = dev.CreateRenderPass(gpu.RenderPassDescriptor{
		Label:       s.label + "_pass",
		ColorLoadOp: gpu.LoadOpClear,
		ClearColor:  clearMoments,
		DepthLoadOp: gpu.LoadOpClear,
		ClearDepth:  1,
	})

	sh := shader.NewShader(s.label+"_depth_moments", s.shaderPath, shader.WithOverrideDir(s.overrideDir))
	s.lightLayout = dev.CreateBindGroupLayout(sh.BindGroupLayoutDescriptor(0))
	s.objectLayout = dev.CreateBindGroupLayout(sh.BindGroupLayoutDescriptor(1))
	s.pipeline = pipeline.NewPipeline(s.label+"_pipeline",
		pipeline.WithShader(sh),
		pipeline.WithVertexBuffers(model.VertexLayout),
		pipeline.WithBindGroupLayouts(s.lightLayout, s.objectLayout),
		pipeline.WithColorFormats(MomentsFormat),
		pipeline.WithDepthFormat(DepthFormat),
		pipeline.WithDepthBias(s.depthBias, s.depthSlopeBias),
		pipeline.WithCullMode(gpu.CullModeNone),
		pipeline.WithBlendEnabled(false),
	)
	if err := s.pipeline.Init(dev); err != nil {
		common.Fatalf("shadow: %v", err)
	}

	s.light = bind_group_provider.NewBindGroupProvider(r, s.label+"_light", gpu.BindGroupLayoutDescriptor{},
		bind_group_provider.WithLayout(s.lightLayout),
	)

	s.quad = blur.NewQuad(r, s.label)
	s.blur = blur.NewGaussianBlur(r, width, height,
		blur.WithLabel(s.label+"_blur"),
		blur.WithSigma(s.blurSigma),
		blur.WithShaderPath(s.blurShaderPath),
		blur.WithShaderOverrideDir(s.overrideDir),
		blur.WithFormat(MomentsFormat),
		blur.WithQuad(s.quad),
	)

	common.Logger().Debug("shadow map created", "label", s.label, "width", width, "height", height, "soft", s.softShadow)
	return s
}

func (s *shadowMap) Draw(lightViewProj mgl32.Mat4) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cmd := s.r.CommandList(gpu.CommandListDirect)
	if cmd.InRenderPass() {
		cmd.EndRenderPass()
	}

	s.light.Write(0, 0, common.Mat4Bytes(lightViewProj))

	var frustum common.Frustum
	if s.cull {
		frustum = common.ExtractFrustum(lightViewProj)
	}

	cmd.BeginRenderPass(s.pass, s.framebuffer)
	cmd.SetPipeline(s.pipeline.RenderPipeline())
	cmd.SetBindGroup(0, s.light.BindGroup())
	for _, reg := range s.drawables {
		if s.cull && !frustum.IntersectsAABB(reg.drawable.Bounds()) {
			continue
		}
		reg.object.Write(0, 0, model.ModelData{World: reg.drawable.World()}.Marshal())
		cmd.SetBindGroup(1, reg.object.BindGroup())
		reg.drawable.DrawNoMaterial(cmd)
	}
	cmd.EndRenderPass()

	if s.softShadow {
		s.blur.DrawPS(s.framebuffer, 0)
	}
}

func (s *shadowMap) Add(d Drawable) {
	if d == nil {
		common.Logger().Warn("ignoring nil drawable", "shadow_map", s.label)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj := bind_group_provider.NewBindGroupProvider(s.r, fmt.Sprintf("%s_obj%d", s.label, s.nextID),
		gpu.BindGroupLayoutDescriptor{},
		bind_group_provider.WithLayout(s.objectLayout),
	)
	s.nextID++
	s.drawables = append(s.drawables, registered{drawable: d, object: obj})
}

func (s *shadowMap) Remove(d Drawable) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, reg := range s.drawables {
		if reg.drawable == d {
			reg.object.Release()
			s.drawables = append(s.drawables[:i], s.drawables[i+1:]...)
			return true
		}
	}
	return false
}

func (s *shadowMap) Framebuffer() gpu.Framebuffer {
	return s.framebuffer
}

func (s *shadowMap) ShadowView() gpu.TextureView {
	return s.moments.View()
}

func (s *shadowMap) Width() uint32 {
	return s.width
}

func (s *shadowMap) Height() uint32 {
	return s.height
}

func (s *shadowMap) Models() []Drawable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Drawable, len(s.drawables))
	for i, reg := range s.drawables {
		out[i] = reg.drawable
	}
	return out
}

func (s *shadowMap) Blur() blur.GaussianBlur {
	return s.blur
}

func (s *shadowMap) SoftShadow() bool {
	return s.softShadow
}

func (s *shadowMap) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.drawables {
		reg.object.Release()
	}
	s.drawables = nil
	s.blur.Release()
	s.quad.Release()
	s.light.Release()
	s.pipeline.Release()
	s.lightLayout.Release()
	s.objectLayout.Release()
	s.depth.Release()
	s.moments.Release()
}
