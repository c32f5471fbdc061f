package shadow

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/blur"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
)

// lightLens is the orthographic volume of the light camera before cropping.
type lightLens struct {
	width, height, near, far float32
}

// cascadeShadowCoordinator is the implementation of the CascadeShadowCoordinator interface.
type cascadeShadowCoordinator struct {
	mu sync.RWMutex

	r     renderer.Renderer
	desc  CascadeDesc
	label string

	lightCamera camera.Camera
	viewCamera  FrustumSource
	lens        *lightLens

	blurSigma      float32
	shadowShader   string
	blurShader     string
	overrideDir    string
	cull           bool
	depthBias      int32
	depthSlopeBias float32

	maps [CascadeCount]ShadowMap

	info       CascadeInfo
	infoBuffer *renderer.FrameRing[gpu.Buffer]
}

// CascadeShadowCoordinator renders a directional light's shadow into three cascades of
// decreasing resolution and publishes the matrices the colour pass needs to sample them.
type CascadeShadowCoordinator interface {
	// Draw orients the light camera along lightDirection, recomputes the three cropped light
	// matrices, uploads them as CascadeInfo into the current frame's buffer and renders every
	// cascade in order.
	//
	// Parameters:
	//   - t: the frame timer forwarded to the light camera, may be nil
	//   - lightDirection: the direction the light travels in, need not be normalized
	Draw(t timer.Timer, lightDirection mgl32.Vec3)

	// Add registers a drawable with every cascade. Registration is append-only: adding the
	// same drawable twice draws it twice.
	//
	// Parameters:
	//   - d: the drawable
	Add(d Drawable)

	// Remove unregisters one registration of d from every cascade.
	//
	// Parameters:
	//   - d: the drawable
	//
	// Returns:
	//   - bool: whether any cascade held d
	Remove(d Drawable) bool

	// ShadowMaps returns the cascades, nearest first.
	ShadowMaps() []ShadowMap

	// ShadowMap returns cascade i, or nil when i is out of range.
	//
	// Parameters:
	//   - i: the cascade index
	//
	// Returns:
	//   - ShadowMap: the cascade's shadow map
	ShadowMap(i int) ShadowMap

	// ShadowViews returns the filtered moments view of every cascade, nearest first.
	ShadowViews() [CascadeCount]gpu.TextureView

	// LightCamera returns the orthographic camera representing the light.
	LightCamera() camera.Camera

	// CascadeInfo returns the CPU copy of the last uploaded cascade uniform.
	CascadeInfo() CascadeInfo

	// ShadowInfoBuffer returns the current frame's CascadeInfo buffer for binding in the
	// colour pass.
	ShadowInfoBuffer() gpu.Buffer

	// ShadowInfoBufferAt returns the CascadeInfo buffer of a frame-ring slot.
	//
	// Parameters:
	//   - slot: the frame-ring slot
	//
	// Returns:
	//   - gpu.Buffer: the buffer
	ShadowInfoBufferAt(slot int) gpu.Buffer

	// Desc returns the cascade description the coordinator was built with.
	Desc() CascadeDesc

	// Release frees every shadow map and the CascadeInfo buffers.
	Release()
}

var _ CascadeShadowCoordinator = &cascadeShadowCoordinator{}

// NewCascadeShadowCoordinator allocates three shadow maps sized MaxResolution, /2 and /4, the
// light camera and the frame ring of CascadeInfo buffers. A nil renderer or a desc failing
// Validate is fatal.
//
// Parameters:
//   - r: the renderer
//   - desc: the cascade split and resolution
//   - options: a variadic list of CoordinatorBuilderOption functions
//
// Returns:
//   - CascadeShadowCoordinator: the coordinator
func NewCascadeShadowCoordinator(r renderer.Renderer, desc CascadeDesc, options ...CoordinatorBuilderOption) CascadeShadowCoordinator {
	if r == nil {
		common.Fatalf("shadow: nil renderer")
	}
	if err := desc.Validate(); err != nil {
		common.Fatalf("shadow: %v", err)
	}
	c := &cascadeShadowCoordinator{
		r:              r,
		desc:           desc,
		label:          "csm",
		blurSigma:      blur.DefaultSigma,
		depthBias:      defaultDepthBias,
		depthSlopeBias: defaultDepthSlopeBias,
	}
	for _, option := range options {
		option(c)
	}
	if c.lens == nil {
		c.lens = &lightLens{width: 2 * desc.Far, height: 2 * desc.Far, near: -desc.Far, far: desc.Far}
	}
	c.lightCamera = camera.NewLightCamera(camera.WithOrthoLens(c.lens.width, c.lens.height, c.lens.near, c.lens.far))

	// Every cascade is blurred. UseSoftShadow reaches the colour pass only through CascadeInfo,
	// where it picks the variance test over a plain depth compare.
	for i, res := range CascadeResolutions(desc.MaxResolution) {
		c.maps[i] = NewShadowMap(r, res, res,
			WithLabel(fmt.Sprintf("%s_cascade%d", c.label, i)),
			WithMapBlurSigma(c.blurSigma),
			WithCulling(c.cull),
			WithShaderPaths(c.shadowShader, c.blurShader),
			WithMapShaderOverrideDir(c.overrideDir),
			WithMapDepthBias(c.depthBias, c.depthSlopeBias),
		)
		common.Logger().Debug("cascade allocated", "cascade", i, "resolution", res)
	}

	dev := r.Device()
	c.infoBuffer = renderer.NewFrameRing(r, func(slot int) gpu.Buffer {
		return dev.CreateBuffer(gpu.BufferDescriptor{
			Label: fmt.Sprintf("%s_info_f%d", c.label, slot),
			Size:  CascadeInfoSize,
			Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
		})
	})

	common.Logger().Info("cascaded shadow maps created",
		"near", desc.Near, "medium", desc.Medium, "far", desc.Far,
		"resolution", desc.MaxResolution, "soft", desc.UseSoftShadow)
	return c
}

func (c *cascadeShadowCoordinator) Draw(t timer.Timer, lightDirection mgl32.Vec3) {
	c.lightCamera.LookAt(LightPosition(lightDirection), mgl32.Vec3{}, LightUp(lightDirection))
	c.lightCamera.Update(t)

	var src FrustumSource = c.lightCamera
	if c.viewCamera != nil {
		src = c.viewCamera
	}
	lightViewProj := c.lightCamera.ViewProjection()

	info := CascadeInfo{SplitDepths: c.desc.Bounds()}
	if c.desc.UseSoftShadow {
		info.SoftShadow = 1
	}
	start := max(src.Near(), 0)
	for i, bound := range c.desc.Bounds() {
		corners := FrustumCorners(src, start, bound)
		info.LVPC[i] = CropMatrix(corners, lightViewProj).Mul4(lightViewProj)
		start = bound
	}

	c.mu.Lock()
	c.info = info
	c.mu.Unlock()
	c.r.Device().WriteBuffer(c.infoBuffer.Current(), 0, info.Marshal())

	for i, m := range c.maps {
		m.Draw(info.LVPC[i])
	}
}

func (c *cascadeShadowCoordinator) Add(d Drawable) {
	for _, m := range c.maps {
		m.Add(d)
	}
}

func (c *cascadeShadowCoordinator) Remove(d Drawable) bool {
	removed := false
	for _, m := range c.maps {
		if m.Remove(d) {
			removed = true
		}
	}
	return removed
}

func (c *cascadeShadowCoordinator) ShadowMaps() []ShadowMap {
	out := make([]ShadowMap, CascadeCount)
	copy(out, c.maps[:])
	return out
}

func (c *cascadeShadowCoordinator) ShadowMap(i int) ShadowMap {
	if i < 0 || i >= CascadeCount {
		return nil
	}
	return c.maps[i]
}

func (c *cascadeShadowCoordinator) ShadowViews() [CascadeCount]gpu.TextureView {
	var out [CascadeCount]gpu.TextureView
	for i, m := range c.maps {
		out[i] = m.ShadowView()
	}
	return out
}

func (c *cascadeShadowCoordinator) LightCamera() camera.Camera {
	return c.lightCamera
}

func (c *cascadeShadowCoordinator) CascadeInfo() CascadeInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

func (c *cascadeShadowCoordinator) ShadowInfoBuffer() gpu.Buffer {
	return c.infoBuffer.Current()
}

func (c *cascadeShadowCoordinator) ShadowInfoBufferAt(slot int) gpu.Buffer {
	return c.infoBuffer.Slot(slot)
}

func (c *cascadeShadowCoordinator) Desc() CascadeDesc {
	return c.desc
}

func (c *cascadeShadowCoordinator) Release() {
	for _, m := range c.maps {
		m.Release()
	}
	c.infoBuffer.Each(func(_ int, b gpu.Buffer) { b.Release() })
}
