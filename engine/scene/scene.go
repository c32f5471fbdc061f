package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-csm/engine/shadow"
	"github.com/Carmen-Shannon/oxy-csm/engine/timer"
	"github.com/google/uuid"
)

// entry is a model added to the scene and its colour-pass constant buffers.
type entry struct {
	model  model.Model
	object bind_group_provider.BindGroupProvider
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	cam    camera.Camera
	r      renderer.Renderer
	sun    light.Light

	shadows       shadow.CascadeShadowCoordinator
	cascadeDesc   shadow.CascadeDesc
	shadowOptions []shadow.CoordinatorBuilderOption
	overrideDir   string

	// models is keyed by ID; order keeps draw order stable across frames.
	models  map[uuid.UUID]*entry
	order   []uuid.UUID
	initial []model.Model

	pipeline    pipeline.Pipeline
	sceneLayout gpu.BindGroupLayout
	modelLayout gpu.BindGroupLayout
	sceneData   bind_group_provider.BindGroupProvider
	cascades    bind_group_provider.BindGroupProvider

	// writePool is reused each frame to stage uniform writes.
	writePool []bind_group_provider.BufferWrite

	// computePool runs the per-frame model transform updates. Workers persist across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Scene owns the models of one view, the directional light with its cascaded shadow maps, and
// the lit colour pass that samples them. Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera, ignored if nil
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// Light returns the directional light.
	Light() light.Light

	// SetLight replaces the directional light.
	//
	// Parameters:
	//   - l: the new light, ignored if nil
	SetLight(l light.Light)

	// Shadows returns the cascade coordinator rendering the light's shadow.
	Shadows() shadow.CascadeShadowCoordinator

	// Add uploads a model, allocates its colour-pass buffers and registers it with every
	// cascade when it casts shadows. Adding a model whose ID is already present is a no-op.
	//
	// Parameters:
	//   - m: the model
	Add(m model.Model)

	// Remove takes a model out of the colour pass and the cascades. The model's GPU geometry is
	// not released.
	//
	// Parameters:
	//   - id: the model ID
	//
	// Returns:
	//   - bool: whether the model was present
	Remove(id uuid.UUID) bool

	// Get returns the model with the given ID, or nil.
	//
	// Parameters:
	//   - id: the model ID
	//
	// Returns:
	//   - model.Model: the model
	Get(id uuid.UUID) model.Model

	// Models returns the models in draw order.
	Models() []model.Model

	// Count returns the number of models.
	Count() int

	// Update advances the camera and then every model's transform in parallel. It returns once
	// every model has been updated.
	//
	// Parameters:
	//   - t: the frame timer, may be nil
	Update(t timer.Timer)

	// Draw records the cascaded shadow passes and then the lit colour pass into the renderer's
	// default framebuffer. Must be called between BeginFrame and EndFrame. Inactive scenes
	// record nothing.
	//
	// Parameters:
	//   - t: the frame timer, may be nil
	Draw(t timer.Timer)

	// Release frees the scene's buffers, layouts and the shadow coordinator. Models and the
	// lit pipeline, which the renderer caches, are left alone.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a scene with its shadow coordinator and lit pipeline. The camera and renderer
// are required and NewScene panics if either is nil.
//
// Parameters:
//   - name: the name of the scene, also the prefix of its GPU resources
//   - cam: the viewer camera (must not be nil)
//   - r: the renderer (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		common.Fatalf("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		common.Fatalf("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		cam:            cam,
		r:              r,
		cascadeDesc:    shadow.DefaultCascadeDesc(),
		models:         make(map[uuid.UUID]*entry),
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}
	if s.sun == nil {
		s.sun = light.NewLight()
	}

	// Queue size of 256 leaves headroom for a burst of model updates per frame.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	opts := append([]shadow.CoordinatorBuilderOption{
		shadow.WithCoordinatorLabel(name + "_csm"),
		shadow.WithShaderOverrideDir(s.overrideDir),
	}, s.shadowOptions...)
	s.shadows = shadow.NewCascadeShadowCoordinator(r, s.cascadeDesc, opts...)

	s.initPipeline()

	initial := s.initial
	s.initial = nil
	for _, m := range initial {
		s.Add(m)
	}

	common.Logger().Info("scene created", "scene", name, "workers", s.computeWorkers, "models", len(s.order))
	return s
}

// initPipeline builds the lit pipeline and the providers for groups 0 and 2 from the lit shader's
// declarations.
func (s *scene) initPipeline() {
	dev := s.r.Device()
	sh := shader.NewShader(s.name+"_lit", shader.LitPath, shader.WithOverrideDir(s.overrideDir))

	s.sceneLayout = dev.CreateBindGroupLayout(sh.BindGroupLayoutDescriptor(0))
	s.modelLayout = dev.CreateBindGroupLayout(sh.BindGroupLayoutDescriptor(1))
	s.sceneData = bind_group_provider.NewBindGroupProvider(s.r, s.name+"_scene", gpu.BindGroupLayoutDescriptor{},
		bind_group_provider.WithLayout(s.sceneLayout),
	)

	views := s.shadows.ShadowViews()
	s.cascades = bind_group_provider.NewBindGroupProvider(s.r, s.name+"_cascades", sh.BindGroupLayoutDescriptor(2),
		bind_group_provider.WithFrameBuffers(0, s.shadows.ShadowInfoBufferAt),
		bind_group_provider.WithTextureView(1, views[0]),
		bind_group_provider.WithTextureView(2, views[1]),
		bind_group_provider.WithTextureView(3, views[2]),
	)

	key := s.name + "_lit"
	p := pipeline.NewPipeline(key,
		pipeline.WithShader(sh),
		pipeline.WithVertexBuffers(model.VertexLayout),
		pipeline.WithBindGroupLayouts(s.sceneLayout, s.modelLayout, s.cascades.Layout()),
		pipeline.WithColorFormats(dev.BackbufferFormat()),
		pipeline.WithDepthFormat(gpu.TextureFormatDepth32Float),
		pipeline.WithCullMode(gpu.CullModeBack),
	)
	if err := s.r.RegisterPipelines(p); err != nil {
		common.Fatalf("scene: %s: %v", s.name, err)
	}
	s.pipeline = s.r.Pipeline(key)
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	if cam == nil {
		common.Logger().Warn("ignoring nil camera", "scene", s.Name())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Light() light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sun
}

func (s *scene) SetLight(l light.Light) {
	if l == nil {
		common.Logger().Warn("ignoring nil light", "scene", s.Name())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sun = l
}

func (s *scene) Shadows() shadow.CascadeShadowCoordinator {
	return s.shadows
}

func (s *scene) Add(m model.Model) {
	if m == nil {
		common.Logger().Warn("ignoring nil model", "scene", s.Name())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[m.ID()]; ok {
		return
	}

	m.Upload(s.r.Device())
	obj := bind_group_provider.NewBindGroupProvider(s.r, s.name+"_model_"+m.ID().String(), gpu.BindGroupLayoutDescriptor{},
		bind_group_provider.WithLayout(s.modelLayout),
	)
	s.models[m.ID()] = &entry{model: m, object: obj}
	s.order = append(s.order, m.ID())
	if m.CastsShadows() {
		s.shadows.Add(m)
	}
	common.Logger().Debug("model added", "scene", s.name, "model", m.Name(), "shadows", m.CastsShadows())
}

func (s *scene) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.models[id]
	if !ok {
		return false
	}
	delete(s.models, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if e.model.CastsShadows() {
		s.shadows.Remove(e.model)
	}
	e.object.Release()
	return true
}

func (s *scene) Get(id uuid.UUID) model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.models[id]; ok {
		return e.model
	}
	return nil
}

func (s *scene) Models() []model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Model, len(s.order))
	for i, id := range s.order {
		out[i] = s.models[id].model
	}
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *scene) Update(t timer.Timer) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var dt float32
	if t != nil {
		dt = t.Delta()
	}
	s.cam.Update(t)

	// A WaitGroup is the per-frame barrier: the shadow pass must not read a transform that is
	// still being written.
	var wg sync.WaitGroup
	for i, id := range s.order {
		m := s.models[id].model
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				m.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Draw(t timer.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}

	shadowed := s.sun.Enabled() && s.sun.CastsShadows()
	if shadowed {
		s.shadows.Draw(t, s.sun.Direction())
	}

	data := SceneData{
		ViewProj: s.cam.ViewProjection(),
		View:     s.cam.View(),
		Light:    light.ToGPULight(s.sun),
	}
	writes := append(s.writePool[:0], bind_group_provider.BufferWrite{
		Provider: s.sceneData,
		Data:     data.Marshal(),
	})
	for _, id := range s.order {
		e := s.models[id]
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: e.object,
			Data:     model.ModelData{World: e.model.World()}.Marshal(),
		})
	}
	bind_group_provider.WriteBuffers(writes)
	s.writePool = writes

	cmd := s.r.CommandList(gpu.CommandListDirect)
	if !cmd.InRenderPass() {
		cmd.BeginRenderPass(s.r.DefaultRenderPass(), s.r.DefaultFramebuffer())
	}
	cmd.SetPipeline(s.pipeline.RenderPipeline())
	cmd.SetBindGroup(0, s.sceneData.BindGroup())
	cmd.SetBindGroup(2, s.cascades.BindGroup())
	for _, id := range s.order {
		e := s.models[id]
		cmd.SetBindGroup(1, e.object.BindGroup())
		e.model.DrawNoMaterial(cmd)
	}
	cmd.EndRenderPass()
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		s.models[id].object.Release()
	}
	s.models = make(map[uuid.UUID]*entry)
	s.order = nil
	s.cascades.Release()
	s.sceneData.Release()
	s.shadows.Release()
	s.modelLayout.Release()
	s.sceneLayout.Release()
}
