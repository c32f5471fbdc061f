package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
)

// DefaultFrameCount is the number of frames that may be in flight at once.
const DefaultFrameCount = 3

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	device     gpu.Device
	frameCount int

	// frameNumber counts frames ended since creation; the current slot is frameNumber mod frameCount.
	frameNumber uint64
	// fenceValues holds, per slot, the fence value of the last submission that used that slot.
	fenceValues []uint64
	inFrame     bool

	lists       map[gpu.CommandListType]gpu.CommandList
	defaultPass gpu.RenderPass
	framebuffer gpu.Framebuffer
	depth       gpu.Texture
	clearColor  gpu.Color

	pipelineCache map[string]pipeline.Pipeline
}

// Renderer is the engine handle passed to every GPU-facing constructor.
//
// It owns the device, the per-type command lists recorded each frame, the default render pass
// targeting the backbuffer, and the frame fence ring. Every buffer written by the CPU and read by
// the GPU is replicated FrameCount times and indexed with CurrentFrameIndex (see FrameRing);
// BeginFrame blocks until the GPU has finished the last frame that used the current slot, so
// writing to slot CurrentFrameIndex between BeginFrame and EndFrame is always safe.
type Renderer interface {
	// Device returns the graphics device.
	Device() gpu.Device

	// FrameCount returns N, the number of frames in flight.
	FrameCount() int

	// CurrentFrameIndex returns the frame-ring slot of the frame being recorded, in [0, FrameCount).
	CurrentFrameIndex() int

	// FrameNumber returns the number of frames ended so far.
	FrameNumber() uint64

	// CommandList returns the command list of the given type for the current frame. Lists are
	// reset by BeginFrame and submitted by EndFrame.
	//
	// Parameters:
	//   - t: the command list type
	//
	// Returns:
	//   - gpu.CommandList: the list
	CommandList(t gpu.CommandListType) gpu.CommandList

	// DefaultRenderPass returns the pass that clears and renders the backbuffer.
	DefaultRenderPass() gpu.RenderPass

	// DefaultFramebuffer returns the backbuffer framebuffer acquired by the last BeginFrame,
	// or nil outside a frame.
	DefaultFramebuffer() gpu.Framebuffer

	// BeginFrame waits until the current frame-ring slot is free on the GPU, acquires the
	// backbuffer and resets the command lists.
	//
	// Parameters:
	//   - ctx: cancels the fence wait
	//
	// Returns:
	//   - error: an error if the wait was cancelled or the backbuffer could not be acquired;
	//     the caller should drop the frame
	BeginFrame(ctx context.Context) error

	// EndFrame closes any open render pass, submits the command lists, records the slot's fence
	// value and advances to the next slot.
	EndFrame()

	// Present shows the backbuffer rendered by the last frame.
	Present()

	// Pipeline retrieves the cached Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines compiles each pipeline on the device and caches it by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Release waits for all submitted work, then frees the cached pipelines, the default depth
	// target and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the engine handle on top of an already created device. The renderer takes
// ownership of the device and releases it in Release.
//
// Parameters:
//   - device: the graphics device, typically from backend.CreateInstance
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer
func NewRenderer(device gpu.Device, options ...RendererBuilderOption) Renderer {
	if device == nil {
		common.Fatalf("renderer: nil device")
	}
	r := &renderer{
		mu:            &sync.Mutex{},
		device:        device,
		frameCount:    DefaultFrameCount,
		lists:         make(map[gpu.CommandListType]gpu.CommandList),
		pipelineCache: make(map[string]pipeline.Pipeline),
		clearColor:    gpu.Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
	}
	for _, opt := range options {
		opt(r)
	}
	if r.frameCount < 1 {
		common.Fatalf("renderer: frame count must be at least 1, got %d", r.frameCount)
	}
	r.fenceValues = make([]uint64, r.frameCount)
	r.defaultPass = device.CreateRenderPass(gpu.RenderPassDescriptor{
		Label:       "default_pass",
		ColorLoadOp: gpu.LoadOpClear,
		ClearColor:  r.clearColor,
		DepthLoadOp: gpu.LoadOpClear,
		ClearDepth:  1,
	})

	common.Logger().Info("renderer created", "api", device.API().String(), "frames_in_flight", r.frameCount)
	return r
}

func (r *renderer) Device() gpu.Device {
	return r.device
}

func (r *renderer) FrameCount() int {
	return r.frameCount
}

func (r *renderer) CurrentFrameIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.frameNumber % uint64(r.frameCount))
}

func (r *renderer) FrameNumber() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameNumber
}

func (r *renderer) CommandList(t gpu.CommandListType) gpu.CommandList {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[t]
	if !ok {
		l = r.device.CreateCommandList(t)
		r.lists[t] = l
	}
	return l
}

func (r *renderer) DefaultRenderPass() gpu.RenderPass {
	return r.defaultPass
}

func (r *renderer) DefaultFramebuffer() gpu.Framebuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.framebuffer
}

func (r *renderer) BeginFrame(ctx context.Context) error {
	r.mu.Lock()
	if r.inFrame {
		r.mu.Unlock()
		return fmt.Errorf("renderer: BeginFrame called twice without EndFrame")
	}
	slot := int(r.frameNumber % uint64(r.frameCount))
	wait := r.fenceValues[slot]
	r.mu.Unlock()

	if err := r.device.Fence().Wait(ctx, wait); err != nil {
		return fmt.Errorf("renderer: wait for frame slot %d: %w", slot, err)
	}

	back, err := r.device.AcquireBackbuffer()
	if err != nil {
		return fmt.Errorf("renderer: acquire backbuffer: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.depth == nil || r.depth.Width() != back.Width() || r.depth.Height() != back.Height() {
		if r.depth != nil {
			r.depth.Release()
		}
		r.depth = r.device.CreateTexture(gpu.TextureDescriptor{
			Label:  "default_depth",
			Width:  back.Width(),
			Height: back.Height(),
			Format: gpu.TextureFormatDepth32Float,
			Usage:  gpu.TextureUsageRenderAttachment,
		})
	}
	r.framebuffer = r.device.CreateFramebuffer(gpu.FramebufferDescriptor{
		Label:        "default_framebuffer",
		Width:        back.Width(),
		Height:       back.Height(),
		ColorTargets: []gpu.Texture{back},
		DepthTarget:  r.depth,
	})
	for _, l := range r.lists {
		l.Reset()
	}
	r.inFrame = true
	return nil
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		common.Logger().Warn("EndFrame without BeginFrame")
		return
	}

	ordered := make([]gpu.CommandList, 0, len(r.lists))
	for _, t := range []gpu.CommandListType{gpu.CommandListCopy, gpu.CommandListCompute, gpu.CommandListDirect} {
		l, ok := r.lists[t]
		if !ok {
			continue
		}
		if l.InRenderPass() {
			l.EndRenderPass()
		}
		ordered = append(ordered, l)
	}

	slot := int(r.frameNumber % uint64(r.frameCount))
	r.fenceValues[slot] = r.device.Submit(ordered...)
	r.frameNumber++
	r.inFrame = false
	r.framebuffer = nil
}

func (r *renderer) Present() {
	r.device.Present()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := p.Init(r.device); err != nil {
			return err
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	var last uint64
	for _, v := range r.fenceValues {
		last = max(last, v)
	}
	r.mu.Unlock()

	if err := r.device.Fence().Wait(context.Background(), last); err != nil {
		common.Logger().Warn("release before GPU idle", "err", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
	r.device.Release()
}
