package gpu

import (
	"context"
	"fmt"
)

// Resource is the common surface of every device object.
type Resource interface {
	// Label returns the debug label the resource was created with.
	Label() string

	// Release frees the backend object. Releasing twice is a no-op.
	Release()
}

// Buffer is a linear GPU allocation.
type Buffer interface {
	Resource
	Size() uint64
	Usage() BufferUsage
}

// Texture is a 2D GPU image.
type Texture interface {
	Resource
	Width() uint32
	Height() uint32
	Format() TextureFormat

	// View returns the default full-texture view used for sampling and attachments.
	View() TextureView
}

// TextureView is a binding handle onto a Texture.
type TextureView interface {
	Label() string
	Texture() Texture
}

// ShaderModule is a compiled WGSL module.
type ShaderModule interface {
	Resource
}

// BindGroupLayout is the shape of a bind group.
type BindGroupLayout interface {
	Resource
	Entries() []BindGroupLayoutEntry
}

// BindGroup is a set of resources bound together at one group index.
type BindGroup interface {
	Resource
	Layout() BindGroupLayout
}

// RenderPipeline is a compiled graphics pipeline.
type RenderPipeline interface {
	Resource
}

// Fence tracks completion of submitted work with a monotonically increasing value.
type Fence interface {
	// Completed returns the highest value known to be reached by the GPU.
	Completed() uint64

	// Wait blocks until the fence reaches value or ctx is done.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//   - value: the fence value to wait for
	//
	// Returns:
	//   - error: ctx.Err() if the wait was abandoned
	Wait(ctx context.Context, value uint64) error
}

// CommandList records GPU commands in program order for later submission.
// Render pass commands must be recorded between BeginRenderPass and EndRenderPass;
// passes never nest.
type CommandList interface {
	// Type returns the queue type this list was created for.
	Type() CommandListType

	// Reset discards every recorded command so the list can be reused for a new frame.
	Reset()

	// BeginRenderPass starts a render pass on the given framebuffer.
	//
	// Parameters:
	//   - pass: load/clear behavior of the attachments
	//   - fb: the attachments to render into
	BeginRenderPass(pass RenderPass, fb Framebuffer)

	// EndRenderPass closes the open render pass.
	EndRenderPass()

	// InRenderPass reports whether a render pass is currently open.
	InRenderPass() bool

	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, bg BindGroup)
	SetVertexBuffer(slot uint32, b Buffer)
	SetIndexBuffer(b Buffer, format IndexFormat)
	Draw(vertexCount, instanceCount uint32)
	DrawIndexed(indexCount, instanceCount uint32)
}

// Device creates resources and executes command lists. One implementation exists per
// graphics API; callers only ever see this interface.
type Device interface {
	// API returns the graphics API backing this device.
	API() API

	CreateBuffer(desc BufferDescriptor) Buffer
	CreateTexture(desc TextureDescriptor) Texture
	CreateShaderModule(desc ShaderModuleDescriptor) ShaderModule
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) BindGroupLayout
	CreateBindGroup(desc BindGroupDescriptor) BindGroup
	CreateRenderPipeline(desc RenderPipelineDescriptor) RenderPipeline
	CreateRenderPass(desc RenderPassDescriptor) RenderPass
	CreateFramebuffer(desc FramebufferDescriptor) Framebuffer

	// WriteBuffer schedules a CPU to GPU copy that lands before the next submission executes.
	//
	// Parameters:
	//   - b: destination buffer
	//   - offset: byte offset into b
	//   - data: bytes to copy
	WriteBuffer(b Buffer, offset uint64, data []byte)

	// CreateCommandList returns an empty command list for the given queue type.
	CreateCommandList(t CommandListType) CommandList

	// Submit executes the lists in order and returns the fence value signalled once they complete.
	//
	// Parameters:
	//   - lists: the command lists to execute
	//
	// Returns:
	//   - uint64: the fence value of this submission
	Submit(lists ...CommandList) uint64

	// Fence returns the device's submission fence.
	Fence() Fence

	// AcquireBackbuffer returns the texture the default render pass draws into this frame.
	//
	// Returns:
	//   - Texture: the current backbuffer
	//   - error: non-nil if the surface could not provide an image (the frame should be dropped)
	AcquireBackbuffer() (Texture, error)

	// BackbufferFormat returns the colour format of the backbuffer.
	BackbufferFormat() TextureFormat

	// Present shows the acquired backbuffer. It is a no-op if nothing was acquired.
	Present()

	// Release destroys the device and every object it still owns.
	Release()
}

// RenderPass is the backend-neutral load/clear description of a pass.
type RenderPass interface {
	Label() string
	Descriptor() RenderPassDescriptor
}

// Framebuffer is a fixed-size set of attachments.
type Framebuffer interface {
	Label() string
	Width() uint32
	Height() uint32
	ColorTargets() []Texture
	DepthTarget() Texture
}

type renderPass struct {
	desc RenderPassDescriptor
}

func (p *renderPass) Label() string                    { return p.desc.Label }
func (p *renderPass) Descriptor() RenderPassDescriptor { return p.desc }

// NewRenderPass wraps a descriptor in the RenderPass interface. Backends that have no
// native render pass object return this from CreateRenderPass.
func NewRenderPass(desc RenderPassDescriptor) RenderPass {
	return &renderPass{desc: desc}
}

type framebuffer struct {
	desc FramebufferDescriptor
}

func (f *framebuffer) Label() string           { return f.desc.Label }
func (f *framebuffer) Width() uint32           { return f.desc.Width }
func (f *framebuffer) Height() uint32          { return f.desc.Height }
func (f *framebuffer) ColorTargets() []Texture { return f.desc.ColorTargets }
func (f *framebuffer) DepthTarget() Texture    { return f.desc.DepthTarget }

// NewFramebuffer validates that every attachment matches the framebuffer size and wraps
// the descriptor in the Framebuffer interface.
//
// Parameters:
//   - desc: the attachments and their common size
//
// Returns:
//   - Framebuffer: the framebuffer
//   - error: non-nil if the size is zero or an attachment does not match it
func NewFramebuffer(desc FramebufferDescriptor) (Framebuffer, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gpu: framebuffer %q has zero size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	check := func(t Texture) error {
		if t.Width() != desc.Width || t.Height() != desc.Height {
			return fmt.Errorf("gpu: framebuffer %q attachment %q is %dx%d, want %dx%d",
				desc.Label, t.Label(), t.Width(), t.Height(), desc.Width, desc.Height)
		}
		return nil
	}
	for _, t := range desc.ColorTargets {
		if err := check(t); err != nil {
			return nil, err
		}
	}
	if desc.DepthTarget != nil {
		if err := check(desc.DepthTarget); err != nil {
			return nil, err
		}
	}
	return &framebuffer{desc: desc}, nil
}
