package bind_group_provider

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
)

// frameBindings is the set of resources for one frame-ring slot.
type frameBindings struct {
	group   gpu.BindGroup
	buffers map[int]gpu.Buffer
	// borrowed marks buffers supplied through WithFrameBuffers; Release leaves them alone.
	borrowed map[int]bool
}

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label  string
	device gpu.Device

	layout      gpu.BindGroupLayout
	ownsLayout  bool
	static      bool
	bufferSizes map[int]uint64

	// textureViews are bound identically in every slot; frameTextureViews vary per slot.
	textureViews      map[int]gpu.TextureView
	frameTextureViews map[int]func(slot int) gpu.TextureView

	frameBuffers map[int]func(slot int) gpu.Buffer

	frames *renderer.FrameRing[*frameBindings]
}

// BindGroupProvider owns one bind group layout and a frame ring of bind groups built against it.
// Each uniform binding gets its own buffer per slot, so the CPU can write the current frame's
// copy while the GPU still reads the copies of earlier frames.
type BindGroupProvider interface {
	// Label returns the label of the provider.
	Label() string

	// Layout returns the bind group layout.
	Layout() gpu.BindGroupLayout

	// BindGroup returns the bind group of the current frame.
	BindGroup() gpu.BindGroup

	// BindGroupAt returns the bind group of a specific slot.
	//
	// Parameters:
	//   - slot: the frame-ring slot
	//
	// Returns:
	//   - gpu.BindGroup: the bind group
	BindGroupAt(slot int) gpu.BindGroup

	// Buffer returns the current frame's uniform buffer at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Buffer: the buffer
	Buffer(binding int) gpu.Buffer

	// BufferAt returns the uniform buffer at a binding of a specific slot, or nil.
	//
	// Parameters:
	//   - slot: the frame-ring slot
	//   - binding: the binding index
	//
	// Returns:
	//   - gpu.Buffer: the buffer
	BufferAt(slot, binding int) gpu.Buffer

	// Slots returns the number of frame-ring slots (1 for static providers).
	Slots() int

	// Write copies data into the current frame's buffer at a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - offset: byte offset into the buffer
	//   - data: the bytes to write
	Write(binding int, offset uint64, data []byte)

	// Release frees the bind groups, buffers and the layout if the provider created it.
	// Texture views are owned by their textures and are not released.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// staticFrames is a frame indexer for providers whose contents never change after creation.
type staticFrames struct{}

func (staticFrames) FrameCount() int        { return 1 }
func (staticFrames) CurrentFrameIndex() int { return 0 }

// NewBindGroupProvider creates the layout (unless a shared one is supplied), then one bind group
// per frame-ring slot of r. Uniform bindings are backed by fresh buffers sized to the layout's
// MinSize; texture bindings must be supplied with WithTextureView or WithFrameTextureViews.
// A missing texture or an unsized uniform is fatal and panics.
//
// Parameters:
//   - r: the renderer providing the device and frame index
//   - label: the label used for the layout, groups and buffers
//   - desc: the layout descriptor
//   - options: a variadic list of BindGroupProviderOption functions
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(r renderer.Renderer, label string, desc gpu.BindGroupLayoutDescriptor, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:             label,
		device:            r.Device(),
		bufferSizes:       make(map[int]uint64),
		textureViews:      make(map[int]gpu.TextureView),
		frameTextureViews: make(map[int]func(slot int) gpu.TextureView),
		frameBuffers:      make(map[int]func(slot int) gpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.layout == nil {
		desc.Label = common.Coalesce(desc.Label, label)
		p.layout = p.device.CreateBindGroupLayout(desc)
		p.ownsLayout = true
	}

	var frames renderer.FrameIndexer = r
	if p.static {
		frames = staticFrames{}
	}
	p.frames = renderer.NewFrameRing(frames, p.createSlot)
	return p
}

func (p *bindGroupProvider) createSlot(slot int) *frameBindings {
	fb := &frameBindings{buffers: make(map[int]gpu.Buffer), borrowed: make(map[int]bool)}
	layout := p.layout.Entries()
	entries := make([]gpu.BindGroupEntry, len(layout))
	for i, e := range layout {
		binding := int(e.Binding)
		entries[i] = gpu.BindGroupEntry{Binding: e.Binding}
		switch e.Type {
		case gpu.BindingTypeUniformBuffer:
			if fn, ok := p.frameBuffers[binding]; ok {
				buf := fn(slot)
				if buf == nil {
					common.Fatalf("bind_group_provider: %s binding %d has no buffer for slot %d", p.label, binding, slot)
				}
				fb.buffers[binding] = buf
				fb.borrowed[binding] = true
				entries[i].Buffer = buf
				continue
			}
			size := common.Coalesce(p.bufferSizes[binding], e.MinSize)
			if size == 0 {
				common.Fatalf("bind_group_provider: %s binding %d has no size", p.label, binding)
			}
			buf := p.device.CreateBuffer(gpu.BufferDescriptor{
				Label: fmt.Sprintf("%s_b%d_f%d", p.label, binding, slot),
				Size:  size,
				Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
			})
			fb.buffers[binding] = buf
			entries[i].Buffer = buf
		case gpu.BindingTypeTexture, gpu.BindingTypeUnfilterableTexture:
			view := p.textureViews[binding]
			if fn, ok := p.frameTextureViews[binding]; ok {
				view = fn(slot)
			}
			if view == nil {
				common.Fatalf("bind_group_provider: %s binding %d has no texture view", p.label, binding)
			}
			entries[i].Texture = view
		default:
			common.Fatalf("bind_group_provider: %s binding %d has unsupported type %d", p.label, binding, e.Type)
		}
	}
	fb.group = p.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("%s_f%d", p.label, slot),
		Layout:  p.layout,
		Entries: entries,
	})
	return fb
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Layout() gpu.BindGroupLayout {
	return p.layout
}

func (p *bindGroupProvider) BindGroup() gpu.BindGroup {
	return p.frames.Current().group
}

func (p *bindGroupProvider) BindGroupAt(slot int) gpu.BindGroup {
	return p.frames.Slot(slot).group
}

func (p *bindGroupProvider) Buffer(binding int) gpu.Buffer {
	return p.frames.Current().buffers[binding]
}

func (p *bindGroupProvider) BufferAt(slot, binding int) gpu.Buffer {
	return p.frames.Slot(slot).buffers[binding]
}

func (p *bindGroupProvider) Slots() int {
	return p.frames.Len()
}

func (p *bindGroupProvider) Write(binding int, offset uint64, data []byte) {
	buf := p.Buffer(binding)
	if buf == nil {
		common.Logger().Warn("write to missing binding", "provider", p.label, "binding", binding)
		return
	}
	p.device.WriteBuffer(buf, offset, data)
}

func (p *bindGroupProvider) Release() {
	p.frames.Each(func(_ int, fb *frameBindings) {
		fb.group.Release()
		for binding, b := range fb.buffers {
			if !fb.borrowed[binding] {
				b.Release()
			}
		}
	})
	if p.ownsLayout {
		p.layout.Release()
	}
}
