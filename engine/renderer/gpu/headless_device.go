package gpu

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// CommandOp identifies a recorded command.
type CommandOp int

const (
	OpBeginRenderPass CommandOp = iota
	OpEndRenderPass
	OpSetPipeline
	OpSetBindGroup
	OpSetVertexBuffer
	OpSetIndexBuffer
	OpDraw
	OpDrawIndexed
)

func (op CommandOp) String() string {
	switch op {
	case OpBeginRenderPass:
		return "BeginRenderPass"
	case OpEndRenderPass:
		return "EndRenderPass"
	case OpSetPipeline:
		return "SetPipeline"
	case OpSetBindGroup:
		return "SetBindGroup"
	case OpSetVertexBuffer:
		return "SetVertexBuffer"
	case OpSetIndexBuffer:
		return "SetIndexBuffer"
	case OpDraw:
		return "Draw"
	case OpDrawIndexed:
		return "DrawIndexed"
	}
	return fmt.Sprintf("CommandOp(%d)", int(op))
}

// Command is one entry of a headless command list.
// Target is the label of the resource the command refers to (framebuffer, pipeline, bind group
// or buffer); Index is the bind group or vertex slot; Count and Instances are draw sizes.
type Command struct {
	Op        CommandOp
	Target    string
	Index     uint32
	Count     uint32
	Instances uint32
}

// BufferWrite records one WriteBuffer call on a headless device.
type BufferWrite struct {
	Buffer string
	Offset uint64
	Size   int
}

// HeadlessOption configures a HeadlessDevice.
type HeadlessOption func(*HeadlessDevice)

// WithManualFence stops Submit from completing the fence. Tests then drive completion
// with CompleteFence to simulate frames still in flight.
func WithManualFence() HeadlessOption {
	return func(d *HeadlessDevice) {
		d.manualFence = true
	}
}

// WithBackbufferSize sets the size of the offscreen backbuffer. Default 1280x720.
func WithBackbufferSize(width, height uint32) HeadlessOption {
	return func(d *HeadlessDevice) {
		d.backbufferWidth, d.backbufferHeight = width, height
	}
}

// HeadlessDevice is a Device that validates and records commands in memory.
// Buffer contents are mirrored on the CPU so tests can inspect uploads.
type HeadlessDevice struct {
	mu *sync.Mutex

	manualFence      bool
	fence            *headlessFence
	submissions      uint64
	submitted        [][]Command
	writes           []BufferWrite
	live             map[string]Resource
	backbuffer       Texture
	backbufferWidth  uint32
	backbufferHeight uint32
	backbufferHeld   bool
	presentedFrames  int
}

var _ Device = &HeadlessDevice{}

// NewHeadlessDevice creates a device that never touches a GPU.
//
// Parameters:
//   - options: functional options to configure the device
//
// Returns:
//   - *HeadlessDevice: the device
func NewHeadlessDevice(options ...HeadlessOption) *HeadlessDevice {
	d := &HeadlessDevice{
		mu:               &sync.Mutex{},
		fence:            &headlessFence{},
		live:             make(map[string]Resource),
		backbufferWidth:  1280,
		backbufferHeight: 720,
	}
	for _, option := range options {
		option(d)
	}
	d.backbuffer = d.CreateTexture(TextureDescriptor{
		Label:  "headless_backbuffer",
		Width:  d.backbufferWidth,
		Height: d.backbufferHeight,
		Format: TextureFormatBGRA8UnormSrgb,
		Usage:  TextureUsageRenderAttachment,
	})
	return d
}

func (d *HeadlessDevice) API() API { return APIHeadless }

// track registers r so Release and LiveResources can see it.
func (d *HeadlessDevice) track(id string, r Resource) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live[id] = r
}

func (d *HeadlessDevice) untrack(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.live, id)
}

func (d *HeadlessDevice) newBase(label string) headlessResource {
	id := uuid.NewString()
	if label == "" {
		label = id
	}
	return headlessResource{id: id, label: label, device: d}
}

func (d *HeadlessDevice) CreateBuffer(desc BufferDescriptor) Buffer {
	if desc.Size == 0 {
		panic(fmt.Sprintf("gpu: buffer %q has zero size", desc.Label))
	}
	b := &headlessBuffer{headlessResource: d.newBase(desc.Label), desc: desc, data: make([]byte, desc.Size)}
	d.track(b.id, b)
	return b
}

func (d *HeadlessDevice) CreateTexture(desc TextureDescriptor) Texture {
	if desc.Width == 0 || desc.Height == 0 {
		panic(fmt.Sprintf("gpu: texture %q has zero size %dx%d", desc.Label, desc.Width, desc.Height))
	}
	t := &headlessTexture{headlessResource: d.newBase(desc.Label), desc: desc}
	d.track(t.id, t)
	return t
}

func (d *HeadlessDevice) CreateShaderModule(desc ShaderModuleDescriptor) ShaderModule {
	if desc.Source == "" {
		panic(fmt.Sprintf("gpu: shader module %q has no source", desc.Label))
	}
	m := &headlessShaderModule{headlessResource: d.newBase(desc.Label), source: desc.Source}
	d.track(m.id, m)
	return m
}

func (d *HeadlessDevice) CreateBindGroupLayout(desc BindGroupLayoutDescriptor) BindGroupLayout {
	l := &headlessBindGroupLayout{headlessResource: d.newBase(desc.Label), entries: desc.Entries}
	d.track(l.id, l)
	return l
}

func (d *HeadlessDevice) CreateBindGroup(desc BindGroupDescriptor) BindGroup {
	if desc.Layout == nil {
		panic(fmt.Sprintf("gpu: bind group %q has no layout", desc.Label))
	}
	layout := desc.Layout.Entries()
	if len(layout) != len(desc.Entries) {
		panic(fmt.Sprintf("gpu: bind group %q has %d entries, layout %q wants %d",
			desc.Label, len(desc.Entries), desc.Layout.Label(), len(layout)))
	}
	for i, e := range desc.Entries {
		want := layout[i]
		if e.Binding != want.Binding {
			panic(fmt.Sprintf("gpu: bind group %q entry %d binds slot %d, layout wants %d", desc.Label, i, e.Binding, want.Binding))
		}
		ok := false
		switch want.Type {
		case BindingTypeUniformBuffer:
			ok = e.Buffer != nil && e.Buffer.Size() >= want.MinSize
		case BindingTypeTexture, BindingTypeUnfilterableTexture:
			ok = e.Texture != nil
		}
		if !ok {
			panic(fmt.Sprintf("gpu: bind group %q slot %d does not match layout %q", desc.Label, e.Binding, desc.Layout.Label()))
		}
	}
	g := &headlessBindGroup{headlessResource: d.newBase(desc.Label), layout: desc.Layout}
	d.track(g.id, g)
	return g
}

func (d *HeadlessDevice) CreateRenderPipeline(desc RenderPipelineDescriptor) RenderPipeline {
	if desc.Module == nil {
		panic(fmt.Sprintf("gpu: pipeline %q has no shader module", desc.Label))
	}
	if desc.VertexEntry == "" {
		panic(fmt.Sprintf("gpu: pipeline %q has no vertex entry point", desc.Label))
	}
	p := &headlessPipeline{headlessResource: d.newBase(desc.Label), desc: desc}
	d.track(p.id, p)
	return p
}

func (d *HeadlessDevice) CreateRenderPass(desc RenderPassDescriptor) RenderPass {
	return NewRenderPass(desc)
}

func (d *HeadlessDevice) CreateFramebuffer(desc FramebufferDescriptor) Framebuffer {
	fb, err := NewFramebuffer(desc)
	if err != nil {
		panic(err.Error())
	}
	return fb
}

func (d *HeadlessDevice) WriteBuffer(b Buffer, offset uint64, data []byte) {
	hb, ok := b.(*headlessBuffer)
	if !ok {
		panic(fmt.Sprintf("gpu: WriteBuffer on foreign buffer %T", b))
	}
	if offset+uint64(len(data)) > hb.desc.Size {
		panic(fmt.Sprintf("gpu: write of %d bytes at %d overflows buffer %q (%d bytes)", len(data), offset, hb.label, hb.desc.Size))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(hb.data[offset:], data)
	d.writes = append(d.writes, BufferWrite{Buffer: hb.label, Offset: offset, Size: len(data)})
}

func (d *HeadlessDevice) CreateCommandList(t CommandListType) CommandList {
	return &headlessCommandList{listType: t}
}

func (d *HeadlessDevice) Submit(lists ...CommandList) uint64 {
	d.mu.Lock()
	var batch []Command
	for _, l := range lists {
		hl, ok := l.(*headlessCommandList)
		if !ok {
			d.mu.Unlock()
			panic(fmt.Sprintf("gpu: Submit of foreign command list %T", l))
		}
		if hl.open != nil {
			d.mu.Unlock()
			panic(fmt.Sprintf("gpu: Submit with render pass %q still open", hl.open.Label()))
		}
		batch = append(batch, hl.commands...)
	}
	d.submitted = append(d.submitted, batch)
	d.submissions++
	value := d.submissions
	manual := d.manualFence
	d.mu.Unlock()

	if !manual {
		d.fence.signal(value)
	}
	return value
}

func (d *HeadlessDevice) Fence() Fence { return d.fence }

func (d *HeadlessDevice) AcquireBackbuffer() (Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.backbufferHeld {
		return nil, fmt.Errorf("gpu: backbuffer already acquired")
	}
	d.backbufferHeld = true
	return d.backbuffer, nil
}

func (d *HeadlessDevice) BackbufferFormat() TextureFormat { return TextureFormatBGRA8UnormSrgb }

func (d *HeadlessDevice) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.backbufferHeld {
		return
	}
	d.backbufferHeld = false
	d.presentedFrames++
}

func (d *HeadlessDevice) Release() {
	d.mu.Lock()
	live := make([]Resource, 0, len(d.live))
	for _, r := range d.live {
		live = append(live, r)
	}
	d.mu.Unlock()
	for _, r := range live {
		r.Release()
	}
}

// CompleteFence marks every submission up to value as finished on the simulated GPU.
func (d *HeadlessDevice) CompleteFence(value uint64) {
	d.fence.signal(value)
}

// Submitted returns a copy of the command batches passed to Submit, one slice per call.
func (d *HeadlessDevice) Submitted() [][]Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]Command, len(d.submitted))
	for i, b := range d.submitted {
		out[i] = append([]Command(nil), b...)
	}
	return out
}

// Writes returns the WriteBuffer calls made so far, in order.
func (d *HeadlessDevice) Writes() []BufferWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]BufferWrite(nil), d.writes...)
}

// BufferContents returns a copy of the CPU mirror of a headless buffer.
func (d *HeadlessDevice) BufferContents(b Buffer) []byte {
	hb := b.(*headlessBuffer)
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), hb.data...)
}

// LiveResources returns the number of created resources not yet released.
func (d *HeadlessDevice) LiveResources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// PresentedFrames returns how many times an acquired backbuffer was presented.
func (d *HeadlessDevice) PresentedFrames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presentedFrames
}

// PipelineDescriptor returns the descriptor a headless pipeline was created with.
func PipelineDescriptor(p RenderPipeline) (RenderPipelineDescriptor, bool) {
	hp, ok := p.(*headlessPipeline)
	if !ok {
		return RenderPipelineDescriptor{}, false
	}
	return hp.desc, true
}

type headlessResource struct {
	id       string
	label    string
	device   *HeadlessDevice
	released bool
}

func (r *headlessResource) Label() string { return r.label }

func (r *headlessResource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.device.untrack(r.id)
}

type headlessBuffer struct {
	headlessResource
	desc BufferDescriptor
	data []byte
}

func (b *headlessBuffer) Size() uint64       { return b.desc.Size }
func (b *headlessBuffer) Usage() BufferUsage { return b.desc.Usage }

type headlessTexture struct {
	headlessResource
	desc TextureDescriptor
}

func (t *headlessTexture) Width() uint32         { return t.desc.Width }
func (t *headlessTexture) Height() uint32        { return t.desc.Height }
func (t *headlessTexture) Format() TextureFormat { return t.desc.Format }
func (t *headlessTexture) View() TextureView     { return headlessView{t} }

type headlessView struct {
	t *headlessTexture
}

func (v headlessView) Label() string    { return v.t.label }
func (v headlessView) Texture() Texture { return v.t }

type headlessShaderModule struct {
	headlessResource
	source string
}

type headlessBindGroupLayout struct {
	headlessResource
	entries []BindGroupLayoutEntry
}

func (l *headlessBindGroupLayout) Entries() []BindGroupLayoutEntry { return l.entries }

type headlessBindGroup struct {
	headlessResource
	layout BindGroupLayout
}

func (g *headlessBindGroup) Layout() BindGroupLayout { return g.layout }

type headlessPipeline struct {
	headlessResource
	desc RenderPipelineDescriptor
}

type headlessCommandList struct {
	listType CommandListType
	commands []Command
	open     Framebuffer
	pipeline bool
}

func (c *headlessCommandList) Type() CommandListType { return c.listType }

func (c *headlessCommandList) Reset() {
	c.commands = c.commands[:0]
	c.open = nil
	c.pipeline = false
}

func (c *headlessCommandList) BeginRenderPass(pass RenderPass, fb Framebuffer) {
	if c.listType != CommandListDirect {
		panic(fmt.Sprintf("gpu: render pass recorded on a %s command list", c.listType))
	}
	if c.open != nil {
		panic(fmt.Sprintf("gpu: BeginRenderPass %q while %q is open", fb.Label(), c.open.Label()))
	}
	c.open = fb
	c.pipeline = false
	c.commands = append(c.commands, Command{Op: OpBeginRenderPass, Target: fb.Label()})
}

func (c *headlessCommandList) EndRenderPass() {
	if c.open == nil {
		panic("gpu: EndRenderPass without an open render pass")
	}
	c.commands = append(c.commands, Command{Op: OpEndRenderPass, Target: c.open.Label()})
	c.open = nil
}

func (c *headlessCommandList) InRenderPass() bool { return c.open != nil }

func (c *headlessCommandList) requirePass(op CommandOp) {
	if c.open == nil {
		panic(fmt.Sprintf("gpu: %s outside of a render pass", op))
	}
}

func (c *headlessCommandList) SetPipeline(p RenderPipeline) {
	c.requirePass(OpSetPipeline)
	c.pipeline = true
	c.commands = append(c.commands, Command{Op: OpSetPipeline, Target: p.Label()})
}

func (c *headlessCommandList) SetBindGroup(index uint32, bg BindGroup) {
	c.requirePass(OpSetBindGroup)
	c.commands = append(c.commands, Command{Op: OpSetBindGroup, Target: bg.Label(), Index: index})
}

func (c *headlessCommandList) SetVertexBuffer(slot uint32, b Buffer) {
	c.requirePass(OpSetVertexBuffer)
	c.commands = append(c.commands, Command{Op: OpSetVertexBuffer, Target: b.Label(), Index: slot})
}

func (c *headlessCommandList) SetIndexBuffer(b Buffer, _ IndexFormat) {
	c.requirePass(OpSetIndexBuffer)
	c.commands = append(c.commands, Command{Op: OpSetIndexBuffer, Target: b.Label()})
}

func (c *headlessCommandList) Draw(vertexCount, instanceCount uint32) {
	c.requireDraw(OpDraw)
	c.commands = append(c.commands, Command{Op: OpDraw, Count: vertexCount, Instances: instanceCount})
}

func (c *headlessCommandList) DrawIndexed(indexCount, instanceCount uint32) {
	c.requireDraw(OpDrawIndexed)
	c.commands = append(c.commands, Command{Op: OpDrawIndexed, Count: indexCount, Instances: instanceCount})
}

func (c *headlessCommandList) requireDraw(op CommandOp) {
	c.requirePass(op)
	if !c.pipeline {
		panic(fmt.Sprintf("gpu: %s without a pipeline", op))
	}
}

// headlessFence completes waiters once the signalled value reaches theirs.
type headlessFence struct {
	mu        sync.Mutex
	completed uint64
	waiters   []fenceWaiter
}

type fenceWaiter struct {
	value uint64
	done  chan struct{}
}

func (f *headlessFence) Completed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

func (f *headlessFence) Wait(ctx context.Context, value uint64) error {
	f.mu.Lock()
	if f.completed >= value {
		f.mu.Unlock()
		return nil
	}
	w := fenceWaiter{value: value, done: make(chan struct{})}
	f.waiters = append(f.waiters, w)
	f.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *headlessFence) signal(value uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if value > f.completed {
		f.completed = value
	}
	remaining := f.waiters[:0]
	for _, w := range f.waiters {
		if f.completed >= w.value {
			close(w.done)
		} else {
			remaining = append(remaining, w)
		}
	}
	f.waiters = remaining
}
