package backend

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	desc     gpu.BufferDescriptor
	buffer   *wgpu.Buffer
	released bool
}

func (b *wgpuBuffer) Label() string          { return b.desc.Label }
func (b *wgpuBuffer) Size() uint64           { return b.desc.Size }
func (b *wgpuBuffer) Usage() gpu.BufferUsage { return b.desc.Usage }

func (b *wgpuBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.buffer.Release()
}

type wgpuTexture struct {
	desc    gpu.TextureDescriptor
	texture *wgpu.Texture
	view    *wgpu.TextureView
	// borrowed textures belong to the swapchain and are released by Present.
	borrowed bool
	released bool
}

func (t *wgpuTexture) Label() string             { return t.desc.Label }
func (t *wgpuTexture) Width() uint32             { return t.desc.Width }
func (t *wgpuTexture) Height() uint32            { return t.desc.Height }
func (t *wgpuTexture) Format() gpu.TextureFormat { return t.desc.Format }
func (t *wgpuTexture) View() gpu.TextureView     { return wgpuView{t} }

func (t *wgpuTexture) Release() {
	if t.released || t.borrowed {
		return
	}
	t.released = true
	t.view.Release()
	t.texture.Release()
}

type wgpuView struct {
	t *wgpuTexture
}

func (v wgpuView) Label() string         { return v.t.desc.Label }
func (v wgpuView) Texture() gpu.Texture { return v.t }

type wgpuShaderModule struct {
	label    string
	module   *wgpu.ShaderModule
	released bool
}

func (m *wgpuShaderModule) Label() string { return m.label }

func (m *wgpuShaderModule) Release() {
	if m.released {
		return
	}
	m.released = true
	m.module.Release()
}

type wgpuBindGroupLayout struct {
	desc     gpu.BindGroupLayoutDescriptor
	layout   *wgpu.BindGroupLayout
	released bool
}

func (l *wgpuBindGroupLayout) Label() string                       { return l.desc.Label }
func (l *wgpuBindGroupLayout) Entries() []gpu.BindGroupLayoutEntry { return l.desc.Entries }

func (l *wgpuBindGroupLayout) Release() {
	if l.released {
		return
	}
	l.released = true
	l.layout.Release()
}

type wgpuBindGroup struct {
	label    string
	layout   *wgpuBindGroupLayout
	group    *wgpu.BindGroup
	released bool
}

func (g *wgpuBindGroup) Label() string               { return g.label }
func (g *wgpuBindGroup) Layout() gpu.BindGroupLayout { return g.layout }

func (g *wgpuBindGroup) Release() {
	if g.released {
		return
	}
	g.released = true
	g.group.Release()
}

type wgpuPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
	layout   *wgpu.PipelineLayout
	released bool
}

func (p *wgpuPipeline) Label() string { return p.label }

func (p *wgpuPipeline) Release() {
	if p.released {
		return
	}
	p.released = true
	p.pipeline.Release()
	p.layout.Release()
}

// replayState is the encoder state threaded through recorded commands during Submit.
type replayState struct {
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
}

// wgpuCommandList records commands as closures. wgpu encoders are single use, so the
// closures are replayed into a fresh encoder on every Submit.
type wgpuCommandList struct {
	listType gpu.CommandListType
	ops      []func(*replayState)
	open     bool
}

func (c *wgpuCommandList) Type() gpu.CommandListType { return c.listType }

func (c *wgpuCommandList) Reset() {
	c.ops = c.ops[:0]
	c.open = false
}

func (c *wgpuCommandList) BeginRenderPass(pass gpu.RenderPass, fb gpu.Framebuffer) {
	desc := pass.Descriptor()
	colorLoad := toLoadOp(desc.ColorLoadOp)
	depthLoad := toLoadOp(desc.DepthLoadOp)

	colors := make([]wgpu.RenderPassColorAttachment, len(fb.ColorTargets()))
	for i, t := range fb.ColorTargets() {
		colors[i] = wgpu.RenderPassColorAttachment{
			View:    t.(*wgpuTexture).view,
			LoadOp:  colorLoad,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: desc.ClearColor.R,
				G: desc.ClearColor.G,
				B: desc.ClearColor.B,
				A: desc.ClearColor.A,
			},
		}
	}
	var depth *wgpu.RenderPassDepthStencilAttachment
	if fb.DepthTarget() != nil {
		depth = &wgpu.RenderPassDepthStencilAttachment{
			View:            fb.DepthTarget().(*wgpuTexture).view,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: desc.ClearDepth,
		}
	}
	label := desc.Label
	c.open = true
	c.ops = append(c.ops, func(s *replayState) {
		s.pass = s.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			Label:                  label,
			ColorAttachments:       colors,
			DepthStencilAttachment: depth,
		})
	})
}

func (c *wgpuCommandList) EndRenderPass() {
	c.open = false
	c.ops = append(c.ops, func(s *replayState) {
		if s.pass == nil {
			return
		}
		s.pass.End()
		s.pass.Release()
		s.pass = nil
	})
}

func (c *wgpuCommandList) InRenderPass() bool { return c.open }

func (c *wgpuCommandList) SetPipeline(p gpu.RenderPipeline) {
	pipeline := p.(*wgpuPipeline).pipeline
	c.ops = append(c.ops, func(s *replayState) {
		s.pass.SetPipeline(pipeline)
	})
}

func (c *wgpuCommandList) SetBindGroup(index uint32, bg gpu.BindGroup) {
	group := bg.(*wgpuBindGroup).group
	c.ops = append(c.ops, func(s *replayState) {
		s.pass.SetBindGroup(index, group, nil)
	})
}

func (c *wgpuCommandList) SetVertexBuffer(slot uint32, b gpu.Buffer) {
	buf := b.(*wgpuBuffer).buffer
	c.ops = append(c.ops, func(s *replayState) {
		s.pass.SetVertexBuffer(slot, buf, 0, wgpu.WholeSize)
	})
}

func (c *wgpuCommandList) SetIndexBuffer(b gpu.Buffer, format gpu.IndexFormat) {
	buf := b.(*wgpuBuffer).buffer
	f := wgpu.IndexFormatUint32
	if format == gpu.IndexFormatUint16 {
		f = wgpu.IndexFormatUint16
	}
	c.ops = append(c.ops, func(s *replayState) {
		s.pass.SetIndexBuffer(buf, f, 0, wgpu.WholeSize)
	})
}

func (c *wgpuCommandList) Draw(vertexCount, instanceCount uint32) {
	c.ops = append(c.ops, func(s *replayState) {
		s.pass.Draw(vertexCount, instanceCount, 0, 0)
	})
}

func (c *wgpuCommandList) DrawIndexed(indexCount, instanceCount uint32) {
	c.ops = append(c.ops, func(s *replayState) {
		s.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
	})
}

func toLoadOp(op gpu.LoadOp) wgpu.LoadOp {
	if op == gpu.LoadOpLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func toBufferUsage(u gpu.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gpu.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gpu.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&gpu.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&gpu.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&gpu.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&gpu.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	return out
}

func toTextureUsage(u gpu.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gpu.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	if u&gpu.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gpu.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gpu.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	return out
}

func toShaderStage(s gpu.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gpu.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gpu.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

func toVertexFormat(f gpu.VertexFormat) wgpu.VertexFormat {
	switch f {
	case gpu.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case gpu.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4
	}
	return wgpu.VertexFormatFloat32x3
}

func toCompareFunction(f gpu.CompareFunction) wgpu.CompareFunction {
	switch f {
	case gpu.CompareFunctionLessEqual:
		return wgpu.CompareFunctionLessEqual
	case gpu.CompareFunctionAlways:
		return wgpu.CompareFunctionAlways
	}
	return wgpu.CompareFunctionLess
}

func toCullMode(m gpu.CullMode) wgpu.CullMode {
	switch m {
	case gpu.CullModeFront:
		return wgpu.CullModeFront
	case gpu.CullModeBack:
		return wgpu.CullModeBack
	}
	return wgpu.CullModeNone
}

func toFrontFace(f gpu.FrontFace) wgpu.FrontFace {
	if f == gpu.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}
