package backend

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuDevice implements gpu.Device on top of wgpu-native, with the instance restricted to a
// single native backend (DirectX12 or Vulkan).
type wgpuDevice struct {
	mu  *sync.Mutex
	api gpu.API

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	width, height uint32

	// offscreen stands in for the swapchain when no surface was supplied.
	offscreen *wgpuTexture
	// frameTexture is the swapchain image acquired for the current frame, if any.
	frameTexture *wgpuTexture

	fence *wgpuFence
}

var _ gpu.Device = &wgpuDevice{}

func newWGPUDevice(api gpu.API, backends wgpu.InstanceBackend, want wgpu.BackendType, cfg *backendConfig) *wgpuDevice {
	runtime.LockOSThread()

	d := &wgpuDevice{
		mu:     &sync.Mutex{},
		api:    api,
		width:  cfg.width,
		height: cfg.height,
		instance: wgpu.CreateInstance(&wgpu.InstanceDescriptor{
			Backends: backends,
		}),
	}
	if cfg.surfaceDescriptor != nil {
		d.surface = d.instance.CreateSurface(cfg.surfaceDescriptor)
	}

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
		PowerPreference:      wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		common.Fatalf("backend: no %s adapter available: %v", api, err)
	}
	if info := a.GetInfo(); info.BackendType != want {
		common.Fatalf("backend: requested %s but adapter runs on backend %d", api, info.BackendType)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		common.Fatalf("backend: %s device creation failed: %v", api, err)
	}
	d.device = dev
	d.queue = dev.GetQueue()
	d.fence = &wgpuFence{device: dev}

	if d.surface != nil {
		d.configureSurface(cfg.presentMode)
	} else {
		d.surfaceFormat = wgpu.TextureFormatBGRA8UnormSrgb
		d.offscreen = d.CreateTexture(gpu.TextureDescriptor{
			Label:  "offscreen_backbuffer",
			Width:  d.width,
			Height: d.height,
			Format: gpu.TextureFormatBGRA8UnormSrgb,
			Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageCopySrc,
		}).(*wgpuTexture)
	}
	return d
}

func (d *wgpuDevice) configureSurface(mode PresentMode) {
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	presentMode := wgpu.PresentModeFifo
	if mode == PresentModeUncapped {
		presentMode = wgpu.PresentModeImmediate
	}
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       d.width,
		Height:      d.height,
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (d *wgpuDevice) API() gpu.API { return d.api }

func (d *wgpuDevice) CreateBuffer(desc gpu.BufferDescriptor) gpu.Buffer {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toBufferUsage(desc.Usage),
	})
	if err != nil {
		common.Fatalf("backend: create buffer %q: %v", desc.Label, err)
	}
	return &wgpuBuffer{desc: desc, buffer: buf}
}

func (d *wgpuDevice) CreateTexture(desc gpu.TextureDescriptor) gpu.Texture {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        d.toTextureFormat(desc.Format),
		Usage:         toTextureUsage(desc.Usage),
	})
	if err != nil {
		common.Fatalf("backend: create texture %q: %v", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		common.Fatalf("backend: create view for %q: %v", desc.Label, err)
	}
	return &wgpuTexture{desc: desc, texture: tex, view: view}
}

func (d *wgpuDevice) CreateShaderModule(desc gpu.ShaderModuleDescriptor) gpu.ShaderModule {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		common.Fatalf("backend: compile shader %q: %v", desc.Label, err)
	}
	return &wgpuShaderModule{label: desc.Label, module: m}
}

func (d *wgpuDevice) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) gpu.BindGroupLayout {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: toShaderStage(e.Visibility),
		}
		switch e.Type {
		case gpu.BindingTypeUniformBuffer:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: e.MinSize,
			}
		case gpu.BindingTypeTexture:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case gpu.BindingTypeUnfilterableTexture:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		}
		entries[i] = entry
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		common.Fatalf("backend: create bind group layout %q: %v", desc.Label, err)
	}
	return &wgpuBindGroupLayout{desc: desc, layout: l}
}

func (d *wgpuDevice) CreateBindGroup(desc gpu.BindGroupDescriptor) gpu.BindGroup {
	layout := desc.Layout.(*wgpuBindGroupLayout)
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			entry.Buffer = e.Buffer.(*wgpuBuffer).buffer
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case e.Texture != nil:
			entry.TextureView = e.Texture.(wgpuView).t.view
		}
		entries[i] = entry
	}
	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		common.Fatalf("backend: create bind group %q: %v", desc.Label, err)
	}
	return &wgpuBindGroup{label: desc.Label, layout: layout, group: bg}
}

func (d *wgpuDevice) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) gpu.RenderPipeline {
	layouts := make([]*wgpu.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, l := range desc.BindGroupLayouts {
		layouts[i] = l.(*wgpuBindGroupLayout).layout
	}
	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		common.Fatalf("backend: create pipeline layout %q: %v", desc.Label, err)
	}

	vertexLayouts := make([]wgpu.VertexBufferLayout, len(desc.VertexBuffers))
	for i, vb := range desc.VertexBuffers {
		attrs := make([]wgpu.VertexAttribute, len(vb.Attributes))
		for j, a := range vb.Attributes {
			attrs[j] = wgpu.VertexAttribute{
				Format:         toVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			}
		}
		vertexLayouts[i] = wgpu.VertexBufferLayout{
			ArrayStride: vb.Stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}
	}

	module := desc.Module.(*wgpuShaderModule).module
	var fragment *wgpu.FragmentState
	if desc.FragmentEntry != "" {
		targets := make([]wgpu.ColorTargetState, len(desc.ColorFormats))
		for i, f := range desc.ColorFormats {
			targets[i] = wgpu.ColorTargetState{
				Format:    d.toTextureFormat(f),
				WriteMask: wgpu.ColorWriteMaskAll,
			}
			if desc.Blend == gpu.BlendModeAlpha {
				targets[i].Blend = &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
				}
			}
		}
		fragment = &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets:    targets,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if desc.DepthFormat != gpu.TextureFormatUndefined {
		compare := toCompareFunction(desc.DepthCompare)
		if !desc.DepthTestEnabled {
			compare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              d.toTextureFormat(desc.DepthFormat),
			DepthWriteEnabled:   desc.DepthWriteEnabled,
			DepthCompare:        compare,
			DepthBias:           desc.DepthBias,
			DepthBiasSlopeScale: desc.DepthBiasSlopeScale,
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
			Buffers:    vertexLayouts,
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: toFrontFace(desc.FrontFace),
			CullMode:  toCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		common.Fatalf("backend: create render pipeline %q: %v", desc.Label, err)
	}
	return &wgpuPipeline{label: desc.Label, pipeline: p, layout: pipelineLayout}
}

func (d *wgpuDevice) CreateRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderPass {
	return gpu.NewRenderPass(desc)
}

func (d *wgpuDevice) CreateFramebuffer(desc gpu.FramebufferDescriptor) gpu.Framebuffer {
	fb, err := gpu.NewFramebuffer(desc)
	if err != nil {
		common.Fatalf("backend: %v", err)
	}
	return fb
}

func (d *wgpuDevice) WriteBuffer(b gpu.Buffer, offset uint64, data []byte) {
	d.queue.WriteBuffer(b.(*wgpuBuffer).buffer, offset, data)
}

func (d *wgpuDevice) CreateCommandList(t gpu.CommandListType) gpu.CommandList {
	return &wgpuCommandList{listType: t}
}

// Submit replays the recorded commands of every list into one encoder and submits it.
func (d *wgpuDevice) Submit(lists ...gpu.CommandList) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		common.Logger().Error("command encoder creation failed", "api", d.api.String(), "err", err)
		return d.fence.submitted
	}
	defer encoder.Release()

	state := &replayState{encoder: encoder}
	for _, l := range lists {
		wl := l.(*wgpuCommandList)
		for _, op := range wl.ops {
			op(state)
		}
	}
	if state.pass != nil {
		state.pass.End()
		state.pass.Release()
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		common.Logger().Error("command encoder finish failed", "api", d.api.String(), "err", err)
		return d.fence.submitted
	}
	d.queue.Submit(cmd)
	cmd.Release()

	d.fence.submitted++
	return d.fence.submitted
}

func (d *wgpuDevice) Fence() gpu.Fence { return d.fence }

func (d *wgpuDevice) AcquireBackbuffer() (gpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.surface == nil {
		return d.offscreen, nil
	}
	if d.frameTexture != nil {
		return nil, fmt.Errorf("backend: previous frame surface not yet presented")
	}
	tex, err := d.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	d.frameTexture = &wgpuTexture{
		desc: gpu.TextureDescriptor{
			Label:  "swapchain",
			Width:  d.width,
			Height: d.height,
			Format: gpu.TextureFormatBGRA8UnormSrgb,
			Usage:  gpu.TextureUsageRenderAttachment,
		},
		texture:  tex,
		view:     view,
		borrowed: true,
	}
	return d.frameTexture, nil
}

func (d *wgpuDevice) BackbufferFormat() gpu.TextureFormat { return gpu.TextureFormatBGRA8UnormSrgb }

func (d *wgpuDevice) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.surface == nil || d.frameTexture == nil {
		return
	}
	d.surface.Present()
	d.frameTexture.view.Release()
	d.frameTexture.texture.Release()
	d.frameTexture = nil
}

func (d *wgpuDevice) Release() {
	d.device.Poll(true, nil)
	if d.offscreen != nil {
		d.offscreen.Release()
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	if d.surface != nil {
		d.surface.Release()
	}
	d.instance.Release()
}

// toTextureFormat maps a neutral format to wgpu. The swapchain format is whatever the surface
// reported, so BGRA8UnormSrgb resolves to it.
func (d *wgpuDevice) toTextureFormat(f gpu.TextureFormat) wgpu.TextureFormat {
	switch f {
	case gpu.TextureFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case gpu.TextureFormatBGRA8UnormSrgb:
		if d.surfaceFormat != wgpu.TextureFormatUndefined {
			return d.surfaceFormat
		}
		return wgpu.TextureFormatBGRA8UnormSrgb
	case gpu.TextureFormatRG32Float:
		return wgpu.TextureFormatRG32Float
	case gpu.TextureFormatRGBA16Float:
		return wgpu.TextureFormatRGBA16Float
	case gpu.TextureFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	}
	return wgpu.TextureFormatUndefined
}

// wgpuFence treats a blocking device poll as the completion of every prior submission.
type wgpuFence struct {
	device    *wgpu.Device
	submitted uint64
	completed uint64
}

func (f *wgpuFence) Completed() uint64 { return f.completed }

func (f *wgpuFence) Wait(ctx context.Context, value uint64) error {
	if f.completed >= value {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.device.Poll(true, nil)
	f.completed = f.submitted
	return nil
}
