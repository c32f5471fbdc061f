package bind_group_provider

import (
	"context"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uniformLayout = gpu.BindGroupLayoutDescriptor{
	Entries: []gpu.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gpu.ShaderStageVertex, Type: gpu.BindingTypeUniformBuffer, MinSize: 64},
	},
}

func TestNewBindGroupProvider_OneSlotPerFrame(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev, renderer.WithFrameCount(3))

	p := NewBindGroupProvider(r, "light", uniformLayout)
	assert.Equal(t, 3, p.Slots())
	assert.Equal(t, "light", p.Layout().Label())

	seen := map[string]bool{}
	for slot := range 3 {
		buf := p.BufferAt(slot, 0)
		require.NotNil(t, buf)
		assert.Equal(t, uint64(64), buf.Size())
		seen[buf.Label()] = true
		assert.Equal(t, p.Layout(), p.BindGroupAt(slot).Layout())
	}
	assert.Len(t, seen, 3)
}

func TestBindGroupProvider_WriteTargetsCurrentFrame(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev, renderer.WithFrameCount(2))
	p := NewBindGroupProvider(r, "model", uniformLayout)

	for frame := range 2 {
		require.NoError(t, r.BeginFrame(context.Background()))
		WriteBuffers([]BufferWrite{{Provider: p, Binding: 0, Offset: 4, Data: []byte{byte(frame + 1)}}})
		r.EndFrame()
		r.Present()
	}

	assert.Equal(t, byte(1), dev.BufferContents(p.BufferAt(0, 0))[4])
	assert.Equal(t, byte(2), dev.BufferContents(p.BufferAt(1, 0))[4])

	writes := dev.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "model_b0_f0", writes[0].Buffer)
	assert.Equal(t, "model_b0_f1", writes[1].Buffer)
}

func TestBindGroupProvider_StaticAndTextures(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev, renderer.WithFrameCount(3))
	tex := dev.CreateTexture(gpu.TextureDescriptor{Label: "src", Width: 4, Height: 4, Format: gpu.TextureFormatRG32Float})

	desc := gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Type: gpu.BindingTypeUniformBuffer, MinSize: 48},
			{Binding: 1, Type: gpu.BindingTypeUnfilterableTexture},
		},
	}
	p := NewBindGroupProvider(r, "blur", desc, WithStatic(), WithTextureView(1, tex.View()), WithBufferSize(0, 96))
	assert.Equal(t, 1, p.Slots())
	assert.Equal(t, uint64(96), p.Buffer(0).Size())
}

func TestBindGroupProvider_SharedLayoutNotReleased(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev, renderer.WithFrameCount(2))
	shared := dev.CreateBindGroupLayout(uniformLayout)
	before := dev.LiveResources()

	p := NewBindGroupProvider(r, "a", uniformLayout, WithLayout(shared))
	assert.Same(t, shared, p.Layout())
	assert.Equal(t, before+4, dev.LiveResources())

	p.Release()
	assert.Equal(t, before, dev.LiveResources())
}

func TestNewBindGroupProvider_MissingTexturePanics(t *testing.T) {
	r := renderer.NewRenderer(gpu.NewHeadlessDevice())
	desc := gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 1, Type: gpu.BindingTypeUnfilterableTexture}},
	}
	assert.PanicsWithValue(t, "bind_group_provider: tex binding 1 has no texture view", func() {
		NewBindGroupProvider(r, "tex", desc)
	})
}

func TestBindGroupProvider_BorrowedFrameBuffers(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev, renderer.WithFrameCount(2))
	ring := renderer.NewFrameRing(r, func(slot int) gpu.Buffer {
		return dev.CreateBuffer(gpu.BufferDescriptor{Label: "info", Size: 64, Usage: gpu.BufferUsageUniform})
	})
	before := dev.LiveResources()

	p := NewBindGroupProvider(r, "pass", uniformLayout, WithFrameBuffers(0, ring.Slot))
	for slot := range 2 {
		assert.Same(t, ring.Slot(slot), p.BufferAt(slot, 0))
	}
	// layout plus one group per slot, no new buffers
	assert.Equal(t, before+3, dev.LiveResources())

	p.Release()
	assert.Equal(t, before, dev.LiveResources())
}
