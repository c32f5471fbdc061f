package renderer

import (
	"context"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFrame(t *testing.T, r Renderer) {
	t.Helper()
	require.NoError(t, r.BeginFrame(context.Background()))
	r.EndFrame()
	r.Present()
}

func TestRenderer_FrameIndexCycles(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := NewRenderer(dev, WithFrameCount(3))

	var seen []int
	for range 7 {
		seen = append(seen, r.CurrentFrameIndex())
		runFrame(t, r)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, seen)
	assert.Equal(t, uint64(7), r.FrameNumber())
	assert.Equal(t, 7, dev.PresentedFrames())
}

func TestRenderer_BeginFrameWaitsForSlotFence(t *testing.T) {
	dev := gpu.NewHeadlessDevice(gpu.WithManualFence())
	r := NewRenderer(dev, WithFrameCount(2))

	runFrame(t, r) // slot 0, fence value 1
	runFrame(t, r) // slot 1, fence value 2

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.BeginFrame(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	dev.CompleteFence(1)
	require.NoError(t, r.BeginFrame(context.Background()))
	assert.Equal(t, 0, r.CurrentFrameIndex())
	r.EndFrame()
}

func TestRenderer_BeginFrameUnblocksWhenFenceCompletes(t *testing.T) {
	dev := gpu.NewHeadlessDevice(gpu.WithManualFence())
	r := NewRenderer(dev, WithFrameCount(1))
	runFrame(t, r)

	done := make(chan error, 1)
	go func() { done <- r.BeginFrame(context.Background()) }()

	select {
	case <-done:
		t.Fatal("BeginFrame returned before the slot fence completed")
	case <-time.After(10 * time.Millisecond):
	}
	dev.CompleteFence(1)
	require.NoError(t, <-done)
	r.EndFrame()
}

func TestRenderer_EndFrameClosesOpenPass(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := NewRenderer(dev)

	require.NoError(t, r.BeginFrame(context.Background()))
	fb := r.DefaultFramebuffer()
	require.NotNil(t, fb)
	assert.Equal(t, uint32(1280), fb.Width())

	cmd := r.CommandList(gpu.CommandListDirect)
	cmd.BeginRenderPass(r.DefaultRenderPass(), fb)
	r.EndFrame()

	batches := dev.Submitted()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	assert.Equal(t, gpu.OpBeginRenderPass, batches[0][0].Op)
	assert.Equal(t, gpu.OpEndRenderPass, batches[0][1].Op)
	assert.Nil(t, r.DefaultFramebuffer())
}

func TestRenderer_CommandListsResetEachFrame(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := NewRenderer(dev)

	for range 2 {
		require.NoError(t, r.BeginFrame(context.Background()))
		cmd := r.CommandList(gpu.CommandListDirect)
		cmd.BeginRenderPass(r.DefaultRenderPass(), r.DefaultFramebuffer())
		cmd.EndRenderPass()
		r.EndFrame()
		r.Present()
	}
	batches := dev.Submitted()
	require.Len(t, batches, 2)
	assert.Len(t, batches[1], 2)
	assert.Same(t, r.CommandList(gpu.CommandListDirect), r.CommandList(gpu.CommandListDirect))
}

func TestRenderer_BeginFrameTwice(t *testing.T) {
	r := NewRenderer(gpu.NewHeadlessDevice())
	require.NoError(t, r.BeginFrame(context.Background()))
	assert.Error(t, r.BeginFrame(context.Background()))
}

func TestRenderer_RegisterPipelinesCaches(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := NewRenderer(dev)

	s := shader.NewShader("shadow_depth", shader.ShadowDepthPath)
	p := pipeline.NewPipeline("shadow", pipeline.WithShader(s))
	require.NoError(t, r.RegisterPipelines(p, p))
	assert.Same(t, p, r.Pipeline("shadow"))
	assert.Len(t, r.Pipelines(), 1)
	assert.NotNil(t, p.RenderPipeline())

	assert.Error(t, r.RegisterPipelines(pipeline.NewPipeline("empty")))
}

func TestRenderer_Release(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := NewRenderer(dev)
	runFrame(t, r)
	r.Release()
	assert.Zero(t, dev.LiveResources())
}

func TestNewRenderer_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "renderer: nil device", func() { NewRenderer(nil) })
	assert.PanicsWithValue(t, "renderer: frame count must be at least 1, got 0", func() {
		NewRenderer(gpu.NewHeadlessDevice(), WithFrameCount(0))
	})
}

type fixedFrames struct {
	count, index int
}

func (f *fixedFrames) FrameCount() int        { return f.count }
func (f *fixedFrames) CurrentFrameIndex() int { return f.index }

func TestFrameRing(t *testing.T) {
	frames := &fixedFrames{count: 3}
	created := 0
	ring := NewFrameRing(frames, func(slot int) int {
		created++
		return slot * 10
	})

	assert.Equal(t, 3, created)
	assert.Equal(t, 3, ring.Len())
	for i := range 3 {
		frames.index = i
		assert.Equal(t, i*10, ring.Current())
		assert.Equal(t, i*10, ring.Slot(i))
	}

	var slots []int
	ring.Each(func(slot int, v int) { slots = append(slots, slot) })
	assert.Equal(t, []int{0, 1, 2}, slots)
}
