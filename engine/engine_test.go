package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/Carmen-Shannon/oxy-csm/engine/shadow"
	"github.com/Carmen-Shannon/oxy-csm/engine/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDesc = shadow.CascadeDesc{Near: 5, Medium: 10, Far: 20, MaxResolution: 16}

type fakeSurface struct {
	onResize func(width, height int)
}

func (f *fakeSurface) ProcessMessages() {}

func (f *fakeSurface) SetResizeCallback(callback func(width, height int)) {
	f.onResize = callback
}

func newTestScene(name string, r renderer.Renderer, active bool) scene.Scene {
	return scene.NewScene(name, camera.NewCamera(), r,
		scene.WithActive(active),
		scene.WithCascadeDesc(testDesc),
		scene.WithComputeWorkers(1),
	)
}

func pipelines(batch []gpu.Command) []string {
	var out []string
	for _, c := range batch {
		if c.Op == gpu.OpSetPipeline {
			out = append(out, c.Target)
		}
	}
	return out
}

func TestNewEngine_RequiresRenderer(t *testing.T) {
	assert.PanicsWithValue(t, "engine: NewEngine requires a Renderer", func() {
		NewEngine()
	})
}

func TestEngine_FrameDrawsActiveScenesInOrder(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	callbacks := 0
	e := NewEngine(
		WithRenderer(r),
		WithScene(2, newTestScene("second", r, true)),
		WithScene(1, newTestScene("first", r, true)),
		WithScene(0, newTestScene("hidden", r, false)),
	)
	e.SetRenderCallback(func(float32) { callbacks++ })

	require.NoError(t, e.Frame(context.Background()))

	batches := dev.Submitted()
	require.Len(t, batches, 1)
	var lit []string
	for _, p := range pipelines(batches[0]) {
		if p == "first_lit" || p == "second_lit" || p == "hidden_lit" {
			lit = append(lit, p)
		}
	}
	assert.Equal(t, []string{"first_lit", "second_lit"}, lit)
	assert.Equal(t, 1, callbacks)
	assert.Equal(t, 1, dev.PresentedFrames())
	assert.Equal(t, uint64(1), r.FrameNumber())
}

func TestEngine_FrameDropsOnBeginFrameError(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	e := NewEngine(WithRenderer(r), WithProfiling(true), WithScene(0, newTestScene("main", r, true)))

	// Leave the backbuffer acquired so the next acquire fails.
	require.NoError(t, r.BeginFrame(context.Background()))
	r.EndFrame()

	err := e.Frame(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire backbuffer")
	assert.Len(t, dev.Submitted(), 1)
	assert.Equal(t, 1, e.(*engine).profiler.Dropped())
}

func TestEngine_FrameTicksTimer(t *testing.T) {
	now := time.Unix(0, 0)
	tm := timer.NewTimer(timer.WithClock(func() time.Time { return now }))
	r := renderer.NewRenderer(gpu.NewHeadlessDevice())
	e := NewEngine(WithRenderer(r), WithTimer(tm))

	now = now.Add(20 * time.Millisecond)
	require.NoError(t, e.Frame(context.Background()))
	assert.Same(t, tm, e.Timer())
	assert.Equal(t, uint64(1), tm.Frames())
	assert.InDelta(t, 0.02, tm.Delta(), 1e-6)
}

func TestEngine_ResizeUpdatesCameraAspect(t *testing.T) {
	r := renderer.NewRenderer(gpu.NewHeadlessDevice())
	surface := &fakeSurface{}
	s := newTestScene("main", r, true)
	e := NewEngine(WithRenderer(r), WithSurface(surface), WithScene(0, s))
	require.NotNil(t, surface.onResize)
	assert.Same(t, surface, e.Surface())

	surface.onResize(800, 400)
	assert.InDelta(t, 2.0, s.Camera().Aspect(), 1e-6)

	surface.onResize(0, 400)
	assert.InDelta(t, 2.0, s.Camera().Aspect(), 1e-6)
}

func TestEngine_RunHeadlessUntilQuit(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	r := renderer.NewRenderer(dev)
	e := NewEngine(WithRenderer(r), WithTickRate(200), WithRenderFrameLimit(500), WithScene(0, newTestScene("main", r, true)))

	var ticks atomic.Int32
	e.SetTickCallback(func(float32) { ticks.Add(1) })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() > 2 && r.FrameNumber() > 2 }, 2*time.Second, 5*time.Millisecond)
	e.SetTickRate(100)
	e.Quit()
	e.Quit()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestEngine_SceneRegistry(t *testing.T) {
	r := renderer.NewRenderer(gpu.NewHeadlessDevice())
	e := NewEngine(WithRenderer(r))
	s := newTestScene("main", r, true)

	e.AddScene(3, s)
	e.AddScene(4, nil)
	assert.Same(t, s, e.Scene(3))
	assert.Len(t, e.Scenes(), 1)

	e.RemoveScene(3)
	assert.Nil(t, e.Scene(3))
	assert.Empty(t, e.Scenes())
}
