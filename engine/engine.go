package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/Carmen-Shannon/oxy-csm/engine/timer"
)

// Surface is the part of a window the engine drives. window.Window satisfies it.
type Surface interface {
	// ProcessMessages runs the platform message loop until the surface closes.
	ProcessMessages()

	// SetResizeCallback sets the function called when the surface is resized.
	SetResizeCallback(callback func(width, height int))
}

// engine implements the Engine interface.
// Coordinates the tick goroutine, the render goroutine and the surface message loop.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	surface  Surface
	renderer renderer.Renderer
	timer    timer.Timer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It owns the frame loop: every frame it ticks the timer, updates and draws the active scenes
// in ascending z-index order between BeginFrame and EndFrame, and presents.
type Engine interface {
	// Surface returns the window the engine drives, or nil when headless.
	Surface() Surface

	// Renderer returns the renderer shared by every scene.
	Renderer() renderer.Renderer

	// Timer returns the frame timer.
	Timer() timer.Timer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for input processing and game logic.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each rendered frame, after the scenes
	// were drawn and before EndFrame.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key. The scene must use the engine's
	// renderer.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// Frame renders one frame synchronously. A BeginFrame failure drops the frame and is
	// returned; nothing is recorded for it.
	//
	// Parameters:
	//   - ctx: cancels the frame fence wait
	//
	// Returns:
	//   - error: the BeginFrame error of a dropped frame
	Frame(ctx context.Context) error

	// Run starts the tick and render goroutines and blocks until the surface closes, or until
	// Quit when headless.
	Run()

	// Quit signals all engine goroutines to stop. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine. A renderer is required; NewEngine panics without one.
//
// Parameters:
//   - options: functional options for engine configuration (renderer, surface, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.RWMutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.renderer == nil {
		common.Fatalf("engine: NewEngine requires a Renderer")
	}
	if e.timer == nil {
		e.timer = timer.NewTimer()
	}

	if e.surface != nil {
		e.surface.SetResizeCallback(e.resize)
	}
	return e
}

// resize keeps perspective cameras' aspect ratio in step with the surface.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	aspect := float32(width) / float32(height)
	for _, s := range e.Scenes() {
		c := s.Camera()
		if c == nil || c.Orthographic() {
			continue
		}
		c.SetLens(c.Fov(), aspect, c.Near(), c.Far())
	}
	common.Logger().Debug("surface resized", "width", width, "height", height)
}

func (e *engine) Surface() Surface {
	return e.surface
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Timer() timer.Timer {
	return e.timer
}

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	e.handle()
	if e.surface != nil {
		e.surface.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// handle launches the engine and render goroutines, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// A panic inside a frame is logged and stops the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-e.quitChannel
		cancel()
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		start := time.Now()
		if err := e.Frame(ctx); err != nil && ctx.Err() == nil {
			common.Logger().Warn("frame dropped", "err", err)
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) Frame(ctx context.Context) error {
	e.timer.Tick()
	dt := e.timer.Delta()
	scenes := e.activeScenes()

	// Transforms settle before anything is recorded so every pass of the frame sees the same
	// world matrices.
	for _, s := range scenes {
		s.Update(e.timer)
	}

	if err := e.renderer.BeginFrame(ctx); err != nil {
		if e.profilingEnabled {
			e.profiler.Drop()
		}
		return err
	}
	for _, s := range scenes {
		s.Draw(e.timer)
	}
	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	e.renderer.EndFrame()
	e.renderer.Present()

	if e.profilingEnabled {
		e.profiler.Tick()
	}
	return nil
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.RLock()
	running := e.running
	e.mu.RUnlock()
	if !running {
		e.engineTickRate = newRate
		return
	}

	// Replace any pending update so the latest rate wins.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if s == nil {
		common.Logger().Warn("ignoring nil scene", "key", key)
		return
	}
	if s.Renderer() != e.renderer {
		common.Logger().Warn("scene renders with a different renderer", "scene", s.Name())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
