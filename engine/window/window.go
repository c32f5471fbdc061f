package window

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides a GLFW window, its WebGPU surface descriptor and keyboard state.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyDownCallback(callback func(keyCode uint32))

	// KeyDown reports whether a key is currently held.
	//
	// Parameters:
	//   - keyCode: the key code, see common.Key*
	//
	// Returns:
	//   - bool: true while the key is pressed
	KeyDown(keyCode uint32) bool

	// SurfaceDescriptor returns a platform-appropriate wgpu.SurfaceDescriptor for the window,
	// or nil if it was closed.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true until the window is closed or Escape is pressed.
	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window is not open
	Close() error

	// ProcessMessages runs the message loop until the window closes, calling the update
	// callback each iteration. Must run on the thread that created the window.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu *sync.RWMutex

	title               string
	width, height       int
	minWidth, minHeight int
	resizable           bool

	// keys holds the pressed state of every key seen so far.
	keys     map[uint32]bool
	platform *glfwWindow

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. A GLFW initialisation or window creation failure is
// fatal.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		mu:        &sync.RWMutex{},
		title:     "oxy-csm",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
		resizable: true,
		keys:      make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		common.Fatalf("window: %v", err)
	}
	common.Logger().Info("window created", "title", w.title, "width", w.width, "height", w.height)
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) KeyDown(keyCode uint32) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.keys[keyCode]
}

// setKey records a key transition.
func (w *engineWindow) setKey(keyCode uint32, down bool) {
	w.mu.Lock()
	w.keys[keyCode] = down
	w.mu.Unlock()
}

// setSize stores the framebuffer size.
func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunning(w)
}

func (w *engineWindow) Close() error {
	return platformClose(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformPollEvents(w) {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.height
}
