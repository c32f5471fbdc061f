package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// newPlatformWindow creates the GLFW window with input callbacks. The calling goroutine is locked
// to its OS thread, as GLFW requires.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize GLFW: %w", err)
	}

	// The surface is driven by WebGPU, so no OpenGL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if w.resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)

	gw := &glfwWindow{window: win, running: true}
	w.platform = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		code := uint32(key)
		switch action {
		case glfw.Press, glfw.Repeat:
			w.setKey(code, true)
			if w.onKeyDown != nil {
				w.onKeyDown(code)
			}
		case glfw.Release:
			w.setKey(code, false)
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	// Framebuffer size, not window size: they differ on high-DPI displays and the surface
	// needs pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			common.Logger().Debug("window minimized")
			return
		}
		w.setSize(width, height)
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	w.setSize(win.GetFramebufferSize())
	return nil
}

// platformSurfaceDescriptor creates the surface descriptor through the wgpuglfw bridge, which
// covers Windows, X11, Wayland and macOS.
func platformSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(w.platform.window)
}

func platformIsRunning(w *engineWindow) bool {
	if w.platform == nil {
		return false
	}
	return w.platform.running && !w.platform.window.ShouldClose()
}

func platformClose(w *engineWindow) error {
	if w.platform == nil {
		return fmt.Errorf("window: not open")
	}
	w.platform.running = false
	w.platform.window.Destroy()
	w.platform = nil
	glfw.Terminate()
	return nil
}

// platformPollEvents processes pending events without blocking.
func platformPollEvents(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunning(w)
}
