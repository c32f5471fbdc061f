package main

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// keyState reports held keys. window.Window satisfies it.
type keyState interface {
	KeyDown(keyCode uint32) bool
}

// demoInput maps keys to the orbit camera and the light. onKey runs on the window's event
// thread and tick runs on the engine's tick goroutine, so shared state is atomic.
type demoInput struct {
	keys       keyState
	ctrl       camera.CameraController
	sun        light.Light
	orbitSpeed float32
	orbiting   atomic.Bool
}

func newDemoInput(keys keyState, ctrl camera.CameraController, sun light.Light, orbitSpeed float32) *demoInput {
	in := &demoInput{keys: keys, ctrl: ctrl, sun: sun, orbitSpeed: orbitSpeed}
	in.orbiting.Store(true)
	return in
}

// onKey handles key press events.
func (in *demoInput) onKey(keyCode uint32) {
	switch keyCode {
	case common.KeySpace:
		// toggle with CAS so racing presses both count
		for {
			old := in.orbiting.Load()
			if in.orbiting.CompareAndSwap(old, !old) {
				return
			}
		}
	case common.KeyL:
		in.sun.SetEnabled(!in.sun.Enabled())
	}
}

// tick applies held keys and advances the light orbit by dt seconds.
func (in *demoInput) tick(dt float32) {
	switch {
	case in.keys.KeyDown(common.KeyA):
		in.ctrl.OrbitLeft()
	case in.keys.KeyDown(common.KeyD):
		in.ctrl.OrbitRight()
	}
	switch {
	case in.keys.KeyDown(common.KeyW):
		in.ctrl.OrbitUp()
	case in.keys.KeyDown(common.KeyS):
		in.ctrl.OrbitDown()
	}
	switch {
	case in.keys.KeyDown(common.KeyQ):
		in.ctrl.Zoom(0.2)
	case in.keys.KeyDown(common.KeyE):
		in.ctrl.Zoom(-0.2)
	}
	if in.orbiting.Load() && in.sun.Enabled() {
		in.sun.Rotate(mgl32.Vec3{0, 1, 0}, in.orbitSpeed*dt)
	}
}
