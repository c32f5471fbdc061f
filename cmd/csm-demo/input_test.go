package main

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type heldKeys struct {
	mu   sync.Mutex
	down map[uint32]bool
}

func (k *heldKeys) KeyDown(keyCode uint32) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.down[keyCode]
}

func (k *heldKeys) set(keyCode uint32, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down[keyCode] = down
}

func newTestInput() (*demoInput, *heldKeys, camera.CameraController, light.Light) {
	keys := &heldKeys{down: map[uint32]bool{}}
	ctrl := camera.NewOrbitController()
	sun := light.NewLight(light.WithDirection(mgl32.Vec3{1, -1, 0}))
	return newDemoInput(keys, ctrl, sun, 1), keys, ctrl, sun
}

func TestDemoInput_SpacePausesLightOrbit(t *testing.T) {
	in, _, _, sun := newTestInput()
	start := sun.Direction()

	in.onKey(common.KeySpace)
	in.tick(0.5)
	assert.Equal(t, start, sun.Direction(), "paused")

	in.onKey(common.KeySpace)
	in.tick(0.5)
	assert.NotEqual(t, start, sun.Direction())
	// rotation about +Y keeps the vertical component
	assert.InDelta(t, start.Y(), sun.Direction().Y(), 1e-5)
}

func TestDemoInput_LTogglesLight(t *testing.T) {
	in, _, _, sun := newTestInput()
	start := sun.Direction()

	in.onKey(common.KeyL)
	assert.False(t, sun.Enabled())
	in.tick(0.5)
	assert.Equal(t, start, sun.Direction(), "a disabled light does not orbit")

	in.onKey(common.KeyL)
	assert.True(t, sun.Enabled())
}

func TestDemoInput_HeldKeysDriveCamera(t *testing.T) {
	in, keys, ctrl, _ := newTestInput()
	az, el, radius := ctrl.Azimuth(), ctrl.Elevation(), ctrl.Radius()

	keys.set(common.KeyD, true)
	keys.set(common.KeyS, true)
	keys.set(common.KeyE, true)
	in.tick(0.016)
	assert.Greater(t, ctrl.Azimuth(), az)
	assert.Less(t, ctrl.Elevation(), el)
	assert.Greater(t, ctrl.Radius(), radius, "E zooms out")

	keys.set(common.KeyD, false)
	keys.set(common.KeyS, false)
	keys.set(common.KeyE, false)
	az = ctrl.Azimuth()
	in.tick(0.016)
	assert.Equal(t, az, ctrl.Azimuth())
}

// Key events arrive on the window thread while ticks run on the engine goroutine; run with -race.
func TestDemoInput_ConcurrentKeysAndTicks(t *testing.T) {
	in, _, _, _ := newTestInput()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 1000 {
			in.onKey(common.KeySpace)
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			in.tick(0.001)
		}
	}()
	wg.Wait()

	// an even number of toggles leaves the orbit running
	assert.True(t, in.orbiting.Load())
}
