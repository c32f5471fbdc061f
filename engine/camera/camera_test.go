package camera

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/timer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecInDelta(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5, "want %v, got %v", want, got)
}

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera()

	assert.False(t, c.Orthographic())
	assert.False(t, c.Dirty())
	assert.InDelta(t, mgl32.DegToRad(45), c.Fov(), 1e-6)
	vecInDelta(t, mgl32.Vec3{0, 0, -1}, c.Look())
	vecInDelta(t, mgl32.Vec3{1, 0, 0}, c.Right())
	vecInDelta(t, mgl32.Vec3{0, 1, 0}, c.Up())

	// the origin sits 5 units in front of the eye
	p := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5)
}

func TestCamera_ViewRecomputedOnlyOnUpdate(t *testing.T) {
	c := NewCamera()
	before := c.View()

	c.LookAt(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.True(t, c.Dirty())
	assert.Equal(t, before, c.View(), "view must not change before Update")

	c.Update(nil)
	assert.False(t, c.Dirty())
	assert.NotEqual(t, before, c.View())
	vecInDelta(t, mgl32.Vec3{-1, 0, 0}, c.Look())

	// re-issuing the same orientation is not a change
	c.LookAt(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assert.False(t, c.Dirty())
}

func TestCamera_LensSettersRebuildProjectionEagerly(t *testing.T) {
	c := NewCamera()
	c.SetOrthoLens(20, 10, -5, 5)
	assert.True(t, c.Orthographic())
	w, h := c.OrthoSize()
	assert.Equal(t, float32(20), w)
	assert.Equal(t, float32(10), h)
	assert.Equal(t, common.OrthoZO(-10, 10, -5, 5, -5, 5), c.Projection())
	assert.Equal(t, c.Projection().Mul4(c.View()), c.ViewProjection())

	// fov and aspect survive the switch to orthographic
	assert.InDelta(t, mgl32.DegToRad(45), c.Fov(), 1e-6)
	assert.Equal(t, float32(1), c.Aspect())

	c.SetLens(1, 2, 0.5, 50)
	assert.False(t, c.Orthographic())
	assert.Equal(t, common.PerspectiveZO(1, 2, 0.5, 50), c.Projection())
}

func TestCamera_DegenerateUpHasNoNaN(t *testing.T) {
	tests := []struct {
		name        string
		eye, target mgl32.Vec3
	}{
		{"straight down", mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}},
		{"straight up", mgl32.Vec3{0, -3, 0}, mgl32.Vec3{}},
		{"eye equals target", mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLightCamera()
			c.LookAt(tt.eye, tt.target, mgl32.Vec3{0, 1, 0})
			c.Update(nil)
			require.True(t, common.IsFiniteMat4(c.View()))
			require.True(t, common.IsFiniteMat4(c.ViewProjection()))
			assert.InDelta(t, 0, c.Look().Dot(c.Up()), 1e-5)
		})
	}
}

func TestSafeUp(t *testing.T) {
	vecInDelta(t, mgl32.Vec3{0, 1, 0}, SafeUp(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}))
	vecInDelta(t, mgl32.Vec3{0, 0, 1}, SafeUp(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}))
	vecInDelta(t, mgl32.Vec3{1, 0, 0}, SafeUp(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, 1}))
}

func TestNewLightCamera(t *testing.T) {
	c := NewLightCamera()
	assert.True(t, c.Orthographic())
	vecInDelta(t, mgl32.Vec3{0, 1, 0}, c.Position())
	vecInDelta(t, mgl32.Vec3{0, -1, 0}, c.Look())
	assert.True(t, common.IsFiniteMat4(c.View()))
}

func TestCamera_ControllerDrivesOrientation(t *testing.T) {
	start := time.Unix(0, 0)
	now := start
	tm := timer.NewTimer(timer.WithClock(func() time.Time { return now }))

	ctrl := NewOrbitController(WithRadius(10), WithElevation(0.1), WithAutoOrbit(1))
	c := NewCamera(WithController(ctrl))
	c.Update(tm)
	vecInDelta(t, ctrl.Position(), c.Position())

	now = now.Add(500 * time.Millisecond)
	tm.Tick()
	c.Update(tm)
	assert.InDelta(t, 0.5, ctrl.Azimuth(), 1e-5)
	vecInDelta(t, ctrl.Position(), c.Position())
	vecInDelta(t, ctrl.Target(), c.Target())
	assert.False(t, c.Dirty())
}

func TestOrbitController_Clamps(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(5), WithRadiusLimits(2, 8), WithOrbitSpeed(1))

	ctrl.Zoom(100)
	assert.Equal(t, float32(2), ctrl.Radius())
	ctrl.Zoom(-100)
	assert.Equal(t, float32(8), ctrl.Radius())

	for range 5 {
		ctrl.OrbitUp()
	}
	assert.Less(t, ctrl.Elevation(), float32(1.571))
	for range 5 {
		ctrl.OrbitDown()
	}
	assert.InDelta(t, 0.05, ctrl.Elevation(), 1e-6)

	ctrl.SetTarget(mgl32.Vec3{1, 2, 3})
	assert.InDelta(t, 8, ctrl.Position().Sub(ctrl.Target()).Len(), 1e-4)
}
