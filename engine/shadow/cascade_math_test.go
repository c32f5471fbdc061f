package shadow

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeDesc_Validate(t *testing.T) {
	tests := []struct {
		name    string
		desc    CascadeDesc
		wantErr string
	}{
		{"valid", CascadeDesc{Near: 200, Medium: 500, Far: 1000, MaxResolution: 1024}, ""},
		{"zero near", CascadeDesc{Near: 0, Medium: 1, Far: 2, MaxResolution: 1}, ""},
		{"negative near", CascadeDesc{Near: -1, Medium: 1, Far: 2, MaxResolution: 1}, "invalid cascade desc: near -1 must be non-negative"},
		{"medium below near", CascadeDesc{Near: 500, Medium: 200, Far: 1000, MaxResolution: 1}, "invalid cascade desc: medium 200 must be greater than near 500"},
		{"medium equals near", CascadeDesc{Near: 5, Medium: 5, Far: 10, MaxResolution: 1}, "invalid cascade desc: medium 5 must be greater than near 5"},
		{"far below medium", CascadeDesc{Near: 1, Medium: 5, Far: 4, MaxResolution: 1}, "invalid cascade desc: far 4 must be greater than medium 5"},
		{"zero resolution", CascadeDesc{Near: 1, Medium: 2, Far: 3}, "invalid cascade desc: max resolution must be non-zero"},
		{"infinite far", CascadeDesc{Near: 1, Medium: 2, Far: math32.Inf(1), MaxResolution: 1}, "invalid cascade desc: bounds must be finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidCascadeDesc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCascadeDesc_Bounds(t *testing.T) {
	d := CascadeDesc{Near: 1, Medium: 2, Far: 3}
	assert.Equal(t, [CascadeCount]float32{1, 2, 3}, d.Bounds())
	assert.NoError(t, DefaultCascadeDesc().Validate())
}

func TestCascadeResolutions(t *testing.T) {
	tests := []struct {
		r    uint32
		want [CascadeCount]uint32
	}{
		{1024, [CascadeCount]uint32{1024, 512, 256}},
		{1000, [CascadeCount]uint32{1000, 500, 250}},
		{3, [CascadeCount]uint32{3, 1, 1}},
		{1, [CascadeCount]uint32{1, 1, 1}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CascadeResolutions(tt.r), "r=%d", tt.r)
	}
}

func TestFrustumCorners(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithPosition(mgl32.Vec3{0, 0, 0}),
		camera.WithTarget(mgl32.Vec3{0, 0, -1}),
		camera.WithFov(mgl32.DegToRad(90)),
		camera.WithAspect(2),
	)
	corners := FrustumCorners(cam, 1, 3)

	// tan(45deg) = 1: half height equals depth, half width is twice that
	want := [8]mgl32.Vec3{
		{-2, -1, -1}, {2, -1, -1}, {2, 1, -1}, {-2, 1, -1},
		{-6, -3, -3}, {6, -3, -3}, {6, 3, -3}, {-6, 3, -3},
	}
	for i := range want {
		assert.InDeltaSlice(t, want[i][:], corners[i][:], 1e-5, "corner %d: want %v, got %v", i, want[i], corners[i])
	}
}

func TestCropMatrix_ContainsCorners(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	lerp := func(a, b float32) float32 { return a + (b-a)*rng.Float32() }

	for range 200 {
		fov := lerp(0.2, 3.0)
		aspect := lerp(0.1, 10)
		near := lerp(0.1, 50)
		far := near + lerp(1, 500)

		view := camera.NewCamera(
			camera.WithPosition(mgl32.Vec3{lerp(-20, 20), lerp(-20, 20), lerp(-20, 20)}),
			camera.WithTarget(mgl32.Vec3{lerp(-5, 5), lerp(-5, 5), lerp(-5, 5)}),
			camera.WithFov(fov),
			camera.WithAspect(aspect),
		)
		dir := mgl32.Vec3{lerp(-1, 1), lerp(-1, 0.1), lerp(-1, 1)}
		light := camera.NewLightCamera()
		light.LookAt(LightPosition(dir), mgl32.Vec3{}, LightUp(dir))
		light.Update(nil)

		corners := FrustumCorners(view, near, far)
		lvp := light.ViewProjection()
		lvpc := CropMatrix(corners, lvp).Mul4(lvp)
		require.True(t, common.IsFiniteMat4(lvpc))

		for i, c := range corners {
			p := common.TransformPoint(lvpc, c)
			assert.InDelta(t, 0, max(0, math32.Abs(p.X())-1), 1e-3, "fov %g aspect %g corner %d x=%g", fov, aspect, i, p.X())
			assert.InDelta(t, 0, max(0, math32.Abs(p.Y())-1), 1e-3, "fov %g aspect %g corner %d y=%g", fov, aspect, i, p.Y())
		}
	}
}

func TestCropMatrix_DegenerateExtentStaysFinite(t *testing.T) {
	var corners [8]mgl32.Vec3
	crop := CropMatrix(corners, mgl32.Ident4())
	assert.True(t, common.IsFiniteMat4(crop))
}

func TestLightPositionAndUp(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, LightPosition(mgl32.Vec3{0, -1, 0}))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, LightPosition(mgl32.Vec3{}))
	side := LightPosition(mgl32.Vec3{5, 0, 0})
	assert.InDeltaSlice(t, []float32{-1, 0, 0}, side[:], 1e-6)

	up := LightUp(mgl32.Vec3{0, -1, 0})
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, up)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, LightUp(mgl32.Vec3{1, -1, 0}))
}
