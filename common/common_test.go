package common

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrthoZO_MapsDepthToZeroOne(t *testing.T) {
	m := OrthoZO(-2, 2, -1, 1, 1, 11)

	near := TransformPoint(m, mgl32.Vec3{2, 1, -1})
	far := TransformPoint(m, mgl32.Vec3{-2, -1, -11})
	assert.InDelta(t, 0, near.Z(), 1e-6)
	assert.InDelta(t, 1, far.Z(), 1e-6)
	assert.InDelta(t, 1, near.X(), 1e-6)
	assert.InDelta(t, -1, far.Y(), 1e-6)
}

func TestPerspectiveZO_MapsDepthToZeroOne(t *testing.T) {
	m := PerspectiveZO(mgl32.DegToRad(90), 1, 1, 10)

	assert.InDelta(t, 0, TransformPoint(m, mgl32.Vec3{0, 0, -1}).Z(), 1e-5)
	assert.InDelta(t, 1, TransformPoint(m, mgl32.Vec3{0, 0, -10}).Z(), 1e-5)
	// 90 degree fov: the frustum edge at depth 5 is at y = 5
	assert.InDelta(t, 1, TransformPoint(m, mgl32.Vec3{0, 5, -5}).Y(), 1e-5)
}

func TestNormalizeOr(t *testing.T) {
	fallback := mgl32.Vec3{0, 1, 0}
	assert.Equal(t, fallback, NormalizeOr(mgl32.Vec3{}, fallback))
	assert.Equal(t, fallback, NormalizeOr(mgl32.Vec3{math32.NaN(), 0, 0}, fallback))
	assert.Equal(t, fallback, NormalizeOr(mgl32.Vec3{math32.Inf(1), 0, 0}, fallback))

	n := NormalizeOr(mgl32.Vec3{3, 0, 4}, fallback)
	assert.InDelta(t, 0.6, n.X(), 1e-6)
	assert.InDelta(t, 0.8, n.Z(), 1e-6)
}

func TestIsFiniteMat4(t *testing.T) {
	assert.True(t, IsFiniteMat4(mgl32.Ident4()))
	m := mgl32.Ident4()
	m[7] = math32.NaN()
	assert.False(t, IsFiniteMat4(m))
	m[7] = math32.Inf(-1)
	assert.False(t, IsFiniteMat4(m))
}

func TestBytePacking(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0xc0}, Float32Bytes([]float32{1, -2}))

	b := Mat4Bytes(mgl32.Translate3D(1, 2, 3))
	require.Len(t, b, Mat4Size)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[:4])
	// column-major: translation x sits in element 12
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[48:52])
	assert.Equal(t, []byte{0, 0, 0x40, 0x40}, b[56:60])
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", Coalesce("", "a", "b"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, uint64(64), Coalesce(uint64(0), uint64(64)))
}

func TestFrustum_IntersectsAABB(t *testing.T) {
	f := ExtractFrustum(OrthoZO(-1, 1, -1, 1, 0.1, 10))

	tests := []struct {
		name     string
		min, max mgl32.Vec3
		want     bool
	}{
		{"inside", mgl32.Vec3{-0.5, -0.5, -5}, mgl32.Vec3{0.5, 0.5, -4}, true},
		{"straddles right", mgl32.Vec3{0.5, 0, -5}, mgl32.Vec3{2, 0.5, -4}, true},
		{"right of box", mgl32.Vec3{2, 0, -5}, mgl32.Vec3{3, 0.5, -4}, false},
		{"behind near", mgl32.Vec3{-0.5, -0.5, 1}, mgl32.Vec3{0.5, 0.5, 2}, false},
		{"beyond far", mgl32.Vec3{-0.5, -0.5, -30}, mgl32.Vec3{0.5, 0.5, -20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IntersectsAABB(tt.min, tt.max))
		})
	}
}

func TestTransformAABB(t *testing.T) {
	min, max := TransformAABB(mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(2, 1, 1)),
		mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{8, -1, -1}, min)
	assert.Equal(t, mgl32.Vec3{12, 1, 1}, max)
}

func TestLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	require.PanicsWithValue(t, "common: bad thing 7", func() { Fatalf("common: bad thing %d", 7) })
	assert.Contains(t, buf.String(), "common: bad thing 7")

	SetLogger(nil)
	require.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
