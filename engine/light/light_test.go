package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLight_Defaults(t *testing.T) {
	l := NewLight()
	assert.InDelta(t, 1, l.Direction().Len(), 1e-6)
	assert.True(t, l.Enabled())
	assert.True(t, l.CastsShadows())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())
}

func TestLight_DirectionIsNormalized(t *testing.T) {
	l := NewLight(WithDirection(mgl32.Vec3{0, -10, 0}))
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction())

	l.SetDirection(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction(), "zero direction is ignored")

	l.SetDirection(mgl32.Vec3{3, 0, 4})
	got := l.Direction()
	assert.InDeltaSlice(t, []float32{0.6, 0, 0.8}, got[:], 1e-6)
}

func TestLight_Rotate(t *testing.T) {
	l := NewLight(WithDirection(mgl32.Vec3{1, 0, 0}))
	l.Rotate(mgl32.Vec3{0, 1, 0}, math.Pi/2)
	// a quarter turn leaves float noise around 6e-8 in the x component
	got := l.Direction()
	assert.InDeltaSlice(t, []float32{0, 0, -1}, got[:], 1e-5, "got %v", got)

	l.Rotate(mgl32.Vec3{}, 1)
	assert.Equal(t, got, l.Direction(), "zero axis is ignored")
}

func TestGPULight_Marshal(t *testing.T) {
	l := NewLight(
		WithDirection(mgl32.Vec3{0, -1, 0}),
		WithColor(mgl32.Vec3{1, 0.5, 0.25}),
		WithIntensity(2),
		WithAmbient(0.3),
	)
	data := ToGPULight(l).Marshal()
	require.Len(t, data, GPULightSize)

	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])) }
	assert.Equal(t, []float32{0, -1, 0, 0.3, 2, 1, 0.5, 1}, []float32{f(0), f(1), f(2), f(3), f(4), f(5), f(6), f(7)})

	l.SetEnabled(false)
	g := ToGPULight(l)
	assert.Equal(t, [3]float32{}, g.Color)
	assert.Zero(t, g.Shadowed)

	l = NewLight(WithCastsShadows(false))
	g = ToGPULight(l)
	assert.Equal(t, [3]float32{1, 1, 1}, g.Color)
	assert.Zero(t, g.Shadowed)
}
