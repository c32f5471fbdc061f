package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5, "want %v, got %v", want, got)
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name     string
		mesh     *Mesh
		vertices int
		indices  int
		min, max mgl32.Vec3
	}{
		{"cube", NewCube(2), 24, 36, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}},
		{"plane", NewPlane(10), 4, 6, mgl32.Vec3{-5, 0, -5}, mgl32.Vec3{5, 0, 5}},
		{"sphere", NewSphere(1, 8, 4), 45, 8 * 4 * 6, mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.mesh.Vertices, tt.vertices)
			assert.Len(t, tt.mesh.Indices, tt.indices)
			for _, idx := range tt.mesh.Indices {
				require.Less(t, int(idx), tt.vertices)
			}
			min, max := tt.mesh.Bounds()
			assertVec3(t, tt.min, min)
			assertVec3(t, tt.max, max)
			assert.Len(t, tt.mesh.VertexBytes(), tt.vertices*GPUVertexSize)
			assert.Len(t, tt.mesh.IndexBytes(), tt.indices*4)
		})
	}
}

func TestModel_TransformAndBounds(t *testing.T) {
	m := NewModel(NewCube(2), WithName("box"), WithPosition(mgl32.Vec3{0, 3, 0}), WithScale(mgl32.Vec3{2, 1, 1}))
	assert.Equal(t, "box", m.Name())

	min, max := m.Bounds()
	assertVec3(t, mgl32.Vec3{-2, 2, -1}, min)
	assertVec3(t, mgl32.Vec3{2, 4, 1}, max)
	assertVec3(t, mgl32.Vec3{2, 4, 1}, mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, m.World()))
}

func TestModel_UpdateAppliesRotationSpeed(t *testing.T) {
	m := NewModel(NewCube(1), WithRotationSpeed(mgl32.Vec3{0, 2, 0}))
	m.Update(0.25)
	assert.InDelta(t, 0.5, m.Rotation().Y(), 1e-6)
	want, world := mgl32.HomogRotate3DY(0.5), m.World()
	assert.InDeltaSlice(t, want[:], world[:], 1e-6)
}

func TestModel_UploadAndDraw(t *testing.T) {
	dev := gpu.NewHeadlessDevice()
	m := NewModel(NewPlane(1), WithName("ground"))
	assert.NotEqual(t, m.ID(), NewModel(NewPlane(1)).ID())

	before := dev.LiveResources()
	m.Upload(dev)
	m.Upload(dev)
	assert.True(t, m.Uploaded())
	assert.Equal(t, before+2, dev.LiveResources())

	writes := dev.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "ground_vb", writes[0].Buffer)
	assert.Equal(t, 4*GPUVertexSize, writes[0].Size)
	assert.Equal(t, "ground_ib", writes[1].Buffer)

	m.Release()
	assert.Equal(t, before, dev.LiveResources())
	assert.False(t, m.Uploaded())
}

func TestNewModel_PanicsOnEmptyMesh(t *testing.T) {
	assert.PanicsWithValue(t, "model: mesh must have vertices and indices", func() { NewModel(&Mesh{}) })
	assert.Panics(t, func() { NewModel(nil) })
}

func TestModelData_Marshal(t *testing.T) {
	data := ModelData{World: mgl32.Translate3D(1, 2, 3)}.Marshal()
	assert.Len(t, data, ModelDataSize)
}
