package model

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.RWMutex

	id   uuid.UUID
	name string
	mesh *Mesh

	localMin, localMax mgl32.Vec3

	position      mgl32.Vec3
	rotation      mgl32.Vec3
	scale         mgl32.Vec3
	rotationSpeed mgl32.Vec3

	world              mgl32.Mat4
	worldMin, worldMax mgl32.Vec3

	castsShadows bool

	vertexBuffer gpu.Buffer
	indexBuffer  gpu.Buffer
	indexCount   uint32
}

// Model is a mesh placed in the world. It satisfies the drawable contract of the shadow pass:
// a world matrix, a world-space bounding box and a draw path that binds only geometry.
//
// Transforms are safe to update from a worker goroutine while no frame is being recorded.
type Model interface {
	// ID returns the model's unique identifier.
	ID() uuid.UUID

	// Name returns the model name.
	Name() string

	// Mesh returns the CPU-side geometry.
	Mesh() *Mesh

	// Upload creates the vertex and index buffers on dev. Calling it again is a no-op.
	//
	// Parameters:
	//   - dev: the device owning the buffers
	Upload(dev gpu.Device)

	// Uploaded reports whether Upload has been called.
	Uploaded() bool

	Position() mgl32.Vec3
	Rotation() mgl32.Vec3
	Scale() mgl32.Vec3
	RotationSpeed() mgl32.Vec3

	SetPosition(p mgl32.Vec3)
	SetRotation(r mgl32.Vec3)
	SetScale(s mgl32.Vec3)
	SetRotationSpeed(r mgl32.Vec3)

	// Update advances the rotation by RotationSpeed*dt and rebuilds the world matrix and bounds.
	//
	// Parameters:
	//   - dt: seconds since the last update
	Update(dt float32)

	// World returns the model-to-world matrix.
	World() mgl32.Mat4

	// Bounds returns the world-space axis-aligned bounding box.
	//
	// Returns:
	//   - min, max: the box corners
	Bounds() (min, max mgl32.Vec3)

	// CastsShadows reports whether the model is drawn into the shadow maps.
	CastsShadows() bool

	// DrawNoMaterial binds the vertex and index buffers and issues the indexed draw. The caller
	// has already set the pipeline and the bind groups.
	//
	// Parameters:
	//   - cmd: the command list, inside a render pass
	DrawNoMaterial(cmd gpu.CommandList)

	// Release frees the GPU buffers.
	Release()
}

var _ Model = &model{}

// NewModel creates a model at the origin with unit scale.
//
// Parameters:
//   - mesh: the geometry, must have vertices and indices
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the model
func NewModel(mesh *Mesh, options ...ModelBuilderOption) Model {
	if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		common.Fatalf("model: mesh must have vertices and indices")
	}
	m := &model{
		mu:           &sync.RWMutex{},
		id:           uuid.New(),
		mesh:         mesh,
		scale:        mgl32.Vec3{1, 1, 1},
		castsShadows: true,
		indexCount:   uint32(len(mesh.Indices)),
	}
	m.name = "model_" + m.id.String()[:8]
	for _, opt := range options {
		opt(m)
	}
	m.localMin, m.localMax = mesh.Bounds()
	m.rebuild()
	return m
}

// rebuild recomputes the world matrix and bounds. Caller must hold the write lock or own m.
func (m *model) rebuild() {
	m.world = common.BuildModelMatrix(m.position, m.rotation, m.scale)
	m.worldMin, m.worldMax = common.TransformAABB(m.world, m.localMin, m.localMax)
}

func (m *model) ID() uuid.UUID {
	return m.id
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Mesh() *Mesh {
	return m.mesh
}

func (m *model) Upload(dev gpu.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vertexBuffer != nil {
		return
	}
	vertices := m.mesh.VertexBytes()
	indices := m.mesh.IndexBytes()
	m.vertexBuffer = dev.CreateBuffer(gpu.BufferDescriptor{
		Label: fmt.Sprintf("%s_vb", m.name),
		Size:  uint64(len(vertices)),
		Usage: gpu.BufferUsageVertex | gpu.BufferUsageCopyDst,
	})
	m.indexBuffer = dev.CreateBuffer(gpu.BufferDescriptor{
		Label: fmt.Sprintf("%s_ib", m.name),
		Size:  uint64(len(indices)),
		Usage: gpu.BufferUsageIndex | gpu.BufferUsageCopyDst,
	})
	dev.WriteBuffer(m.vertexBuffer, 0, vertices)
	dev.WriteBuffer(m.indexBuffer, 0, indices)
}

func (m *model) Uploaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vertexBuffer != nil
}

func (m *model) Position() mgl32.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}

func (m *model) Rotation() mgl32.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rotation
}

func (m *model) Scale() mgl32.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scale
}

func (m *model) RotationSpeed() mgl32.Vec3 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rotationSpeed
}

func (m *model) SetPosition(p mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
	m.rebuild()
}

func (m *model) SetRotation(r mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotation = r
	m.rebuild()
}

func (m *model) SetScale(s mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scale = s
	m.rebuild()
}

func (m *model) SetRotationSpeed(r mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotationSpeed = r
}

func (m *model) Update(dt float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rotationSpeed != (mgl32.Vec3{}) {
		m.rotation = m.rotation.Add(m.rotationSpeed.Mul(dt))
	}
	m.rebuild()
}

func (m *model) World() mgl32.Mat4 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.world
}

func (m *model) Bounds() (min, max mgl32.Vec3) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.worldMin, m.worldMax
}

func (m *model) CastsShadows() bool {
	return m.castsShadows
}

func (m *model) DrawNoMaterial(cmd gpu.CommandList) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.vertexBuffer == nil {
		common.Logger().Warn("draw of model that was never uploaded", "model", m.name)
		return
	}
	cmd.SetVertexBuffer(0, m.vertexBuffer)
	cmd.SetIndexBuffer(m.indexBuffer, gpu.IndexFormatUint32)
	cmd.DrawIndexed(m.indexCount, 1)
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.indexBuffer.Release()
		m.vertexBuffer, m.indexBuffer = nil, nil
	}
}
