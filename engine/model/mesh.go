package model

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a mesh vertex as consumed by the shadow and lit pipelines.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Mesh is CPU-side triangle-list geometry with 32-bit indices.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the model-space axis-aligned bounding box. An empty mesh has zero bounds.
//
// Returns:
//   - min, max: the box corners
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := range 3 {
			min[i] = math32.Min(min[i], v.Position[i])
			max[i] = math32.Max(max[i], v.Position[i])
		}
	}
	return min, max
}

// VertexBytes packs the vertices with the GPUVertexSize stride.
//
// Returns:
//   - []byte: the vertex buffer contents
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.Vertices)*GPUVertexSize)
	for i, v := range m.Vertices {
		off := i * GPUVertexSize
		for j := range 3 {
			binary.LittleEndian.PutUint32(buf[off+j*4:], math.Float32bits(v.Position[j]))
			binary.LittleEndian.PutUint32(buf[off+12+j*4:], math.Float32bits(v.Normal[j]))
		}
	}
	return buf
}

// IndexBytes packs the indices as little-endian uint32.
//
// Returns:
//   - []byte: the index buffer contents
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// appendQuad adds two counter-clockwise triangles for the corners a, b, c, d.
func (m *Mesh) appendQuad(normal mgl32.Vec3, a, b, c, d mgl32.Vec3) {
	base := uint32(len(m.Vertices))
	for _, p := range []mgl32.Vec3{a, b, c, d} {
		m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: normal})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

// NewCube builds an axis-aligned cube centred on the origin with flat per-face normals.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - *Mesh: 24 vertices, 36 indices
func NewCube(size float32) *Mesh {
	h := size / 2
	m := &Mesh{}
	m.appendQuad(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-h, -h, h}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{-h, h, h})
	m.appendQuad(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{-h, h, -h}, mgl32.Vec3{h, h, -h})
	m.appendQuad(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{h, h, -h}, mgl32.Vec3{h, h, h})
	m.appendQuad(mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{-h, -h, h}, mgl32.Vec3{-h, h, h}, mgl32.Vec3{-h, h, -h})
	m.appendQuad(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{-h, h, h}, mgl32.Vec3{h, h, h}, mgl32.Vec3{h, h, -h}, mgl32.Vec3{-h, h, -h})
	m.appendQuad(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{-h, -h, -h}, mgl32.Vec3{h, -h, -h}, mgl32.Vec3{h, -h, h}, mgl32.Vec3{-h, -h, h})
	return m
}

// NewPlane builds a square in the XZ plane facing +Y.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - *Mesh: 4 vertices, 6 indices
func NewPlane(size float32) *Mesh {
	h := size / 2
	m := &Mesh{}
	m.appendQuad(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{-h, 0, h}, mgl32.Vec3{h, 0, h}, mgl32.Vec3{h, 0, -h}, mgl32.Vec3{-h, 0, -h})
	return m
}

// NewSphere builds a UV sphere centred on the origin.
//
// Parameters:
//   - radius: the sphere radius
//   - segments: subdivisions around the Y axis, at least 3
//   - rings: subdivisions from pole to pole, at least 2
//
// Returns:
//   - *Mesh: (segments+1)*(rings+1) vertices
func NewSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	m := &Mesh{}
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)
			n := mgl32.Vec3{sinPhi * sinTheta, cosPhi, sinPhi * cosTheta}
			m.Vertices = append(m.Vertices, Vertex{Position: n.Mul(radius), Normal: n})
		}
	}
	stride := uint32(segments + 1)
	for r := range uint32(rings) {
		for s := range uint32(segments) {
			a := r*stride + s
			b := a + stride
			m.Indices = append(m.Indices, a, b, b+1, a, b+1, a+1)
		}
	}
	return m
}
