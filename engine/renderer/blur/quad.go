package blur

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
)

// quadVertices covers clip space with two triangles; each vertex is position.xy, uv.xy.
var quadVertices = []float32{
	-1, -1, 0, 1,
	1, -1, 1, 1,
	1, 1, 1, 0,
	-1, 1, 0, 0,
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// QuadVertexLayout is the vertex buffer layout of the full-screen quad.
var QuadVertexLayout = gpu.VertexBufferLayout{
	Stride: 16,
	Attributes: []gpu.VertexAttribute{
		{Format: gpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		{Format: gpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
	},
}

// Quad is a full-screen quad held in a frame ring of vertex/index buffer pairs. The contents are
// written once at construction and never change.
type Quad struct {
	vertices *renderer.FrameRing[gpu.Buffer]
	indices  *renderer.FrameRing[gpu.Buffer]
}

// NewQuad allocates and fills one vertex/index buffer pair per frame in flight.
//
// Parameters:
//   - r: the renderer
//   - label: prefix for the buffer labels
//
// Returns:
//   - *Quad: the quad
func NewQuad(r renderer.Renderer, label string) *Quad {
	dev := r.Device()
	vertexData := common.Float32Bytes(quadVertices)
	indexData := make([]byte, 4*len(quadIndices))
	for i, idx := range quadIndices {
		binary.LittleEndian.PutUint32(indexData[i*4:], idx)
	}

	q := &Quad{}
	q.vertices = renderer.NewFrameRing(r, func(slot int) gpu.Buffer {
		b := dev.CreateBuffer(gpu.BufferDescriptor{
			Label: fmt.Sprintf("%s_quad_vb_f%d", label, slot),
			Size:  uint64(len(vertexData)),
			Usage: gpu.BufferUsageVertex | gpu.BufferUsageCopyDst,
		})
		dev.WriteBuffer(b, 0, vertexData)
		return b
	})
	q.indices = renderer.NewFrameRing(r, func(slot int) gpu.Buffer {
		b := dev.CreateBuffer(gpu.BufferDescriptor{
			Label: fmt.Sprintf("%s_quad_ib_f%d", label, slot),
			Size:  uint64(len(indexData)),
			Usage: gpu.BufferUsageIndex | gpu.BufferUsageCopyDst,
		})
		dev.WriteBuffer(b, 0, indexData)
		return b
	})
	return q
}

// Draw binds the current frame's buffers and draws the quad. A pipeline must be set.
//
// Parameters:
//   - cmd: the command list, inside a render pass
func (q *Quad) Draw(cmd gpu.CommandList) {
	cmd.SetVertexBuffer(0, q.vertices.Current())
	cmd.SetIndexBuffer(q.indices.Current(), gpu.IndexFormatUint32)
	cmd.DrawIndexed(uint32(len(quadIndices)), 1)
}

// Slots returns the number of frame-ring slots.
func (q *Quad) Slots() int {
	return q.vertices.Len()
}

// Release frees every buffer of the ring.
func (q *Quad) Release() {
	release := func(_ int, b gpu.Buffer) { b.Release() }
	q.vertices.Each(release)
	q.indices.Each(release)
}
