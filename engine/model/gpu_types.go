package model

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSize is the stride of one vertex: position vec3 + normal vec3.
const GPUVertexSize = 24

// ModelDataSize is the byte size of the model_data uniform.
const ModelDataSize = common.Mat4Size

// VertexLayout is the vertex buffer layout matching Vertex and the WGSL VertexInput struct.
var VertexLayout = gpu.VertexBufferLayout{
	Stride: GPUVertexSize,
	Attributes: []gpu.VertexAttribute{
		{Format: gpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: gpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

// ModelData is the per-object uniform: the world matrix.
type ModelData struct {
	World mgl32.Mat4
}

// Marshal serializes the uniform into 64 little-endian bytes.
//
// Returns:
//   - []byte: the bytes
func (d ModelData) Marshal() []byte {
	return common.Mat4Bytes(d.World)
}
