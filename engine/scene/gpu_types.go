package scene

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneDataSize is the byte size of the scene_data uniform.
const SceneDataSize = 2*common.Mat4Size + light.GPULightSize

// SceneData is the per-frame uniform of the lit pass.
//
//	view_proj:   mat4x4<f32>
//	view:        mat4x4<f32>
//	light_dir:   vec4<f32>
//	light_color: vec4<f32>
type SceneData struct {
	ViewProj mgl32.Mat4
	View     mgl32.Mat4
	Light    light.GPULight
}

// Marshal serializes the scene data into SceneDataSize little-endian bytes.
//
// Returns:
//   - []byte: the bytes
func (d SceneData) Marshal() []byte {
	out := make([]byte, 0, SceneDataSize)
	out = append(out, common.Mat4Bytes(d.ViewProj)...)
	out = append(out, common.Mat4Bytes(d.View)...)
	return append(out, d.Light.Marshal()...)
}
