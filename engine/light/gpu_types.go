package light

import "github.com/Carmen-Shannon/oxy-csm/common"

// GPULightSize is the byte size of the light part of the scene uniform.
const GPULightSize = 32

// GPULight is the light as seen by the lit shader: the light_dir and light_color members of
// the scene_data uniform.
//
//	light_dir:   vec4<f32>  xyz direction, w ambient fraction
//	light_color: vec4<f32>  rgb colour * intensity, w 1 if shadowed
type GPULight struct {
	Direction [3]float32
	Ambient   float32
	Color     [3]float32
	Shadowed  float32
}

// ToGPULight converts a Light to its GPU layout. A disabled light has zero colour and casts
// no shadow.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - GPULight: the GPU representation
func ToGPULight(l Light) GPULight {
	g := GPULight{
		Direction: l.Direction(),
		Ambient:   l.Ambient(),
	}
	if l.Enabled() {
		g.Color = l.Color().Mul(l.Intensity())
		if l.CastsShadows() {
			g.Shadowed = 1
		}
	}
	return g
}

// Marshal serializes the light into 32 little-endian bytes.
//
// Returns:
//   - []byte: the bytes
func (g GPULight) Marshal() []byte {
	return common.Float32Bytes([]float32{
		g.Direction[0], g.Direction[1], g.Direction[2], g.Ambient,
		g.Color[0], g.Color[1], g.Color[2], g.Shadowed,
	})
}
