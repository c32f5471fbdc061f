package shadow

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CascadeInfoSize is the byte size of the CascadeInfo uniform.
const CascadeInfoSize = CascadeCount*common.Mat4Size + 16

// CascadeInfo is the per-frame cascade uniform read by the colour pass.
//
// Layout (208 bytes, std140-compatible):
//
//	0..191   lvpc[3]       mat4x4<f32>
//	192      soft_shadow   u32
//	196..207 split0..2     f32
type CascadeInfo struct {
	LVPC        [CascadeCount]mgl32.Mat4
	SoftShadow  uint32
	SplitDepths [CascadeCount]float32
}

// Marshal encodes the struct little-endian into CascadeInfoSize bytes.
func (c CascadeInfo) Marshal() []byte {
	buf := make([]byte, CascadeInfoSize)
	for i, m := range c.LVPC {
		common.PutMat4(buf[i*common.Mat4Size:], m)
	}
	off := CascadeCount * common.Mat4Size
	binary.LittleEndian.PutUint32(buf[off:], c.SoftShadow)
	for i, d := range c.SplitDepths {
		binary.LittleEndian.PutUint32(buf[off+4+i*4:], math.Float32bits(d))
	}
	return buf
}
