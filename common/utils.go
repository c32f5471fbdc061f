package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the size in bytes of a mat4x4<f32> in a WGSL uniform buffer.
const Mat4Size = 64

// Coalesce returns the first non-zero value, or the zero value if all are zero.
//
// Parameters:
//   - values: the candidates in priority order
//
// Returns:
//   - T: the first non-zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PutMat4 writes m into buf in little-endian column-major order.
// buf must hold at least Mat4Size bytes.
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m[i]))
	}
}

// Mat4Bytes serializes m into a newly allocated 64-byte slice suitable for a uniform upload.
func Mat4Bytes(m mgl32.Mat4) []byte {
	buf := make([]byte, Mat4Size)
	PutMat4(buf, m)
	return buf
}

// Float32Bytes serializes a float32 slice into little-endian bytes.
func Float32Bytes(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
