package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// OrthoZO creates an orthographic projection matrix mapping view-space depth to the
// WebGPU / DirectX clip range [0, 1]. mgl32.Ortho targets the OpenGL [-1, 1] range and
// cannot be used directly.
// The matrix is column-major.
//
// Parameters:
//   - left, right: view-space x extents
//   - bottom, top: view-space y extents
//   - near, far: view-space depth extents (far must differ from near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func OrthoZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near
	return mgl32.Mat4{
		2 / rl, 0, 0, 0,
		0, 2 / tb, 0, 0,
		0, 0, -1 / fn, 0,
		-(right + left) / rl, -(top + bottom) / tb, -near / fn, 1,
	}
}

// PerspectiveZO creates a right-handed perspective projection matrix with clip depth [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovY/2)
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far / (near - far), -1,
		0, 0, (near * far) / (near - far), 0,
	}
}

// BuildModelMatrix constructs a model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll).
//
// Parameters:
//   - pos: translation in world space
//   - rot: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the model matrix
func BuildModelMatrix(pos, rot, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(mgl32.HomogRotate3DY(rot.Y())).
		Mul4(mgl32.HomogRotate3DX(rot.X())).
		Mul4(mgl32.HomogRotate3DZ(rot.Z())).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// TransformPoint transforms p by m and performs the perspective divide.
// A zero w leaves the transformed coordinates undivided.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec4 {
	v := m.Mul4x1(p.Vec4(1))
	if v.W() != 0 {
		return mgl32.Vec4{v.X() / v.W(), v.Y() / v.W(), v.Z() / v.W(), 1}
	}
	return v
}

// NormalizeOr returns the unit vector of v, or fallback when v has (near) zero length.
func NormalizeOr(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-8 || math32.IsNaN(l) || math32.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

// IsFiniteMat4 reports whether every element of m is neither NaN nor infinite.
func IsFiniteMat4(m mgl32.Mat4) bool {
	for _, v := range m {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}
