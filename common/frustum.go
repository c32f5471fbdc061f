package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a view-projection matrix using the
// Gribb/Hartmann method. The near plane assumes clip depth [0, 1] (WebGPU / DirectX),
// so it is row 2 alone rather than row 3 + row 2.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromRow(r2)
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))
	return f
}

// planeFromRow builds a normalized plane from a combined matrix row.
func planeFromRow(row mgl32.Vec4) Plane {
	p := Plane{Normal: row.Vec3(), Distance: row.W()}
	if l := p.Normal.Len(); l > 0 {
		p.Normal = p.Normal.Mul(1 / l)
		p.Distance /= l
	}
	return p
}

// IntersectsAABB reports whether the axis-aligned box [min, max] is at least partially
// inside the frustum. The test is conservative: boxes near a frustum corner may be
// reported as visible.
//
// Parameters:
//   - min: minimum corner of the box
//   - max: maximum corner of the box
//
// Returns:
//   - bool: false only if the box lies entirely outside one of the planes
func (f Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, p := range f.Planes {
		// positive vertex: the box corner furthest along the plane normal
		var v mgl32.Vec3
		for i := range 3 {
			if p.Normal[i] >= 0 {
				v[i] = max[i]
			} else {
				v[i] = min[i]
			}
		}
		if p.Normal.Dot(v)+p.Distance < 0 {
			return false
		}
	}
	return true
}

// TransformAABB returns the axis-aligned bounds of the box [min, max] after transforming
// its eight corners by m.
func TransformAABB(m mgl32.Mat4, min, max mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	outMin := mgl32.Vec3{inf32, inf32, inf32}
	outMax := mgl32.Vec3{-inf32, -inf32, -inf32}
	for i := range 8 {
		c := mgl32.Vec3{min.X(), min.Y(), min.Z()}
		if i&1 != 0 {
			c[0] = max.X()
		}
		if i&2 != 0 {
			c[1] = max.Y()
		}
		if i&4 != 0 {
			c[2] = max.Z()
		}
		w := mgl32.TransformCoordinate(c, m)
		for k := range 3 {
			outMin[k] = min32(outMin[k], w[k])
			outMax[k] = max32(outMax[k], w[k])
		}
	}
	return outMin, outMax
}

const inf32 = float32(3.4028234663852886e+38)

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
