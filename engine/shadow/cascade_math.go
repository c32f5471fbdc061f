package shadow

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// minCropExtent keeps the crop scale finite when every corner projects onto one line.
const minCropExtent = 1e-6

// FrustumSource is the part of a camera the cascade slices are cut from. camera.Camera
// satisfies it.
type FrustumSource interface {
	Position() mgl32.Vec3
	Look() mgl32.Vec3
	Right() mgl32.Vec3
	Up() mgl32.Vec3
	Fov() float32
	Aspect() float32
	Near() float32
}

// FrustumCorners returns the eight world-space corners of the slice of src between the two
// depths. The near face comes first, each face ordered bottom-left, bottom-right, top-right,
// top-left.
//
// Parameters:
//   - src: the camera whose basis and lens shape the slice
//   - near: the slice start depth along the look direction
//   - far: the slice end depth along the look direction
//
// Returns:
//   - [8]mgl32.Vec3: the corners
func FrustumCorners(src FrustumSource, near, far float32) [8]mgl32.Vec3 {
	pos, look, right, up := src.Position(), src.Look(), src.Right(), src.Up()
	tanHalf := math32.Tan(src.Fov() / 2)
	aspect := src.Aspect()

	var out [8]mgl32.Vec3
	for i, depth := range [2]float32{near, far} {
		centre := pos.Add(look.Mul(depth))
		hh := tanHalf * depth
		hw := hh * aspect
		r, u := right.Mul(hw), up.Mul(hh)
		out[i*4+0] = centre.Sub(r).Sub(u)
		out[i*4+1] = centre.Add(r).Sub(u)
		out[i*4+2] = centre.Add(r).Add(u)
		out[i*4+3] = centre.Sub(r).Add(u)
	}
	return out
}

// CropMatrix returns the matrix that scales and offsets light clip space so the x/y extent of
// corners, projected by lightViewProj, fills [-1, 1]. Depth is left untouched.
//
// Parameters:
//   - corners: world-space points to fit
//   - lightViewProj: the light's projection * view
//
// Returns:
//   - mgl32.Mat4: the crop matrix, to be premultiplied onto lightViewProj
func CropMatrix(corners [8]mgl32.Vec3, lightViewProj mgl32.Mat4) mgl32.Mat4 {
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for _, c := range corners {
		p := common.TransformPoint(lightViewProj, c)
		minX, maxX = min(minX, p.X()), max(maxX, p.X())
		minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
	}

	sx := 2 / max(maxX-minX, minCropExtent)
	sy := 2 / max(maxY-minY, minCropExtent)
	ox := -(maxX + minX) / 2 * sx
	oy := -(maxY + minY) / 2 * sy
	return mgl32.Mat4{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, 1, 0,
		ox, oy, 0, 1,
	}
}

// CascadeResolutions returns the shadow map edge length of each cascade: r, r/2 and r/4, each
// at least 1.
func CascadeResolutions(r uint32) [CascadeCount]uint32 {
	var out [CascadeCount]uint32
	for i := range out {
		out[i] = max(r>>i, 1)
	}
	return out
}

// LightPosition returns the eye of a directional light's camera looking at the origin: the
// reversed, normalized direction. A zero direction falls back to straight down.
func LightPosition(dir mgl32.Vec3) mgl32.Vec3 {
	return common.NormalizeOr(dir, mgl32.Vec3{0, -1, 0}).Mul(-1)
}

// LightUp returns an up vector usable for a light shining along dir.
func LightUp(dir mgl32.Vec3) mgl32.Vec3 {
	return camera.SafeUp(common.NormalizeOr(dir, mgl32.Vec3{0, -1, 0}), mgl32.Vec3{0, 1, 0})
}
