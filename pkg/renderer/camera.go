package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/felsrender/pathtracer/pkg/core"
)

// Camera generates primary rays from screen-space pixel coordinates by inverting the
// combined view-projection matrix once per camera, the way the original view_raytracer.cpp's
// Trace loop forms inv_mvp once and reuses it per pixel.
type Camera struct {
	position    core.Vec3
	invViewProj mgl64.Mat4
}

// NewCamera builds a camera looking from eye toward target, with the given vertical field
// of view (degrees) and aspect ratio (width/height).
func NewCamera(eye, target, up core.Vec3, fovYDegrees, aspect, near, far float64) *Camera {
	e := mgl64.Vec3{eye.X, eye.Y, eye.Z}
	t := mgl64.Vec3{target.X, target.Y, target.Z}
	u := mgl64.Vec3{up.X, up.Y, up.Z}

	view := mgl64.LookAtV(e, t, u)
	proj := mgl64.Perspective(mgl64.DegToRad(fovYDegrees), aspect, near, far)

	return &Camera{
		position:    eye,
		invViewProj: proj.Mul4(view).Inv(),
	}
}

// RayThrough generates the camera ray passing through normalized device coordinates
// (ndcX, ndcY), each in [-1, 1] with +y at the top of the view, per spec §4.9: transform
// (ndcX, ndcY, 1, 1) by the inverse of the combined view-projection matrix in one step, then
// normalize the result directly into a ray direction (mirroring view_raytracer.cpp's
// `normalize(inv_mvp * ray_r)`). Callers flip pixel rows into ndcY themselves.
func (c *Camera) RayThrough(ndcX, ndcY float64) core.Ray {
	target := c.invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})

	dir := core.Vec3{X: target.X(), Y: target.Y(), Z: target.Z()}.Normalize()
	return core.NewRay(c.position, dir)
}
