// Package core holds the small, allocation-free value types shared by every
// other package: vectors, rays, bounding boxes, and the per-thread sampler.
package core

import (
	"fmt"
	"math"
)

// Vec3 represents a 3D vector or RGB color.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 represents a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float64
}

func NewVec3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }
func NewVec2(x, y float64) Vec2    { return Vec2{X: x, Y: y} }

func (v Vec3) String() string {
	return fmt.Sprintf("{%.4g, %.4g, %.4g}", v.X, v.Y, v.Z)
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Subtract(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Multiply(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// MultiplyVec performs a component-wise (Hadamard) product, used for beta/radiance attenuation.
func (v Vec3) MultiplyVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec3) Divide(s float64) Vec3 { return v.Multiply(1.0 / s) }
func (v Vec3) Negate() Vec3          { return Vec3{-v.X, -v.Y, -v.Z} }

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) LengthSquared() float64 { return v.Dot(v) }
func (v Vec3) Length() float64        { return math.Sqrt(v.LengthSquared()) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Multiply(1.0 / l)
}

// Lerp linearly interpolates between v and o, used by bilinear texture sampling.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Multiply(1 - t).Add(o.Multiply(t))
}

// Reflect mirrors v about the given unit normal.
func (v Vec3) Reflect(normal Vec3) Vec3 {
	return v.Subtract(normal.Multiply(2 * v.Dot(normal)))
}

// MaxComponent returns max(x, y, z), used by the path tracer's Russian-roulette throughput test.
func (v Vec3) MaxComponent() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

func (v Vec3) HasNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

func (v Vec3) Clamp(lo, hi float64) Vec3 {
	return Vec3{clampF(v.X, lo, hi), clampF(v.Y, lo, hi), clampF(v.Z, lo, hi)}
}

func clampF(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// TriVertex is the subset of a scene Vertex that the BRDF/sampling code needs: its position
// (for reflection-vector geometry) and UV (for textured diffuse lookup).
type TriVertex struct {
	Position Vec3
	UV       Vec2
}

// Barycentric is a triple (w0, w1, w2) with wi >= 0 and sum 1, locating a point in a triangle.
type Barycentric struct {
	W0, W1, W2 float64
}

// Interpolate combines three per-vertex values with these barycentric weights.
func (b Barycentric) Interpolate(v0, v1, v2 Vec3) Vec3 {
	return v0.Multiply(b.W0).Add(v1.Multiply(b.W1)).Add(v2.Multiply(b.W2))
}

// InterpolateUV combines three per-vertex UVs with these barycentric weights.
func (b Barycentric) InterpolateUV(uv0, uv1, uv2 Vec2) Vec2 {
	return Vec2{
		X: uv0.X*b.W0 + uv1.X*b.W1 + uv2.X*b.W2,
		Y: uv0.Y*b.W0 + uv1.Y*b.W1 + uv2.Y*b.W2,
	}
}
