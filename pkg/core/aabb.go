package core

import "math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Lower, Upper Vec3
}

func NewAABB(lower, upper Vec3) AABB { return AABB{Lower: lower, Upper: upper} }

func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	lower, upper := points[0], points[0]
	for _, p := range points[1:] {
		lower = Vec3{math.Min(lower.X, p.X), math.Min(lower.Y, p.Y), math.Min(lower.Z, p.Z)}
		upper = Vec3{math.Max(upper.X, p.X), math.Max(upper.Y, p.Y), math.Max(upper.Z, p.Z)}
	}
	return AABB{Lower: lower, Upper: upper}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Lower: Vec3{math.Min(b.Lower.X, o.Lower.X), math.Min(b.Lower.Y, o.Lower.Y), math.Min(b.Lower.Z, o.Lower.Z)},
		Upper: Vec3{math.Max(b.Upper.X, o.Upper.X), math.Max(b.Upper.Y, o.Upper.Y), math.Max(b.Upper.Z, o.Upper.Z)},
	}
}

func (b AABB) Center() Vec3 { return b.Lower.Add(b.Upper).Multiply(0.5) }
func (b AABB) Size() Vec3   { return b.Upper.Subtract(b.Lower) }

func (b AABB) SurfaceArea() float64 {
	s := b.Size()
	return 2.0 * (s.X*s.Y + s.Y*s.Z + s.Z*s.X)
}

// Contains reports whether p lies within the box (inclusive).
func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Lower.X && p.X <= b.Upper.X &&
		p.Y >= b.Lower.Y && p.Y <= b.Upper.Y &&
		p.Z >= b.Lower.Z && p.Z <= b.Upper.Z
}

// Overlaps reports whether two boxes share any volume.
func (b AABB) Overlaps(o AABB) bool {
	return b.Lower.X <= o.Upper.X && b.Upper.X >= o.Lower.X &&
		b.Lower.Y <= o.Upper.Y && b.Upper.Y >= o.Lower.Y &&
		b.Lower.Z <= o.Upper.Z && b.Upper.Z >= o.Lower.Z
}

// Expand returns a box grown by amount on every axis in every direction.
func (b AABB) Expand(amount float64) AABB {
	e := Vec3{amount, amount, amount}
	return AABB{Lower: b.Lower.Subtract(e), Upper: b.Upper.Add(e)}
}

// Axis returns the lower/upper bound of the box along the given axis (0=x, 1=y, 2=z).
func (b AABB) Axis(axis int) (lower, upper float64) {
	switch axis {
	case 0:
		return b.Lower.X, b.Upper.X
	case 1:
		return b.Lower.Y, b.Upper.Y
	default:
		return b.Lower.Z, b.Upper.Z
	}
}

// WithAxisUpper returns a copy of b with upper[axis] replaced by v — used to build the left
// child's box at a kd-tree split.
func (b AABB) WithAxisUpper(axis int, v float64) AABB {
	out := b
	switch axis {
	case 0:
		out.Upper.X = v
	case 1:
		out.Upper.Y = v
	default:
		out.Upper.Z = v
	}
	return out
}

// WithAxisLower returns a copy of b with lower[axis] replaced by v — used to build the right
// child's box at a kd-tree split.
func (b AABB) WithAxisLower(axis int, v float64) AABB {
	out := b
	switch axis {
	case 0:
		out.Lower.X = v
	case 1:
		out.Lower.Y = v
	default:
		out.Lower.Z = v
	}
	return out
}

// Hit implements the slab test of spec §4.7: a ray that starts inside the box is always
// accepted; otherwise tmin/tmax are intersected across all three axes.
func (b AABB) Hit(ray Ray) bool {
	if b.Contains(ray.Origin) {
		return true
	}

	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lower, upper := b.Axis(axis)
		origin, dir := component(ray.Origin, axis), component(ray.Direction, axis)

		if math.Abs(dir) < 1e-12 {
			if origin < lower || origin > upper {
				return false
			}
			continue
		}

		inv := 1.0 / dir
		t1 := (lower - origin) * inv
		t2 := (upper - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
	}

	return tMax >= tMin
}

func component(v Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
