package volume

import (
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/akmonengine/collide/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// Raycast returns the distance along ray to the first point of v. A ray
// starting inside v hits at 0.
func Raycast(v Volume, ray geometry.Ray3) (float64, bool) {
	t, _, ok := clip(v, ray.Origin, ray.Direction, 0, math.Inf(1))
	return t, ok
}

// IntersectsLine reports whether the infinite line crosses v.
func IntersectsLine(v Volume, line geometry.Line3) bool {
	_, _, ok := clip(v, line.P, line.Q.Sub(line.P), math.Inf(-1), math.Inf(1))
	return ok
}

// IntersectsSegment reports whether any point of the segment lies in v.
func IntersectsSegment(v Volume, segment geometry.Segment3) bool {
	if Degenerate(v) {
		return false
	}
	if segment.B.Sub(segment.A).LenSqr() < geometry.Epsilon*geometry.Epsilon {
		return v.ContainsPoint(segment.A)
	}
	_, _, ok := clip(v, segment.A, segment.B.Sub(segment.A), 0, 1)
	return ok
}

// IntersectsPlane reports whether v touches or straddles the plane.
func IntersectsPlane(v Volume, plane geometry.Plane) bool {
	if Degenerate(v) {
		return false
	}

	switch v := v.(type) {
	case AABB:
		e := v.HalfExtents()
		n := plane.Normal
		r := e[0]*math.Abs(n[0]) + e[1]*math.Abs(n[1]) + e[2]*math.Abs(n[2])
		return math.Abs(plane.SignedDistance(v.Center())) <= r+Epsilon
	case OBB:
		r := 0.0
		for i := range 3 {
			r += v.HalfExtents[i] * math.Abs(plane.Normal.Dot(v.Axes[i]))
		}
		return math.Abs(plane.SignedDistance(v.Center)) <= r+Epsilon
	case Sphere:
		return math.Abs(plane.SignedDistance(v.Center)) <= v.Radius+Epsilon
	case Capsule:
		da := plane.SignedDistance(v.A)
		db := plane.SignedDistance(v.B)
		if da*db <= 0 {
			return true
		}
		return math.Min(math.Abs(da), math.Abs(db)) <= v.Radius+Epsilon
	}
	return false
}

// IntersectsTriangle runs GJK between v, inflated by Epsilon, and the
// triangle.
func IntersectsTriangle(v Volume, triangle geometry.Triangle) bool {
	if Degenerate(v) {
		return false
	}
	return gjk.Intersect(inflated{v}, triangle)
}

// inflated grows the support mapping of a volume by Epsilon so that touching
// configurations are reported like the closed-form tests do.
type inflated struct {
	Volume
}

func (i inflated) Support(direction mgl64.Vec3) mgl64.Vec3 {
	p := i.Volume.Support(direction)
	if direction.LenSqr() < geometry.Epsilon*geometry.Epsilon {
		return p
	}
	return p.Add(direction.Normalize().Mul(Epsilon))
}

// clip intersects the parametric line origin + t*direction, t in
// [tmin, tmax], with v and returns the covered parameter span.
func clip(v Volume, origin, direction mgl64.Vec3, tmin, tmax float64) (float64, float64, bool) {
	if Degenerate(v) {
		return 0, 0, false
	}

	switch v := v.(type) {
	case AABB:
		return clipAABB(v, origin, direction, tmin, tmax)
	case OBB:
		return clipAABB(v.localBox(), v.ToLocal(origin), v.toLocalDirection(direction), tmin, tmax)
	case Sphere:
		return clipSphere(v.Center, v.Radius, origin, direction, tmin, tmax)
	case Capsule:
		return clipCapsule(v, origin, direction, tmin, tmax)
	}
	return 0, 0, false
}

// clipAABB is the slab test against the box grown by Epsilon.
func clipAABB(box AABB, origin, direction mgl64.Vec3, tmin, tmax float64) (float64, float64, bool) {
	for i := range 3 {
		lo := box.Min[i] - Epsilon
		hi := box.Max[i] + Epsilon

		if math.Abs(direction[i]) < geometry.Epsilon {
			if origin[i] < lo || origin[i] > hi {
				return 0, 0, false
			}
			continue
		}

		inv := 1 / direction[i]
		t1 := (lo - origin[i]) * inv
		t2 := (hi - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

func clipSphere(center mgl64.Vec3, radius float64, origin, direction mgl64.Vec3, tmin, tmax float64) (float64, float64, bool) {
	m := origin.Sub(center)
	a := direction.LenSqr()
	c := m.LenSqr() - sq(radius+Epsilon)
	if a < geometry.Epsilon*geometry.Epsilon {
		if c <= 0 {
			return tmin, tmax, true
		}
		return 0, 0, false
	}

	b := m.Dot(direction)
	disc := b*b - a*c
	if disc < 0 {
		return 0, 0, false
	}
	root := math.Sqrt(disc)
	lo := math.Max(tmin, (-b-root)/a)
	hi := math.Min(tmax, (-b+root)/a)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// clipCapsule merges the spans of the two end spheres and of the cylinder
// between them. The capsule is convex so the union is a single span.
func clipCapsule(c Capsule, origin, direction mgl64.Vec3, tmin, tmax float64) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	hit := false
	merge := func(l, h float64, ok bool) {
		if ok {
			lo, hi, hit = math.Min(lo, l), math.Max(hi, h), true
		}
	}

	merge(clipSphere(c.A, c.Radius, origin, direction, tmin, tmax))
	merge(clipSphere(c.B, c.Radius, origin, direction, tmin, tmax))

	axis := c.B.Sub(c.A)
	length := axis.Len()
	if length >= geometry.Epsilon {
		merge(clipCylinder(c.A, axis.Mul(1/length), length, c.Radius+Epsilon, origin, direction, tmin, tmax))
	}

	return lo, hi, hit
}

// clipCylinder clips against the finite cylinder of the given radius whose
// axis starts at base, runs along the unit vector axis for length.
func clipCylinder(base, axis mgl64.Vec3, length, radius float64, origin, direction mgl64.Vec3, tmin, tmax float64) (float64, float64, bool) {
	m := origin.Sub(base)
	md := m.Dot(axis)
	nd := direction.Dot(axis)

	// span where the axial coordinate lies within [0, length]
	if math.Abs(nd) < geometry.Epsilon {
		if md < 0 || md > length {
			return 0, 0, false
		}
	} else {
		t1 := -md / nd
		t2 := (length - md) / nd
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}

	// span inside the infinite cylinder, from the perpendicular components
	mp := m.Sub(axis.Mul(md))
	np := direction.Sub(axis.Mul(nd))
	a := np.LenSqr()
	c := mp.LenSqr() - radius*radius
	if a < geometry.Epsilon*geometry.Epsilon {
		if c > 0 {
			return 0, 0, false
		}
		return tmin, tmax, true
	}

	b := mp.Dot(np)
	disc := b*b - a*c
	if disc < 0 {
		return 0, 0, false
	}
	root := math.Sqrt(disc)
	lo := math.Max(tmin, (-b-root)/a)
	hi := math.Min(tmax, (-b+root)/a)
	if lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
