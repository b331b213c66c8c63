package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is defined by three vertices, counter-clockwise.
type Triangle struct {
	A, B, C mgl64.Vec3
}

// Normal returns the unit normal, or zero for a degenerate triangle.
func (t Triangle) Normal() mgl64.Vec3 {
	n := t.B.Sub(t.A).Cross(t.C.Sub(t.A))
	if n.LenSqr() < Epsilon*Epsilon {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// Plane returns the supporting plane of the triangle.
func (t Triangle) Plane() (Plane, error) {
	return PlaneFromPoints(t.A, t.B, t.C)
}

// Centroid lets a triangle act as a gjk.Convex.
func (t Triangle) Centroid() mgl64.Vec3 {
	return t.A.Add(t.B).Add(t.C).Mul(1.0 / 3.0)
}

// Barycentric returns the barycentric coordinates (u, v, w) of point
// projected on the triangle plane, such that point = u*A + v*B + w*C.
// A degenerate triangle yields (-2, -1, -1), which no containment test
// accepts.
func (t Triangle) Barycentric(point mgl64.Vec3) mgl64.Vec3 {
	v0 := t.C.Sub(t.A)
	v1 := t.B.Sub(t.A)
	v2 := point.Sub(t.A)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < Epsilon {
		return mgl64.Vec3{-2, -1, -1}
	}

	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv

	// u weights C and v weights B
	return mgl64.Vec3{1 - u - v, v, u}
}

// ContainsPoint reports whether the projection of point falls inside the
// triangle (edges included).
func (t Triangle) ContainsPoint(point mgl64.Vec3) bool {
	bc := t.Barycentric(point)
	return bc[0] >= 0 && bc[1] >= 0 && bc[2] >= 0
}

// ClosestPoint returns the point of the triangle nearest to p, following
// the Voronoi region walk from Ericson, Real-Time Collision Detection 5.1.5.
func (t Triangle) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	a, b, c := t.A, t.B, t.C
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := va + vb + vc
	if math.Abs(denom) < Epsilon {
		// Degenerate triangle: fall back to the closest of its edges.
		best, _ := Segment3{A: a, B: b}.ClosestPoint(p)
		for _, s := range []Segment3{{A: b, B: c}, {A: c, B: a}} {
			q, _ := s.ClosestPoint(p)
			if q.Sub(p).LenSqr() < best.Sub(p).LenSqr() {
				best = q
			}
		}
		return best
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// IntersectRay implements Möller–Trumbore. Both faces are hit.
func (t Triangle) IntersectRay(r Ray3) (float64, bool) {
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < Epsilon {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(t.A)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := e2.Dot(q) * inv
	if dist < 0 {
		return 0, false
	}
	return dist, true
}

// Support returns the vertex furthest along direction.
func (t Triangle) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := t.A
	bestDot := t.A.Dot(direction)
	if d := t.B.Dot(direction); d > bestDot {
		best, bestDot = t.B, d
	}
	if d := t.C.Dot(direction); d > bestDot {
		best = t.C
	}
	return best
}
