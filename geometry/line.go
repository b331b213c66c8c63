package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Line3 is the infinite line passing through P and Q.
type Line3 struct {
	P mgl64.Vec3
	Q mgl64.Vec3
}

// NewLine3 builds a line through two distinct finite points.
func NewLine3(p, q mgl64.Vec3) (Line3, error) {
	if !IsFinite(p) || !IsFinite(q) {
		return Line3{}, fmt.Errorf("%w: line points must be finite", ErrInvalidArgument)
	}
	if q.Sub(p).LenSqr() < Epsilon*Epsilon {
		return Line3{}, fmt.Errorf("%w: line points coincide", ErrInvalidArgument)
	}
	return Line3{P: p, Q: q}, nil
}

// Direction returns the unit direction from P to Q.
func (l Line3) Direction() mgl64.Vec3 {
	return l.Q.Sub(l.P).Normalize()
}

// ClosestPoint projects point onto the line.
func (l Line3) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	d := l.Q.Sub(l.P)
	dd := d.LenSqr()
	if dd < Epsilon*Epsilon {
		return l.P
	}
	t := point.Sub(l.P).Dot(d) / dd
	return l.P.Add(d.Mul(t))
}

// Ray3 is a half-line starting at Origin. Direction has unit length.
type Ray3 struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay3 normalizes direction; a zero or non-finite direction is rejected.
func NewRay3(origin, direction mgl64.Vec3) (Ray3, error) {
	if !IsFinite(origin) || !IsFinite(direction) {
		return Ray3{}, fmt.Errorf("%w: ray must be finite", ErrInvalidArgument)
	}
	if direction.LenSqr() < Epsilon*Epsilon {
		return Ray3{}, fmt.Errorf("%w: zero ray direction", ErrInvalidArgument)
	}
	return Ray3{Origin: origin, Direction: direction.Normalize()}, nil
}

// At returns the point at distance t along the ray.
func (r Ray3) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ClosestPoint returns the point of the ray nearest to point.
func (r Ray3) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	t := math.Max(0, point.Sub(r.Origin).Dot(r.Direction))
	return r.At(t)
}

// Segment3 is the closed segment between A and B.
type Segment3 struct {
	A mgl64.Vec3
	B mgl64.Vec3
}

// Length returns |B - A|.
func (s Segment3) Length() float64 {
	return s.B.Sub(s.A).Len()
}

// Center returns the midpoint of the segment.
func (s Segment3) Center() mgl64.Vec3 {
	return s.A.Add(s.B).Mul(0.5)
}

// ClosestPoint returns the point of the segment nearest to point and its
// parameter t in [0, 1].
func (s Segment3) ClosestPoint(point mgl64.Vec3) (mgl64.Vec3, float64) {
	ab := s.B.Sub(s.A)
	dd := ab.LenSqr()
	if dd < Epsilon*Epsilon {
		return s.A, 0
	}
	t := clamp01(point.Sub(s.A).Dot(ab) / dd)
	return s.A.Add(ab.Mul(t)), t
}

// DistanceSqr returns the squared distance from point to the segment.
func (s Segment3) DistanceSqr(point mgl64.Vec3) float64 {
	c, _ := s.ClosestPoint(point)
	return point.Sub(c).LenSqr()
}

// ClosestPointsSegments computes the closest points c1 on s1 and c2 on s2
// with their parameters s and t. Degenerate segments (points) are handled.
func ClosestPointsSegments(s1, s2 Segment3) (c1, c2 mgl64.Vec3, s, t float64) {
	d1 := s1.B.Sub(s1.A)
	d2 := s2.B.Sub(s2.A)
	r := s1.A.Sub(s2.A)
	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	const eps = Epsilon * Epsilon

	if a <= eps && e <= eps {
		return s1.A, s2.A, 0, 0
	}

	if a <= eps {
		s = 0
		t = clamp01(f / e)
	} else {
		c := d1.Dot(r)
		if e <= eps {
			t = 0
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b

			// Parallel segments pick s = 0 and let the t clamp settle the rest.
			if denom > eps {
				s = clamp01((b*f - c*e) / denom)
			} else {
				s = 0
			}

			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}

	c1 = s1.A.Add(d1.Mul(s))
	c2 = s2.A.Add(d2.Mul(t))
	return c1, c2, s, t
}

// SegmentsDistanceSqr returns the squared distance between two segments.
func SegmentsDistanceSqr(s1, s2 Segment3) float64 {
	c1, c2, _, _ := ClosestPointsSegments(s1, s2)
	return c1.Sub(c2).LenSqr()
}
