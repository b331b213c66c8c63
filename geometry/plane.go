package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is defined by the equation: Normal · p + Distance = 0
// where Normal has unit length.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewPlane builds the plane with the given normal passing through point.
func NewPlane(normal, point mgl64.Vec3) (Plane, error) {
	if !IsFinite(normal) || !IsFinite(point) {
		return Plane{}, fmt.Errorf("%w: plane must be finite", ErrInvalidArgument)
	}
	if normal.LenSqr() < Epsilon*Epsilon {
		return Plane{}, fmt.Errorf("%w: zero plane normal", ErrInvalidArgument)
	}
	n := normal.Normalize()
	return Plane{Normal: n, Distance: -n.Dot(point)}, nil
}

// PlaneFromPoints builds the plane through three non-collinear points,
// oriented counter-clockwise.
func PlaneFromPoints(a, b, c mgl64.Vec3) (Plane, error) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < Epsilon*Epsilon {
		return Plane{}, fmt.Errorf("%w: collinear plane points", ErrInvalidArgument)
	}
	return NewPlane(n, a)
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Distance
}

// Project returns the orthogonal projection of point onto the plane.
func (p Plane) Project(point mgl64.Vec3) mgl64.Vec3 {
	return point.Sub(p.Normal.Mul(p.SignedDistance(point)))
}

// IntersectRay returns the ray parameter where the ray crosses the plane.
// A ray lying in the plane hits at t = 0.
func (p Plane) IntersectRay(r Ray3) (float64, bool) {
	dist := p.SignedDistance(r.Origin)
	denom := p.Normal.Dot(r.Direction)
	if math.Abs(denom) < Epsilon {
		if math.Abs(dist) < Epsilon {
			return 0, true
		}
		return 0, false
	}
	t := -dist / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}
