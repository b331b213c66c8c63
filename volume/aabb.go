package volume

import (
	"fmt"
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box.
//
// The zero value is a zero-volume box at the origin. EmptyAABB returns the
// degenerate box (Min = +Inf, Max = -Inf) that encloses nothing.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB validates min <= max on every axis.
func NewAABB(min, max mgl64.Vec3) (AABB, error) {
	a := AABB{Min: min, Max: max}
	if err := a.Validate(); err != nil {
		return AABB{}, err
	}
	return a, nil
}

// NewAABBFromCenter builds a box from its center and half-extents.
func NewAABBFromCenter(center, halfExtents mgl64.Vec3) (AABB, error) {
	return NewAABB(center.Sub(halfExtents), center.Add(halfExtents))
}

// EmptyAABB returns the box that contains no point. Expanding it by a point
// yields the zero-volume box at that point.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// AABBFromPoints computes the componentwise min/max of points.
func AABBFromPoints(points []mgl64.Vec3) (AABB, error) {
	if err := geometry.ValidatePoints(points); err != nil {
		return AABB{}, err
	}
	a := EmptyAABB()
	for _, p := range points {
		a = a.ExpandByPoint(p)
	}
	return a, nil
}

func (a AABB) Kind() Kind { return KindAABB }
func (a AABB) sealed() {}

// IsEmpty returns true if max < min on any axis, or a coordinate is NaN.
func (a AABB) IsEmpty() bool {
	for i := range 3 {
		if !(a.Min[i] <= a.Max[i]) {
			return true
		}
	}
	return false
}

func (a AABB) Validate() error {
	if !geometry.IsFinite(a.Min) || !geometry.IsFinite(a.Max) {
		return fmt.Errorf("%w: aabb corners must be finite: %v %v", ErrInvalidArgument, a.Min, a.Max)
	}
	if a.IsEmpty() {
		return fmt.Errorf("%w: aabb min %v exceeds max %v", ErrInvalidArgument, a.Min, a.Max)
	}
	return nil
}

func (a AABB) Bounds() AABB {
	return a
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) Centroid() mgl64.Vec3 {
	return a.Center()
}

// HalfExtents returns half the size of the box on every axis.
func (a AABB) HalfExtents() mgl64.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// Size returns the full extent of the box on every axis.
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

func (a AABB) Support(direction mgl64.Vec3) mgl64.Vec3 {
	out := a.Max
	for i := range 3 {
		if direction[i] < 0 {
			out[i] = a.Min[i]
		}
	}
	return out
}

// Transformed fits a new AABB around the 8 transformed corners.
func (a AABB) Transformed(t Transform) Volume {
	if a.IsEmpty() {
		return a
	}

	corners := [8]mgl64.Vec3{
		{a.Min.X(), a.Min.Y(), a.Min.Z()},
		{a.Max.X(), a.Min.Y(), a.Min.Z()},
		{a.Min.X(), a.Max.Y(), a.Min.Z()},
		{a.Max.X(), a.Max.Y(), a.Min.Z()},
		{a.Min.X(), a.Min.Y(), a.Max.Z()},
		{a.Max.X(), a.Min.Y(), a.Max.Z()},
		{a.Min.X(), a.Max.Y(), a.Max.Z()},
		{a.Max.X(), a.Max.Y(), a.Max.Z()},
	}

	out := EmptyAABB()
	for _, corner := range corners {
		out = out.ExpandByPoint(t.Apply(corner))
	}
	return out
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X()-Epsilon && point.X() <= a.Max.X()+Epsilon &&
		point.Y() >= a.Min.Y()-Epsilon && point.Y() <= a.Max.Y()+Epsilon &&
		point.Z() >= a.Min.Z()-Epsilon && point.Z() <= a.Max.Z()+Epsilon
}

// ContainsAABB reports whether other lies entirely inside a.
func (a AABB) ContainsAABB(other AABB) bool {
	if other.IsEmpty() {
		return true
	}
	return a.ContainsPoint(other.Min) && a.ContainsPoint(other.Max)
}

// Overlaps checks if two AABBs overlap. Touching boxes overlap.
func (a AABB) Overlaps(other AABB) bool {
	if a.IsEmpty() || other.IsEmpty() {
		return false
	}
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X()-Epsilon && a.Min.X() <= other.Max.X()+Epsilon &&
		a.Max.Y() >= other.Min.Y()-Epsilon && a.Min.Y() <= other.Max.Y()+Epsilon &&
		a.Max.Z() >= other.Min.Z()-Epsilon && a.Min.Z() <= other.Max.Z()+Epsilon
}

// ExpandByPoint grows the box to include point.
func (a AABB) ExpandByPoint(point mgl64.Vec3) AABB {
	for i := range 3 {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Union returns the smallest box enclosing both boxes.
func (a AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return a
	}
	if a.IsEmpty() {
		return other
	}
	return a.ExpandByPoint(other.Min).ExpandByPoint(other.Max)
}

// Expand grows the box by margin on every side.
func (a AABB) Expand(margin float64) AABB {
	if a.IsEmpty() {
		return a
	}
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// ClosestPoint clamps point into the box.
func (a AABB) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	for i := range 3 {
		point[i] = math.Max(a.Min[i], math.Min(a.Max[i], point[i]))
	}
	return point
}

// OBB returns the box as an oriented box with world axes.
func (a AABB) OBB() OBB {
	return OBB{
		Center:      a.Center(),
		Axes:        worldAxes,
		HalfExtents: a.HalfExtents(),
	}
}
