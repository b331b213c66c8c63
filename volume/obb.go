package volume

import (
	"fmt"
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

var worldAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// OBB represents an oriented bounding box: a center, three orthonormal axes
// and the half-extent of the box along each axis.
type OBB struct {
	Center      mgl64.Vec3
	Axes        [3]mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// NewOBB validates orthonormal axes and non-negative half-extents.
func NewOBB(center mgl64.Vec3, axes [3]mgl64.Vec3, halfExtents mgl64.Vec3) (OBB, error) {
	o := OBB{Center: center, Axes: axes, HalfExtents: halfExtents}
	if err := o.Validate(); err != nil {
		return OBB{}, err
	}
	return o, nil
}

// NewOBBFromRotation builds a box whose axes are the world axes rotated by q.
func NewOBBFromRotation(center mgl64.Vec3, q mgl64.Quat, halfExtents mgl64.Vec3) (OBB, error) {
	t := Transform{Rotation: q}
	return NewOBB(center, [3]mgl64.Vec3{
		t.Rotate(worldAxes[0]),
		t.Rotate(worldAxes[1]),
		t.Rotate(worldAxes[2]),
	}, halfExtents)
}

func (o OBB) Kind() Kind { return KindOBB }
func (o OBB) sealed() {}

func (o OBB) IsEmpty() bool {
	for i := range 3 {
		if !(o.HalfExtents[i] >= 0) {
			return true
		}
	}
	return false
}

func (o OBB) Validate() error {
	if !geometry.IsFinite(o.Center) || !geometry.IsFinite(o.HalfExtents) {
		return fmt.Errorf("%w: obb must be finite", ErrInvalidArgument)
	}
	for i := range 3 {
		if o.HalfExtents[i] < 0 {
			return fmt.Errorf("%w: negative obb half-extent %v", ErrInvalidArgument, o.HalfExtents)
		}
		if !geometry.IsFinite(o.Axes[i]) {
			return fmt.Errorf("%w: obb axis %d is not finite", ErrInvalidArgument, i)
		}
		if math.Abs(o.Axes[i].Len()-1) > OrthoTolerance {
			return fmt.Errorf("%w: obb axis %d is not unit length", ErrInvalidArgument, i)
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(o.Axes[i].Dot(o.Axes[j])) > OrthoTolerance {
				return fmt.Errorf("%w: obb axes %d and %d are not orthogonal", ErrInvalidArgument, i, j)
			}
		}
	}
	return nil
}

// Bounds projects the half-extents of every axis onto the world axes.
func (o OBB) Bounds() AABB {
	if o.IsEmpty() {
		return EmptyAABB()
	}
	var extent mgl64.Vec3
	for k := range 3 {
		for i := range 3 {
			extent[k] += math.Abs(o.Axes[i][k]) * o.HalfExtents[i]
		}
	}
	return AABB{Min: o.Center.Sub(extent), Max: o.Center.Add(extent)}
}

func (o OBB) Centroid() mgl64.Vec3 {
	return o.Center
}

func (o OBB) Support(direction mgl64.Vec3) mgl64.Vec3 {
	out := o.Center
	for i := range 3 {
		h := o.HalfExtents[i]
		if direction.Dot(o.Axes[i]) < 0 {
			h = -h
		}
		out = out.Add(o.Axes[i].Mul(h))
	}
	return out
}

func (o OBB) Transformed(t Transform) Volume {
	o.Center = t.Apply(o.Center)
	for i := range 3 {
		o.Axes[i] = t.Rotate(o.Axes[i])
	}
	return o
}

// ToLocal expresses a world point in the box frame, relative to its center.
func (o OBB) ToLocal(point mgl64.Vec3) mgl64.Vec3 {
	d := point.Sub(o.Center)
	return mgl64.Vec3{d.Dot(o.Axes[0]), d.Dot(o.Axes[1]), d.Dot(o.Axes[2])}
}

// toLocalDirection rotates a world direction into the box frame.
func (o OBB) toLocalDirection(direction mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{direction.Dot(o.Axes[0]), direction.Dot(o.Axes[1]), direction.Dot(o.Axes[2])}
}

// ClosestPoint returns the point of the box nearest to point.
func (o OBB) ClosestPoint(point mgl64.Vec3) mgl64.Vec3 {
	local := o.ToLocal(point)
	out := o.Center
	for i := range 3 {
		d := math.Max(-o.HalfExtents[i], math.Min(o.HalfExtents[i], local[i]))
		out = out.Add(o.Axes[i].Mul(d))
	}
	return out
}

func (o OBB) ContainsPoint(point mgl64.Vec3) bool {
	local := o.ToLocal(point)
	for i := range 3 {
		if math.Abs(local[i]) > o.HalfExtents[i]+Epsilon {
			return false
		}
	}
	return true
}

// localBox is the box in its own frame, centered on the origin.
func (o OBB) localBox() AABB {
	return AABB{Min: o.HalfExtents.Mul(-1), Max: o.HalfExtents}
}
