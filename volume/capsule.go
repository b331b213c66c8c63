package volume

import (
	"fmt"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is the set of points within Radius of the segment AB.
type Capsule struct {
	A      mgl64.Vec3
	B      mgl64.Vec3
	Radius float64
}

func NewCapsule(a, b mgl64.Vec3, radius float64) (Capsule, error) {
	c := Capsule{A: a, B: b, Radius: radius}
	if err := c.Validate(); err != nil {
		return Capsule{}, err
	}
	return c, nil
}

func (c Capsule) Kind() Kind { return KindCapsule }
func (c Capsule) sealed() {}

func (c Capsule) IsEmpty() bool {
	return !(c.Radius >= 0)
}

func (c Capsule) Validate() error {
	if !geometry.IsFinite(c.A) || !geometry.IsFinite(c.B) || !validFloat(c.Radius) {
		return fmt.Errorf("%w: capsule must be finite", ErrInvalidArgument)
	}
	if c.Radius < 0 {
		return fmt.Errorf("%w: negative capsule radius %v", ErrInvalidArgument, c.Radius)
	}
	return nil
}

// Segment returns the core segment of the capsule.
func (c Capsule) Segment() geometry.Segment3 {
	return geometry.Segment3{A: c.A, B: c.B}
}

func (c Capsule) Bounds() AABB {
	if c.IsEmpty() {
		return EmptyAABB()
	}
	return AABB{Min: c.A, Max: c.A}.ExpandByPoint(c.B).Expand(c.Radius)
}

func (c Capsule) Centroid() mgl64.Vec3 {
	return c.A.Add(c.B).Mul(0.5)
}

func (c Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	end := c.A
	if c.B.Dot(direction) > c.A.Dot(direction) {
		end = c.B
	}
	if direction.LenSqr() < geometry.Epsilon*geometry.Epsilon {
		return end
	}
	return end.Add(direction.Normalize().Mul(c.Radius))
}

func (c Capsule) Transformed(t Transform) Volume {
	c.A = t.Apply(c.A)
	c.B = t.Apply(c.B)
	return c
}

func (c Capsule) ContainsPoint(point mgl64.Vec3) bool {
	return c.Segment().DistanceSqr(point) <= sq(c.Radius+Epsilon)
}
