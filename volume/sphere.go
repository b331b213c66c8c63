package volume

import (
	"fmt"
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Sphere represents a bounding sphere. A negative radius is the empty state.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// NewSphere validates a finite center and a non-negative radius.
func NewSphere(center mgl64.Vec3, radius float64) (Sphere, error) {
	s := Sphere{Center: center, Radius: radius}
	if err := s.Validate(); err != nil {
		return Sphere{}, err
	}
	return s, nil
}

// SphereFromPoints fits a sphere with Ritter's algorithm, followed by a pass
// that sets the radius to the largest distance from the final center so that
// every point is enclosed.
func SphereFromPoints(points []mgl64.Vec3) (Sphere, error) {
	if err := geometry.ValidatePoints(points); err != nil {
		return Sphere{}, err
	}

	farthest := func(from mgl64.Vec3) mgl64.Vec3 {
		best := from
		bestDist := -1.0
		for _, p := range points {
			if d := p.Sub(from).LenSqr(); d > bestDist {
				best, bestDist = p, d
			}
		}
		return best
	}

	y := farthest(points[0])
	z := farthest(y)

	center := y.Add(z).Mul(0.5)
	radius := z.Sub(y).Len() * 0.5

	for _, p := range points {
		d := p.Sub(center).Len()
		if d > radius {
			newRadius := (radius + d) * 0.5
			center = center.Add(p.Sub(center).Mul((newRadius - radius) / d))
			radius = newRadius
		}
	}

	for _, p := range points {
		radius = math.Max(radius, p.Sub(center).Len())
	}

	return Sphere{Center: center, Radius: radius}, nil
}

func (s Sphere) Kind() Kind { return KindSphere }
func (s Sphere) sealed() {}

func (s Sphere) IsEmpty() bool {
	return !(s.Radius >= 0)
}

func (s Sphere) Validate() error {
	if !geometry.IsFinite(s.Center) || !validFloat(s.Radius) {
		return fmt.Errorf("%w: sphere must be finite: %v r=%v", ErrInvalidArgument, s.Center, s.Radius)
	}
	if s.Radius < 0 {
		return fmt.Errorf("%w: negative sphere radius %v", ErrInvalidArgument, s.Radius)
	}
	return nil
}

// Bounds is not affected by rotation, only by position
func (s Sphere) Bounds() AABB {
	if s.IsEmpty() {
		return EmptyAABB()
	}
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s Sphere) Centroid() mgl64.Vec3 {
	return s.Center
}

func (s Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < geometry.Epsilon*geometry.Epsilon {
		return s.Center.Add(mgl64.Vec3{s.Radius, 0, 0})
	}
	return s.Center.Add(direction.Normalize().Mul(s.Radius))
}

func (s Sphere) Transformed(t Transform) Volume {
	s.Center = t.Apply(s.Center)
	return s
}

func (s Sphere) ContainsPoint(point mgl64.Vec3) bool {
	return point.Sub(s.Center).LenSqr() <= sq(s.Radius+Epsilon)
}
