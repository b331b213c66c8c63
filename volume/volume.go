// Package volume implements the bounding volumes used for collision
// detection: axis-aligned boxes, spheres, oriented boxes and capsules.
//
// The set of kinds is closed. Every ordered pair of kinds has an entry in
// the dispatch table behind Intersects, and all tests share one inclusive
// tolerance: a separation gap of at most Epsilon counts as an overlap.
// Degenerate volumes, empty ones and those shrunk to a single point, never
// intersect anything.
package volume

import (
	"fmt"
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidArgument is returned for malformed volumes and point sets.
var ErrInvalidArgument = geometry.ErrInvalidArgument

const (
	// Epsilon is the largest separation gap still reported as an overlap.
	Epsilon = 1e-9

	// SATEpsilon biases the absolute rotation terms of the OBB separating
	// axis test so that near-parallel edge axes never yield false negatives.
	SATEpsilon = 1e-6

	// OrthoTolerance bounds the deviation of OBB axes from an orthonormal basis.
	OrthoTolerance = 1e-6
)

// Kind identifies one of the four volume variants.
type Kind uint8

const (
	KindAABB Kind = iota
	KindSphere
	KindOBB
	KindCapsule

	kindCount
)

// Kinds lists every volume kind, in declaration order.
var Kinds = [kindCount]Kind{KindAABB, KindSphere, KindOBB, KindCapsule}

func (k Kind) String() string {
	switch k {
	case KindAABB:
		return "aabb"
	case KindSphere:
		return "sphere"
	case KindOBB:
		return "obb"
	case KindCapsule:
		return "capsule"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown volume kind %q", ErrInvalidArgument, s)
}

// Volume is implemented by AABB, Sphere, OBB and Capsule only.
type Volume interface {
	Kind() Kind
	// IsEmpty reports the degenerate state that never intersects anything.
	IsEmpty() bool
	// Validate returns ErrInvalidArgument for non-finite or malformed data.
	Validate() error
	// Bounds returns the tightest AABB enclosing the volume.
	Bounds() AABB
	Centroid() mgl64.Vec3
	// Support returns the point of the volume furthest along direction.
	Support(direction mgl64.Vec3) mgl64.Vec3
	// Transformed returns the volume, of the same kind, moved by t.
	Transformed(t Transform) Volume
	ContainsPoint(point mgl64.Vec3) bool

	sealed()
}

// FromPoints fits a volume of the requested kind around points. On error the
// returned volume is nil.
func FromPoints(kind Kind, points []mgl64.Vec3) (Volume, error) {
	var (
		v   Volume
		err error
	)
	switch kind {
	case KindAABB:
		v, err = AABBFromPoints(points)
	case KindSphere:
		v, err = SphereFromPoints(points)
	case KindOBB:
		v, err = OBBFromPoints(points)
	case KindCapsule:
		v, err = CapsuleFromPoints(points)
	default:
		return nil, fmt.Errorf("%w: unknown volume kind %d", ErrInvalidArgument, kind)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Degenerate reports a nil or empty volume, or one whose fit has zero extent
// on every axis.
func Degenerate(v Volume) bool {
	if v == nil || v.IsEmpty() {
		return true
	}
	return v.Bounds().Size() == (mgl64.Vec3{})
}

// Intersects reports whether a and b overlap. It is symmetric and inclusive.
func Intersects(a, b Volume) bool {
	if Degenerate(a) || Degenerate(b) {
		return false
	}
	return pairTests[a.Kind()][b.Kind()](a, b)
}

func validFloat(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sq(f float64) float64 {
	return f * f
}
