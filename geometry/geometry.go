// Package geometry holds the primitive value types consumed by the
// intersection routines of the volume package: lines, rays, segments,
// planes and triangles, along with the closest-point helpers they share.
//
// Vectors are plain mgl64 values. Every type here is immutable once
// constructed; methods return new values.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidArgument reports malformed geometric input: empty point sets,
// non-finite coordinates, negative radii or extents, degenerate primitives.
var ErrInvalidArgument = errors.New("invalid argument")

// Epsilon is the length below which a direction is treated as zero.
const Epsilon = 1e-12

// IsFinite reports whether every component of v is neither NaN nor infinite.
func IsFinite(v mgl64.Vec3) bool {
	for i := range 3 {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}

// ValidatePoints rejects empty point sets and non-finite coordinates.
func ValidatePoints(points []mgl64.Vec3) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: empty point set", ErrInvalidArgument)
	}
	for i, p := range points {
		if !IsFinite(p) {
			return fmt.Errorf("%w: point %d is not finite: %v", ErrInvalidArgument, i, p)
		}
	}
	return nil
}

// Centroid returns the arithmetic mean of points. It returns the zero vector
// for an empty slice.
func Centroid(points []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	if len(points) == 0 {
		return sum
	}
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
