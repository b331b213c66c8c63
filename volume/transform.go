package volume

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a rigid placement in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// rotation treats the zero quaternion of an unset Transform as identity.
func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return t.Rotation.Normalize()
}

// IsIdentity reports whether t leaves every point in place.
func (t Transform) IsIdentity() bool {
	q := t.rotation()
	return t.Position == (mgl64.Vec3{}) && q.V.LenSqr() == 0
}

// Rotate applies only the rotational part of t to v.
func (t Transform) Rotate(v mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(v)
}

// Apply maps a local point to world space: rotation, then translation.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotate(p).Add(t.Position)
}
