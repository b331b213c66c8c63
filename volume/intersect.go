package volume

import (
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// goldenSectionSteps shrinks the search interval of the segment-to-box
// distance below 1e-20 of the segment length.
const goldenSectionSteps = 100

type pairTest func(a, b Volume) bool

// pairTests holds one test per ordered pair of kinds. A test asserts that no
// cell is nil.
var pairTests = [kindCount][kindCount]pairTest{
	KindAABB: {
		KindAABB:    func(a, b Volume) bool { return a.(AABB).Overlaps(b.(AABB)) },
		KindSphere:  func(a, b Volume) bool { return IntersectAABBSphere(a.(AABB), b.(Sphere)) },
		KindOBB:     func(a, b Volume) bool { return IntersectOBBOBB(a.(AABB).OBB(), b.(OBB)) },
		KindCapsule: func(a, b Volume) bool { return IntersectCapsuleOBB(b.(Capsule), a.(AABB).OBB()) },
	},
	KindSphere: {
		KindAABB:    func(a, b Volume) bool { return IntersectAABBSphere(b.(AABB), a.(Sphere)) },
		KindSphere:  func(a, b Volume) bool { return IntersectSphereSphere(a.(Sphere), b.(Sphere)) },
		KindOBB:     func(a, b Volume) bool { return IntersectOBBSphere(b.(OBB), a.(Sphere)) },
		KindCapsule: func(a, b Volume) bool { return IntersectCapsuleSphere(b.(Capsule), a.(Sphere)) },
	},
	KindOBB: {
		KindAABB:    func(a, b Volume) bool { return IntersectOBBOBB(a.(OBB), b.(AABB).OBB()) },
		KindSphere:  func(a, b Volume) bool { return IntersectOBBSphere(a.(OBB), b.(Sphere)) },
		KindOBB:     func(a, b Volume) bool { return IntersectOBBOBB(a.(OBB), b.(OBB)) },
		KindCapsule: func(a, b Volume) bool { return IntersectCapsuleOBB(b.(Capsule), a.(OBB)) },
	},
	KindCapsule: {
		KindAABB:    func(a, b Volume) bool { return IntersectCapsuleOBB(a.(Capsule), b.(AABB).OBB()) },
		KindSphere:  func(a, b Volume) bool { return IntersectCapsuleSphere(a.(Capsule), b.(Sphere)) },
		KindOBB:     func(a, b Volume) bool { return IntersectCapsuleOBB(a.(Capsule), b.(OBB)) },
		KindCapsule: func(a, b Volume) bool { return IntersectCapsuleCapsule(a.(Capsule), b.(Capsule)) },
	},
}

// IntersectAABBSphere clamps the sphere center into the box.
func IntersectAABBSphere(a AABB, s Sphere) bool {
	closest := a.ClosestPoint(s.Center)
	return closest.Sub(s.Center).LenSqr() <= sq(s.Radius+Epsilon)
}

// IntersectSphereSphere compares the squared center distance with the
// squared radius sum.
func IntersectSphereSphere(a, b Sphere) bool {
	return a.Center.Sub(b.Center).LenSqr() <= sq(a.Radius+b.Radius+Epsilon)
}

// IntersectOBBSphere clamps the sphere center into the box frame.
func IntersectOBBSphere(o OBB, s Sphere) bool {
	closest := o.ClosestPoint(s.Center)
	return closest.Sub(s.Center).LenSqr() <= sq(s.Radius+Epsilon)
}

// IntersectOBBOBB runs the separating axis test over the 15 candidate axes:
// the 3 face normals of each box and the 9 pairwise edge cross products
// (Gottschalk, Ericson "Real-Time Collision Detection" 4.4.1). The absolute
// rotation terms of the edge axes carry SATEpsilon: nearly parallel edges
// produce a vanishing cross product axis, which then never separates.
func IntersectOBBOBB(a, b OBB) bool {
	ea, eb := a.HalfExtents, b.HalfExtents

	var r, absR, absRe [3][3]float64
	for i := range 3 {
		for j := range 3 {
			r[i][j] = a.Axes[i].Dot(b.Axes[j])
			absR[i][j] = math.Abs(r[i][j])
			absRe[i][j] = absR[i][j] + SATEpsilon
		}
	}

	// translation in the frame of a
	d := b.Center.Sub(a.Center)
	t := mgl64.Vec3{d.Dot(a.Axes[0]), d.Dot(a.Axes[1]), d.Dot(a.Axes[2])}

	separated := func(dist, ra, rb float64) bool {
		return math.Abs(dist) > ra+rb+Epsilon
	}

	// face normals of a
	for i := range 3 {
		rb := eb[0]*absR[i][0] + eb[1]*absR[i][1] + eb[2]*absR[i][2]
		if separated(t[i], ea[i], rb) {
			return false
		}
	}

	// face normals of b
	for j := range 3 {
		ra := ea[0]*absR[0][j] + ea[1]*absR[1][j] + ea[2]*absR[2][j]
		dist := t[0]*r[0][j] + t[1]*r[1][j] + t[2]*r[2][j]
		if separated(dist, ra, eb[j]) {
			return false
		}
	}

	// a0 x b0, a0 x b1, a0 x b2
	if separated(t[2]*r[1][0]-t[1]*r[2][0], ea[1]*absRe[2][0]+ea[2]*absRe[1][0], eb[1]*absRe[0][2]+eb[2]*absRe[0][1]) {
		return false
	}
	if separated(t[2]*r[1][1]-t[1]*r[2][1], ea[1]*absRe[2][1]+ea[2]*absRe[1][1], eb[0]*absRe[0][2]+eb[2]*absRe[0][0]) {
		return false
	}
	if separated(t[2]*r[1][2]-t[1]*r[2][2], ea[1]*absRe[2][2]+ea[2]*absRe[1][2], eb[0]*absRe[0][1]+eb[1]*absRe[0][0]) {
		return false
	}

	// a1 x b0, a1 x b1, a1 x b2
	if separated(t[0]*r[2][0]-t[2]*r[0][0], ea[0]*absRe[2][0]+ea[2]*absRe[0][0], eb[1]*absRe[1][2]+eb[2]*absRe[1][1]) {
		return false
	}
	if separated(t[0]*r[2][1]-t[2]*r[0][1], ea[0]*absRe[2][1]+ea[2]*absRe[0][1], eb[0]*absRe[1][2]+eb[2]*absRe[1][0]) {
		return false
	}
	if separated(t[0]*r[2][2]-t[2]*r[0][2], ea[0]*absRe[2][2]+ea[2]*absRe[0][2], eb[0]*absRe[1][1]+eb[1]*absRe[1][0]) {
		return false
	}

	// a2 x b0, a2 x b1, a2 x b2
	if separated(t[1]*r[0][0]-t[0]*r[1][0], ea[0]*absRe[1][0]+ea[1]*absRe[0][0], eb[1]*absRe[2][2]+eb[2]*absRe[2][1]) {
		return false
	}
	if separated(t[1]*r[0][1]-t[0]*r[1][1], ea[0]*absRe[1][1]+ea[1]*absRe[0][1], eb[0]*absRe[2][2]+eb[2]*absRe[2][0]) {
		return false
	}
	if separated(t[1]*r[0][2]-t[0]*r[1][2], ea[0]*absRe[1][2]+ea[1]*absRe[0][2], eb[0]*absRe[2][1]+eb[1]*absRe[2][0]) {
		return false
	}

	return true
}

// IntersectCapsuleCapsule compares the distance between the two core
// segments with the radius sum.
func IntersectCapsuleCapsule(a, b Capsule) bool {
	return geometry.SegmentsDistanceSqr(a.Segment(), b.Segment()) <= sq(a.Radius+b.Radius+Epsilon)
}

// IntersectCapsuleSphere compares the distance from the sphere center to the
// core segment with the radius sum.
func IntersectCapsuleSphere(c Capsule, s Sphere) bool {
	return c.Segment().DistanceSqr(s.Center) <= sq(c.Radius+s.Radius+Epsilon)
}

// IntersectCapsuleOBB compares the distance from the core segment to the box
// with the capsule radius.
func IntersectCapsuleOBB(c Capsule, o OBB) bool {
	return segmentOBBDistanceSqr(c.Segment(), o) <= sq(c.Radius+Epsilon)
}

// segmentOBBDistanceSqr returns zero when the segment crosses the box.
// Otherwise the squared distance from a point of the segment to the box is a
// convex function of the segment parameter, minimised by golden-section
// search.
func segmentOBBDistanceSqr(s geometry.Segment3, o OBB) float64 {
	a := o.ToLocal(s.A)
	b := o.ToLocal(s.B)
	box := o.localBox()

	if _, _, ok := clipAABB(box, a, b.Sub(a), 0, 1); ok {
		return 0
	}

	dist := func(t float64) float64 {
		p := a.Add(b.Sub(a).Mul(t))
		return box.ClosestPoint(p).Sub(p).LenSqr()
	}

	invPhi := (math.Sqrt(5) - 1) / 2
	lo, hi := 0.0, 1.0
	x1 := hi - invPhi*(hi-lo)
	x2 := lo + invPhi*(hi-lo)
	f1, f2 := dist(x1), dist(x2)
	for range goldenSectionSteps {
		if f1 <= f2 {
			hi, x2, f2 = x2, x1, f1
			x1 = hi - invPhi*(hi-lo)
			f1 = dist(x1)
		} else {
			lo, x1, f1 = x1, x2, f2
			x2 = lo + invPhi*(hi-lo)
			f2 = dist(x2)
		}
	}

	return math.Min(math.Min(f1, f2), math.Min(dist(0), dist(1)))
}
