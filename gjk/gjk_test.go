package gjk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type testSphere struct {
	center mgl64.Vec3
	radius float64
}

func (s testSphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() == 0 {
		return s.center
	}
	return s.center.Add(direction.Normalize().Mul(s.radius))
}

func (s testSphere) Centroid() mgl64.Vec3 { return s.center }

type testBox struct {
	center      mgl64.Vec3
	halfExtents mgl64.Vec3
}

func (b testBox) Support(direction mgl64.Vec3) mgl64.Vec3 {
	out := b.center
	for i := range 3 {
		if direction[i] < 0 {
			out[i] -= b.halfExtents[i]
		} else {
			out[i] += b.halfExtents[i]
		}
	}
	return out
}

func (b testBox) Centroid() mgl64.Vec3 { return b.center }

type testTriangle [3]mgl64.Vec3

func (t testTriangle) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := t[0]
	for _, p := range t[1:] {
		if p.Dot(direction) > best.Dot(direction) {
			best = p
		}
	}
	return best
}

func (t testTriangle) Centroid() mgl64.Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Mul(1.0 / 3.0)
}

func TestMinkowskiSupport(t *testing.T) {
	t.Run("two separated spheres along x-axis", func(t *testing.T) {
		a := testSphere{mgl64.Vec3{0, 0, 0}, 1}
		b := testSphere{mgl64.Vec3{3, 0, 0}, 1}

		// max(A.x) - min(B.x) = 1 - 2 = -1
		support := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
		if support.X() != -1.0 {
			t.Errorf("Expected support.X = -1, got %v", support.X())
		}
	})

	t.Run("two overlapping spheres", func(t *testing.T) {
		a := testSphere{mgl64.Vec3{0, 0, 0}, 1}
		b := testSphere{mgl64.Vec3{1.5, 0, 0}, 1}

		support := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
		if support.X() != 0.5 {
			t.Errorf("Expected support.X = 0.5, got %v", support.X())
		}
	})
}

func TestGJK_Spheres(t *testing.T) {
	tests := []struct {
		name     string
		a, b     testSphere
		expected bool
	}{
		{"overlapping", testSphere{mgl64.Vec3{0, 0, 0}, 1}, testSphere{mgl64.Vec3{1.5, 0, 0}, 1}, true},
		{"identical positions", testSphere{mgl64.Vec3{0, 0, 0}, 1}, testSphere{mgl64.Vec3{0, 0, 0}, 1}, true},
		{"far apart", testSphere{mgl64.Vec3{0, 0, 0}, 1}, testSphere{mgl64.Vec3{10, 0, 0}, 1}, false},
		{"barely separated", testSphere{mgl64.Vec3{0, 0, 0}, 1}, testSphere{mgl64.Vec3{2.1, 0, 0}, 1}, false},
		{"separated diagonally", testSphere{mgl64.Vec3{0, 0, 0}, 1}, testSphere{mgl64.Vec3{3, 3, 3}, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GJK(tt.a, tt.b, &Simplex{}); got != tt.expected {
				t.Errorf("GJK() = %v, want %v", got, tt.expected)
			}
			// Symmetry
			if got := GJK(tt.b, tt.a, &Simplex{}); got != tt.expected {
				t.Errorf("GJK() swapped = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGJK_Boxes(t *testing.T) {
	unit := mgl64.Vec3{1, 1, 1}
	tests := []struct {
		name     string
		a, b     testBox
		expected bool
	}{
		{"overlapping", testBox{mgl64.Vec3{0, 0, 0}, unit}, testBox{mgl64.Vec3{1.5, 0, 0}, unit}, true},
		{"contained", testBox{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{5, 5, 5}}, testBox{mgl64.Vec3{1, 1, 1}, unit}, true},
		{"separated on Y", testBox{mgl64.Vec3{0, 0, 0}, unit}, testBox{mgl64.Vec3{0, 3, 0}, unit}, false},
		{"separated diagonally", testBox{mgl64.Vec3{0, 0, 0}, unit}, testBox{mgl64.Vec3{2.5, 2.5, 2.5}, unit}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersect(tt.a, tt.b); got != tt.expected {
				t.Errorf("Intersect() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGJK_TriangleAgainstBox(t *testing.T) {
	box := testBox{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}}

	crossing := testTriangle{{-5, 0, -5}, {5, 0, -5}, {0, 0, 5}}
	if !Intersect(box, crossing) {
		t.Error("Expected a triangle slicing through the box to intersect")
	}

	above := testTriangle{{-5, 3, -5}, {5, 3, -5}, {0, 3, 5}}
	if Intersect(box, above) {
		t.Error("Expected a triangle above the box not to intersect")
	}
}

func TestSimplexPool(t *testing.T) {
	simplex := SimplexPool.Get().(*Simplex)
	simplex.Count = 3
	simplex.Reset()
	if simplex.Count != 0 {
		t.Errorf("Reset() left Count = %d", simplex.Count)
	}
	SimplexPool.Put(simplex)
}
