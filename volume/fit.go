package volume

import (
	"math"

	"github.com/akmonengine/collide/geometry"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// OBBFromPoints fits an oriented box with principal component analysis: the
// eigenvectors of the covariance matrix of points become the box axes,
// largest variance first, and the half-extents come from the projections of
// points on those axes.
func OBBFromPoints(points []mgl64.Vec3) (OBB, error) {
	if err := geometry.ValidatePoints(points); err != nil {
		return OBB{}, err
	}

	mean := geometry.Centroid(points)
	axes := principalAxes(covariance(points, mean))

	var lo, hi mgl64.Vec3
	for i := range 3 {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
	for _, p := range points {
		d := p.Sub(mean)
		for i := range 3 {
			proj := d.Dot(axes[i])
			lo[i] = math.Min(lo[i], proj)
			hi[i] = math.Max(hi[i], proj)
		}
	}

	center := mean
	var half mgl64.Vec3
	for i := range 3 {
		center = center.Add(axes[i].Mul((lo[i] + hi[i]) * 0.5))
		half[i] = (hi[i] - lo[i]) * 0.5
	}

	return OBB{Center: center, Axes: axes, HalfExtents: half}, nil
}

// CapsuleFromPoints places the capsule segment on the principal axis of
// points, spanning their projections, with the radius set to the largest
// distance from that axis.
func CapsuleFromPoints(points []mgl64.Vec3) (Capsule, error) {
	if err := geometry.ValidatePoints(points); err != nil {
		return Capsule{}, err
	}

	mean := geometry.Centroid(points)
	axis := principalAxes(covariance(points, mean))[0]

	lo, hi := math.Inf(1), math.Inf(-1)
	radiusSqr := 0.0
	for _, p := range points {
		d := p.Sub(mean)
		proj := d.Dot(axis)
		lo = math.Min(lo, proj)
		hi = math.Max(hi, proj)
		radiusSqr = math.Max(radiusSqr, d.Sub(axis.Mul(proj)).LenSqr())
	}

	return Capsule{
		A:      mean.Add(axis.Mul(lo)),
		B:      mean.Add(axis.Mul(hi)),
		Radius: math.Sqrt(radiusSqr),
	}, nil
}

// covariance returns the covariance matrix of points around mean.
func covariance(points []mgl64.Vec3, mean mgl64.Vec3) mgl64.Mat3 {
	var c mgl64.Mat3
	for _, p := range points {
		d := p.Sub(mean)
		for i := range 3 {
			for j := range 3 {
				c.Set(i, j, c.At(i, j)+d[i]*d[j])
			}
		}
	}
	return c.Mul(1.0 / float64(len(points)))
}

// principalAxes returns the eigenvectors of the symmetric matrix m, sorted by
// decreasing eigenvalue and forming a right-handed orthonormal basis. It falls
// back to the world axes if the decomposition fails.
func principalAxes(m mgl64.Mat3) [3]mgl64.Vec3 {
	data := make([]float64, 9)
	for i := range 3 {
		for j := range 3 {
			data[i*3+j] = m.At(i, j)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(3, data), true) {
		return worldAxes
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// eigenvalues come in ascending order, one eigenvector per column
	var axes [3]mgl64.Vec3
	for i := range 2 {
		col := 2 - i
		axes[i] = mgl64.Vec3{vectors.At(0, col), vectors.At(1, col), vectors.At(2, col)}.Normalize()
	}
	axes[2] = axes[0].Cross(axes[1]).Normalize()
	return axes
}
