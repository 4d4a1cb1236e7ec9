// Package triangle implements the closest-point primitive for a single
// triangle and a few helpers (normal, area, barycentric coordinates) used to
// check its results.
package triangle

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is three vertices in winding order. The winding defines the
// outward normal by the right-hand rule.
type Triangle [3]r3.Vec

// degenerateEps bounds the squared twice-area of a triangle relative to the
// fourth power of its longest edge. Below it the triangle is handled as a
// segment or point.
const degenerateEps = 1e-14

// Normal returns the unit normal, or the zero vector for a degenerate triangle.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) / 2
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3.0, r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// Box returns the axis-aligned bounding box of the triangle.
func (t Triangle) Box() r3.Box {
	b := r3.Box{Min: t[0], Max: t[0]}
	for _, v := range t[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)}
	}
	return b
}

// IsDegenerate reports whether the triangle has (near) zero area relative to
// its size.
func (t Triangle) IsDegenerate() bool {
	ab := r3.Sub(t[1], t[0])
	ac := r3.Sub(t[2], t[0])
	bc := r3.Sub(t[2], t[1])
	longest := math.Max(r3.Norm2(ab), math.Max(r3.Norm2(ac), r3.Norm2(bc)))
	if longest == 0 {
		return true
	}
	return r3.Norm2(r3.Cross(ab, ac)) <= degenerateEps*longest*longest
}

// Barycentric returns the barycentric coordinates of the projection of p onto
// the triangle's plane. The result is undefined for degenerate triangles.
func Barycentric(t Triangle, p r3.Vec) [3]float64 {
	v0 := r3.Sub(t[1], t[0])
	v1 := r3.Sub(t[2], t[0])
	v2 := r3.Sub(p, t[0])
	d00 := r3.Dot(v0, v0)
	d01 := r3.Dot(v0, v1)
	d11 := r3.Dot(v1, v1)
	d20 := r3.Dot(v2, v0)
	d21 := r3.Dot(v2, v1)
	denom := d00*d11 - d01*d01
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return [3]float64{1 - v - w, v, w}
}

// Contains reports whether p lies in the closed triangle within tol: every
// barycentric coordinate is in [-tol, 1+tol] and p is within tol of the
// plane. Degenerate triangles fall back to a distance test.
func Contains(t Triangle, p r3.Vec, tol float64) bool {
	if t.IsDegenerate() {
		q, _ := ClosestPoint(t, p)
		return r3.Norm(r3.Sub(p, q)) <= tol
	}
	n := t.Normal()
	if math.Abs(r3.Dot(n, r3.Sub(p, t[0]))) > tol {
		return false
	}
	for _, c := range Barycentric(t, p) {
		if c < -tol || c > 1+tol {
			return false
		}
	}
	return true
}
