package primitives

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/mesh"
)

// Extrude sweeps a simple polygon in the XY plane from z0 to z1. The outline
// may be given in either orientation. Caps are triangulated by ear clipping;
// every side edge i->j becomes the two triangles (Bi, Bj, Tj) and
// (Bi, Tj, Ti), where B and T are the bottom and top copies of the outline.
func Extrude(outline []r2.Vec, z0, z1 float64) (*mesh.Mesh, error) {
	n := len(outline)
	if n < 3 {
		return nil, fmt.Errorf("%w: outline has %d points", ErrInvalidShape, n)
	}
	if !(z1 > z0) {
		return nil, fmt.Errorf("%w: extrusion from z=%g to z=%g", ErrInvalidShape, z0, z1)
	}
	poly := make([]r2.Vec, n)
	copy(poly, outline)
	if signedArea(poly) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	caps, err := triangulate(poly)
	if err != nil {
		return nil, err
	}

	vertices := make([]r3.Vec, 2*n)
	for i, p := range poly {
		vertices[i] = r3.Vec{X: p.X, Y: p.Y, Z: z0}
		vertices[n+i] = r3.Vec{X: p.X, Y: p.Y, Z: z1}
	}
	faces := make([][3]int, 0, 2*len(caps)+2*n)
	for _, c := range caps {
		faces = append(faces, [3]int{n + c[0], n + c[1], n + c[2]})
	}
	for _, c := range caps {
		faces = append(faces, [3]int{c[0], c[2], c[1]})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		faces = append(faces, [3]int{i, j, n + j}, [3]int{i, n + j, n + i})
	}
	return mesh.New(vertices, faces)
}

// signedArea is positive for counter-clockwise outlines.
func signedArea(poly []r2.Vec) float64 {
	var sum float64
	for i, p := range poly {
		sum += r2.Cross(p, poly[(i+1)%len(poly)])
	}
	return sum / 2
}

// triangulate ear-clips a counter-clockwise simple polygon. Ears are taken
// at the lowest remaining index first so the result is deterministic.
func triangulate(poly []r2.Vec) ([][3]int, error) {
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}
	out := make([][3]int, 0, len(poly)-2)
	for len(idx) > 3 {
		clipped := false
		for k := range idx {
			prev := idx[(k+len(idx)-1)%len(idx)]
			cur := idx[k]
			next := idx[(k+1)%len(idx)]
			if !isEar(poly, idx, prev, cur, next) {
				continue
			}
			out = append(out, [3]int{prev, cur, next})
			idx = append(idx[:k], idx[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, fmt.Errorf("%w: outline is not a simple polygon", ErrInvalidShape)
		}
	}
	return append(out, [3]int{idx[0], idx[1], idx[2]}), nil
}

func isEar(poly []r2.Vec, idx []int, prev, cur, next int) bool {
	a, b, c := poly[prev], poly[cur], poly[next]
	if r2.Cross(r2.Sub(b, a), r2.Sub(c, b)) <= 0 {
		return false
	}
	for _, i := range idx {
		if i == prev || i == cur || i == next {
			continue
		}
		p := poly[i]
		if p == a || p == b || p == c {
			continue
		}
		if inTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// inTriangle reports whether p lies in the closed counter-clockwise triangle
// abc.
func inTriangle(p, a, b, c r2.Vec) bool {
	return r2.Cross(r2.Sub(b, a), r2.Sub(p, a)) >= 0 &&
		r2.Cross(r2.Sub(c, b), r2.Sub(p, b)) >= 0 &&
		r2.Cross(r2.Sub(a, c), r2.Sub(p, c)) >= 0
}
