package primitives

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/mesh"
)

// MaxSubdivisions bounds Icosphere; level 8 already has 1.3M faces.
const MaxSubdivisions = 8

// icosahedron returns the regular icosahedron with vertices at (±1, ±phi, 0)
// and the cyclic permutations of those coordinates.
func icosahedron() ([]r3.Vec, [][3]int) {
	t := (1 + math.Sqrt(5)) / 2
	vertices := []r3.Vec{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return vertices, faces
}

// Icosphere returns a sphere of the given radius built by splitting every
// face of an icosahedron into four, subdivisions times, and pushing the new
// vertices out to the sphere. Vertices lie exactly on the sphere; the faces
// lie inside it.
func Icosphere(subdivisions int, radius float64) (*mesh.Mesh, error) {
	if subdivisions < 0 || subdivisions > MaxSubdivisions {
		return nil, fmt.Errorf("%w: subdivisions %d not in [0, %d]", ErrInvalidShape, subdivisions, MaxSubdivisions)
	}
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: sphere radius %g", ErrInvalidShape, radius)
	}

	vertices, faces := icosahedron()
	for i := range vertices {
		vertices[i] = r3.Unit(vertices[i])
	}
	for level := 0; level < subdivisions; level++ {
		vertices, faces = subdivide(vertices, faces)
	}
	for i := range vertices {
		vertices[i] = r3.Scale(radius, vertices[i])
	}
	return mesh.New(vertices, faces)
}

// subdivide splits each face into four through its edge midpoints, which
// are projected onto the unit sphere. Shared edges share their midpoint.
func subdivide(vertices []r3.Vec, faces [][3]int) ([]r3.Vec, [][3]int) {
	midpoints := make(map[[2]int]int, len(faces)*3/2)
	mid := func(a, b int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if idx, ok := midpoints[key]; ok {
			return idx
		}
		idx := len(vertices)
		vertices = append(vertices, r3.Unit(r3.Add(vertices[a], vertices[b])))
		midpoints[key] = idx
		return idx
	}

	out := make([][3]int, 0, len(faces)*4)
	for _, f := range faces {
		ab := mid(f[0], f[1])
		bc := mid(f[1], f[2])
		ca := mid(f[2], f[0])
		out = append(out,
			[3]int{f[0], ab, ca},
			[3]int{f[1], bc, ab},
			[3]int{f[2], ca, bc},
			[3]int{ab, bc, ca},
		)
	}
	return vertices, out
}

// SampleSphere returns n points distributed uniformly on the unit sphere.
func SampleSphere(rng *rand.Rand, n int) []r3.Vec {
	out := make([]r3.Vec, 0, n)
	for len(out) < n {
		v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		l := r3.Norm(v)
		if l < 1e-12 {
			continue
		}
		out = append(out, r3.Scale(1/l, v))
	}
	return out
}
