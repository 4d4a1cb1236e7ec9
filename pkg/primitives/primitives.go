// Package primitives generates closed meshes of simple solids: boxes,
// tetrahedra, icospheres and extruded polygons. Every mesh is wound so that
// face normals point out of the solid.
package primitives

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/mesh"
)

// ErrInvalidShape is returned for non-positive dimensions or unusable
// outlines.
var ErrInvalidShape = errors.New("primitives: invalid shape")

// boxFaces triangulates the cube whose vertex i sits at
// (i&1, i>>1&1, i>>2&1) in units of the extents.
var boxFaces = [][3]int{
	{0, 2, 3}, {0, 3, 1}, // -z
	{4, 5, 7}, {4, 7, 6}, // +z
	{0, 1, 5}, {0, 5, 4}, // -y
	{2, 6, 7}, {2, 7, 3}, // +y
	{0, 4, 6}, {0, 6, 2}, // -x
	{1, 3, 7}, {1, 7, 5}, // +x
}

// Box returns an axis-aligned box with the given edge lengths centered on
// the origin.
func Box(extents r3.Vec) (*mesh.Mesh, error) {
	if !(extents.X > 0 && extents.Y > 0 && extents.Z > 0) {
		return nil, fmt.Errorf("%w: box extents %v", ErrInvalidShape, extents)
	}
	half := r3.Scale(0.5, extents)
	vertices := make([]r3.Vec, 8)
	for i := range vertices {
		vertices[i] = r3.Vec{
			X: (float64(i&1)*2 - 1) * half.X,
			Y: (float64(i>>1&1)*2 - 1) * half.Y,
			Z: (float64(i>>2&1)*2 - 1) * half.Z,
		}
	}
	faces := make([][3]int, len(boxFaces))
	copy(faces, boxFaces)
	return mesh.New(vertices, faces)
}

// Tetrahedron returns a regular tetrahedron inscribed in a sphere of the
// given radius around the origin.
func Tetrahedron(radius float64) (*mesh.Mesh, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: tetrahedron radius %g", ErrInvalidShape, radius)
	}
	s := radius / math.Sqrt(3)
	vertices := []r3.Vec{
		{X: s, Y: s, Z: s},
		{X: s, Y: -s, Z: -s},
		{X: -s, Y: s, Z: -s},
		{X: -s, Y: -s, Z: s},
	}
	faces := [][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
	return mesh.New(vertices, faces)
}
