// Package kernel defines the abstract geometry kernel used to generate
// query meshes from solids. Implementations (sdfx) build solids from
// primitives and booleans and tessellate them into a triangle soup, which
// mesh.FromSoup welds into an indexed mesh.
package kernel

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/triangle"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() r3.Box
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives, centered on the origin.
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, v r3.Vec) Solid
	Rotate(s Solid, degrees r3.Vec) Solid // Euler angles, applied X then Y then Z

	// ToSoup tessellates s on a grid with cells cells along its longest
	// side. Triangles are wound counter-clockwise seen from outside.
	ToSoup(s Solid, cells int) (Soup, error)
}

// Soup is an unindexed list of triangles.
type Soup []triangle.Triangle

// TriangleCount returns the number of triangles.
func (s Soup) TriangleCount() int {
	return len(s)
}

// IsEmpty returns true if the soup has no geometry.
func (s Soup) IsEmpty() bool {
	return len(s) == 0
}

// Bounds returns the box enclosing every triangle, or the zero box for an
// empty soup.
func (s Soup) Bounds() r3.Box {
	if len(s) == 0 {
		return r3.Box{}
	}
	b := s[0].Box()
	for _, t := range s[1:] {
		tb := t.Box()
		b.Min = r3.Vec{X: min(b.Min.X, tb.Min.X), Y: min(b.Min.Y, tb.Min.Y), Z: min(b.Min.Z, tb.Min.Z)}
		b.Max = r3.Vec{X: max(b.Max.X, tb.Max.X), Y: max(b.Max.Y, tb.Max.Y), Z: max(b.Max.Z, tb.Max.Z)}
	}
	return b
}
