// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/kernel"
	"github.com/Drvanon/trimesh/pkg/triangle"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest side.
const DefaultMeshCells = 64

// ErrNoCells is returned by ToSoup for a non-positive resolution.
var ErrNoCells = errors.New("sdfx: mesh cells must be positive")

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() r3.Box {
	bb := s.s.BoundingBox()
	return r3.Box{Min: fromV3(bb.Min), Max: fromV3(bb.Max)}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

func toV3(v r3.Vec) v3.Vec   { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }
func fromV3(v v3.Vec) r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with the given dimensions centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Sphere3D: %v", err))
	}
	return wrap(s)
}

// Cylinder creates a cylinder along Z with the given height and radius.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by v.
func (k *SdfxKernel) Translate(s kernel.Solid, v r3.Vec) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(toV3(v))))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, degrees r3.Vec) kernel.Solid {
	xRad := degrees.X * math.Pi / 180.0
	yRad := degrees.Y * math.Pi / 180.0
	zRad := degrees.Z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToSoup converts a solid to triangles using marching cubes.
func (k *SdfxKernel) ToSoup(s kernel.Solid, cells int) (kernel.Soup, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoCells, cells)
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	soup := make(kernel.Soup, 0, len(triangles))
	for _, tri := range triangles {
		soup = append(soup, triangle.Triangle{fromV3(tri[0]), fromV3(tri[1]), fromV3(tri[2])})
	}
	return soup, nil
}
