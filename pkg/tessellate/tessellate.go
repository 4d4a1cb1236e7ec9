// Package tessellate turns kernel solids into indexed meshes ready for
// proximity queries. A scene is a tree of primitive, transform and group
// nodes; one mesh is produced per primitive part.
package tessellate

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/internal/logger"
	"github.com/Drvanon/trimesh/pkg/kernel"
	"github.com/Drvanon/trimesh/pkg/mesh"
)

// ErrEmptySolid is returned when a solid tessellates to no triangles.
var ErrEmptySolid = errors.New("tessellate: solid produced no triangles")

// NodeKind distinguishes scene nodes.
type NodeKind int

const (
	NodePrimitive NodeKind = iota
	NodeTransform
	NodeGroup
)

// ShapeKind names a kernel primitive.
type ShapeKind string

const (
	ShapeBox      ShapeKind = "box"
	ShapeSphere   ShapeKind = "sphere"
	ShapeCylinder ShapeKind = "cylinder"
)

// Shape describes a primitive. Extents is used by boxes, Radius by spheres
// and cylinders, Height by cylinders.
type Shape struct {
	Kind    ShapeKind
	Extents r3.Vec
	Radius  float64
	Height  float64
}

// Node is one node of a scene tree. Transform nodes rotate (Euler degrees)
// and then translate their children.
type Node struct {
	Name        string
	Kind        NodeKind
	Shape       Shape
	Translation r3.Vec
	Rotation    r3.Vec
	Children    []*Node
}

// Part is the mesh produced for one primitive node.
type Part struct {
	Name string
	Mesh *mesh.Mesh
}

// Options controls tessellation.
type Options struct {
	// Cells is the marching cubes resolution along a solid's longest side.
	Cells int
	// WeldTolerance merges soup vertices closer than this. Zero selects
	// mesh.DefaultWeldTolerance scaled to the solid.
	WeldTolerance float64
}

// Mesh tessellates s and welds the soup into an indexed mesh.
func Mesh(k kernel.Kernel, s kernel.Solid, opts Options) (*mesh.Mesh, error) {
	start := time.Now()
	soup, err := k.ToSoup(s, opts.Cells)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	if soup.IsEmpty() {
		return nil, ErrEmptySolid
	}
	m, err := mesh.FromSoup(soup, opts.WeldTolerance)
	if err != nil {
		return nil, fmt.Errorf("tessellate: welding %d triangles: %w", soup.TriangleCount(), err)
	}
	logger.Named("tessellate").Debug("tessellated solid",
		zap.Int("cells", opts.Cells),
		zap.Int("triangles", soup.TriangleCount()),
		zap.Int("faces", m.NumFaces()),
		zap.Int("vertices", m.NumVertices()),
		zap.Duration("elapsed", time.Since(start)))
	return m, nil
}

// Solid builds the kernel solid for a shape.
func Solid(k kernel.Kernel, s Shape) (kernel.Solid, error) {
	switch s.Kind {
	case ShapeBox:
		if s.Extents.X <= 0 || s.Extents.Y <= 0 || s.Extents.Z <= 0 {
			return nil, fmt.Errorf("tessellate: box extents %v must be positive", s.Extents)
		}
		return k.Box(s.Extents.X, s.Extents.Y, s.Extents.Z), nil
	case ShapeSphere:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("tessellate: sphere radius %g must be positive", s.Radius)
		}
		return k.Sphere(s.Radius), nil
	case ShapeCylinder:
		if s.Radius <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("tessellate: cylinder %gx%g must be positive", s.Height, s.Radius)
		}
		return k.Cylinder(s.Height, s.Radius), nil
	}
	return nil, fmt.Errorf("tessellate: unknown shape %q", s.Kind)
}

// transformStack accumulates spatial transforms during tree traversal.
type transformStack struct {
	translations []r3.Vec
	rotations    []r3.Vec
}

func (ts *transformStack) push(translation, rotation r3.Vec) {
	ts.translations = append(ts.translations, translation)
	ts.rotations = append(ts.rotations, rotation)
}

func (ts *transformStack) pop() {
	ts.translations = ts.translations[:len(ts.translations)-1]
	ts.rotations = ts.rotations[:len(ts.rotations)-1]
}

// apply places s by every transform on the stack, innermost first.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.translations) - 1; i >= 0; i-- {
		if r := ts.rotations[i]; r != (r3.Vec{}) {
			s = k.Rotate(s, r)
		}
		if t := ts.translations[i]; t != (r3.Vec{}) {
			s = k.Translate(s, t)
		}
	}
	return s
}

// Tessellate walks the scene and produces one mesh per primitive node in
// depth-first order. The scene is never mutated.
func Tessellate(root *Node, k kernel.Kernel, opts Options) ([]Part, error) {
	if root == nil {
		return nil, nil
	}
	return walkNode(k, root, &transformStack{}, opts)
}

// walkNode recursively traverses a node and its children, collecting parts.
func walkNode(k kernel.Kernel, n *Node, ts *transformStack, opts Options) ([]Part, error) {
	switch n.Kind {
	case NodePrimitive:
		return handlePrimitive(k, n, ts, opts)

	case NodeTransform:
		ts.push(n.Translation, n.Rotation)
		defer ts.pop()
		return walkChildren(k, n, ts, opts)

	case NodeGroup:
		return walkChildren(k, n, ts, opts)

	default:
		return nil, fmt.Errorf("tessellate: node %q has unknown kind %d", n.Name, n.Kind)
	}
}

func walkChildren(k kernel.Kernel, n *Node, ts *transformStack, opts Options) ([]Part, error) {
	var parts []Part
	for _, child := range n.Children {
		collected, err := walkNode(k, child, ts, opts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// handlePrimitive creates geometry for a primitive node.
func handlePrimitive(k kernel.Kernel, n *Node, ts *transformStack, opts Options) ([]Part, error) {
	solid, err := Solid(k, n.Shape)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Name, err)
	}
	m, err := Mesh(k, ts.apply(k, solid), opts)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.Name, err)
	}
	return []Part{{Name: n.Name, Mesh: m}}, nil
}
