// Package mesh holds the indexed triangle mesh queried by the proximity
// engine. A Mesh is immutable once built: per-face attributes are computed by
// New and topology (edge adjacency and pseudo-normals) is derived lazily on
// first use.
package mesh

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/triangle"
)

var (
	// ErrNoVertices is returned by New when the vertex list is empty.
	ErrNoVertices = errors.New("mesh: no vertices")
	// ErrInvalidFace is returned by New for a face with an out-of-range or
	// repeated vertex index.
	ErrInvalidFace = errors.New("invalid face")
	// ErrNonFiniteVertex is returned by New when a vertex coordinate is NaN
	// or infinite.
	ErrNonFiniteVertex = errors.New("non-finite vertex")
)

// degenerateAreaRel scales the squared mesh size into the area below which a
// face is reported as degenerate.
const degenerateAreaRel = 1e-12

// Mesh is an indexed triangle mesh. Faces list vertex indices in winding
// order; the right-hand rule gives the outward normal.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int

	normals []r3.Vec
	areas   []float64
	boxes   []r3.Box
	bounds  r3.Box
	scale   float64

	topoOnce sync.Once
	topo     *topology
}

// New validates the index data and returns a mesh with its per-face
// attributes computed. The slices are retained, not copied; callers must not
// modify them afterwards.
func New(vertices []r3.Vec, faces [][3]int) (*Mesh, error) {
	if len(vertices) == 0 {
		return nil, ErrNoVertices
	}
	for i, v := range vertices {
		if !finite(v) {
			return nil, fmt.Errorf("mesh: vertex %d: %w", i, ErrNonFiniteVertex)
		}
	}
	n := len(vertices)
	for i, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return nil, fmt.Errorf("mesh: face %d: index %d out of range [0, %d): %w", i, idx, n, ErrInvalidFace)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return nil, fmt.Errorf("mesh: face %d: repeated vertex %v: %w", i, f, ErrInvalidFace)
		}
	}

	m := &Mesh{
		Vertices: vertices,
		Faces:    faces,
		normals:  make([]r3.Vec, len(faces)),
		areas:    make([]float64, len(faces)),
		boxes:    make([]r3.Box, len(faces)),
	}
	m.bounds = r3.Box{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		m.bounds.Min = r3.Vec{X: math.Min(m.bounds.Min.X, v.X), Y: math.Min(m.bounds.Min.Y, v.Y), Z: math.Min(m.bounds.Min.Z, v.Z)}
		m.bounds.Max = r3.Vec{X: math.Max(m.bounds.Max.X, v.X), Y: math.Max(m.bounds.Max.Y, v.Y), Z: math.Max(m.bounds.Max.Z, v.Z)}
	}
	m.scale = r3.Norm(r3.Sub(m.bounds.Max, m.bounds.Min))
	for i := range faces {
		t := m.Triangle(i)
		m.normals[i] = t.Normal()
		m.areas[i] = t.Area()
		m.boxes[i] = t.Box()
	}
	return m, nil
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Triangle returns the geometry of face f.
func (m *Mesh) Triangle(f int) triangle.Triangle {
	face := m.Faces[f]
	return triangle.Triangle{m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]]}
}

// NumFaces returns the number of triangles.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// FaceNormals returns the unit normal of every face. Degenerate faces have a
// zero normal.
func (m *Mesh) FaceNormals() []r3.Vec { return m.normals }

// FaceAreas returns the area of every face.
func (m *Mesh) FaceAreas() []float64 { return m.areas }

// FaceBoxes returns the axis-aligned bounding box of every face.
func (m *Mesh) FaceBoxes() []r3.Box { return m.boxes }

// Bounds returns the bounding box of all vertices.
func (m *Mesh) Bounds() r3.Box { return m.bounds }

// Scale returns the length of the bounding box diagonal.
func (m *Mesh) Scale() float64 { return m.scale }

// DegenerateArea returns the area at or below which a face counts as
// degenerate for this mesh.
func (m *Mesh) DegenerateArea() float64 {
	return degenerateAreaRel * m.scale * m.scale
}

// DegenerateFaces returns the indices of faces with (near) zero area.
func (m *Mesh) DegenerateFaces() []int {
	limit := m.DegenerateArea()
	var out []int
	for i, a := range m.areas {
		if a <= limit || m.normals[i] == (r3.Vec{}) {
			out = append(out, i)
		}
	}
	return out
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	var sum float64
	for _, a := range m.areas {
		sum += a
	}
	return sum
}

// Volume returns the signed volume enclosed by the faces. It is positive for
// a closed mesh with outward winding.
func (m *Mesh) Volume() float64 {
	var sum float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		sum += r3.Dot(a, r3.Cross(b, c))
	}
	return sum / 6
}
