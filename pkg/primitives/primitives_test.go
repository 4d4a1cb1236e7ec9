package primitives

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/mesh"
)

// checkClosed asserts the invariants every primitive must satisfy.
func checkClosed(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	if !m.IsWatertight() {
		t.Errorf("mesh not watertight: %d boundary, %d non-manifold edges", m.BoundaryEdges(), m.NonManifoldEdges())
	}
	if !m.IsWindingConsistent() {
		t.Error("mesh winding inconsistent")
	}
	if m.Volume() <= 0 {
		t.Errorf("Volume() = %g, want positive", m.Volume())
	}
	if deg := m.DegenerateFaces(); len(deg) != 0 {
		t.Errorf("degenerate faces %v", deg)
	}
}

func TestBox(t *testing.T) {
	m, err := Box(r3.Vec{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	checkClosed(t, m)
	if m.NumVertices() != 8 || m.NumFaces() != 12 {
		t.Errorf("got %d vertices, %d faces", m.NumVertices(), m.NumFaces())
	}
	if math.Abs(m.Volume()-6) > 1e-12 {
		t.Errorf("Volume() = %g, want 6", m.Volume())
	}
	b := m.Bounds()
	if b.Min != (r3.Vec{X: -0.5, Y: -1, Z: -1.5}) || b.Max != (r3.Vec{X: 0.5, Y: 1, Z: 1.5}) {
		t.Errorf("Bounds() = %v", b)
	}

	for _, ext := range []r3.Vec{{}, {X: 1, Y: -1, Z: 1}, {X: math.NaN(), Y: 1, Z: 1}} {
		if _, err := Box(ext); !errors.Is(err, ErrInvalidShape) {
			t.Errorf("Box(%v) error = %v, want ErrInvalidShape", ext, err)
		}
	}
}

func TestTetrahedron(t *testing.T) {
	m, err := Tetrahedron(2)
	if err != nil {
		t.Fatalf("Tetrahedron() error = %v", err)
	}
	checkClosed(t, m)
	for i, v := range m.Vertices {
		if math.Abs(r3.Norm(v)-2) > 1e-12 {
			t.Errorf("vertex %d at radius %g", i, r3.Norm(v))
		}
	}
	if _, err := Tetrahedron(0); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Tetrahedron(0) error = %v", err)
	}
}

func TestIcosphere(t *testing.T) {
	const radius = 1.5
	prev := 0.0
	for sub := 0; sub <= 3; sub++ {
		m, err := Icosphere(sub, radius)
		if err != nil {
			t.Fatalf("Icosphere(%d) error = %v", sub, err)
		}
		checkClosed(t, m)

		pow := 1 << (2 * sub)
		if m.NumFaces() != 20*pow || m.NumVertices() != 10*pow+2 {
			t.Errorf("sub %d: got %d faces, %d vertices", sub, m.NumFaces(), m.NumVertices())
		}
		for i, v := range m.Vertices {
			if math.Abs(r3.Norm(v)-radius) > 1e-12 {
				t.Fatalf("sub %d: vertex %d at radius %g", sub, i, r3.Norm(v))
			}
		}
		for i, n := range m.FaceNormals() {
			if r3.Dot(n, m.Triangle(i).Centroid()) <= 0 {
				t.Fatalf("sub %d: face %d points inward", sub, i)
			}
		}

		// Inscribed polyhedra grow toward the sphere volume.
		vol := m.Volume()
		if vol <= prev || vol >= 4.0/3.0*math.Pi*radius*radius*radius {
			t.Errorf("sub %d: volume %g out of order (prev %g)", sub, vol, prev)
		}
		prev = vol
	}

	if _, err := Icosphere(-1, 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Icosphere(-1) error = %v", err)
	}
	if _, err := Icosphere(MaxSubdivisions+1, 1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Icosphere(max+1) error = %v", err)
	}
	if _, err := Icosphere(1, -1); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("Icosphere(radius -1) error = %v", err)
	}
}

// lOutline is an L-shaped outline with a reflex corner at (1, 0).
var lOutline = []r2.Vec{
	{X: -3, Y: -3}, {X: 3, Y: -3}, {X: 3, Y: 0},
	{X: 1, Y: 0}, {X: 1, Y: 3}, {X: -3, Y: 3},
}

func TestExtrude(t *testing.T) {
	t.Run("l-prism", func(t *testing.T) {
		m, err := Extrude(lOutline, -5, 5)
		if err != nil {
			t.Fatalf("Extrude() error = %v", err)
		}
		checkClosed(t, m)
		if math.Abs(m.Volume()-300) > 1e-9 {
			t.Errorf("Volume() = %g, want 300", m.Volume())
		}
		if m.NumFaces() != 2*4+2*6 {
			t.Errorf("got %d faces, want 20", m.NumFaces())
		}
	})

	t.Run("clockwise outline", func(t *testing.T) {
		cw := make([]r2.Vec, len(lOutline))
		for i, p := range lOutline {
			cw[len(cw)-1-i] = p
		}
		m, err := Extrude(cw, 0, 1)
		if err != nil {
			t.Fatalf("Extrude() error = %v", err)
		}
		checkClosed(t, m)
		if math.Abs(m.Volume()-30) > 1e-9 {
			t.Errorf("Volume() = %g, want 30", m.Volume())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name    string
			outline []r2.Vec
			z0, z1  float64
		}{
			{"too few points", lOutline[:2], 0, 1},
			{"empty height", lOutline, 1, 1},
			{"collinear", []r2.Vec{{}, {X: 1}, {X: 2}, {X: 3}}, 0, 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := Extrude(tt.outline, tt.z0, tt.z1); !errors.Is(err, ErrInvalidShape) {
					t.Errorf("Extrude() error = %v, want ErrInvalidShape", err)
				}
			})
		}
	})
}

func TestSampleSphere(t *testing.T) {
	a := SampleSphere(rand.New(rand.NewSource(1)), 500)
	b := SampleSphere(rand.New(rand.NewSource(1)), 500)
	if len(a) != 500 {
		t.Fatalf("got %d points", len(a))
	}
	var mean r3.Vec
	for i, p := range a {
		if math.Abs(r3.Norm(p)-1) > 1e-12 {
			t.Fatalf("point %d off the unit sphere: %v", i, p)
		}
		if p != b[i] {
			t.Fatalf("same seed gave different point %d", i)
		}
		mean = r3.Add(mean, p)
	}
	if r3.Norm(r3.Scale(1.0/500, mean)) > 0.15 {
		t.Errorf("mean %v far from origin", mean)
	}
}
