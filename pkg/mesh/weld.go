package mesh

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/internal/logger"
	"github.com/Drvanon/trimesh/pkg/triangle"
)

// DefaultWeldTolerance is the weld distance relative to the soup's size used
// when FromSoup is given a non-positive tolerance.
const DefaultWeldTolerance = 1e-8

// weldVertex is a welded vertex stored in the R-tree.
type weldVertex struct {
	index int
	pos   r3.Vec
	rect  rtreego.Rect
}

func (v *weldVertex) Bounds() rtreego.Rect { return v.rect }

func toPoint(v r3.Vec) rtreego.Point { return rtreego.Point{v.X, v.Y, v.Z} }

// FromSoup builds an indexed mesh from unconnected triangles, merging
// corners closer than tol into one vertex. Vertices are numbered in order of
// first appearance; when several existing vertices are in reach the lowest
// index wins. Faces that collapse to fewer than three distinct vertices are
// dropped.
func FromSoup(soup []triangle.Triangle, tol float64) (*Mesh, error) {
	if len(soup) == 0 {
		return nil, ErrNoVertices
	}
	if tol <= 0 {
		tol = DefaultWeldTolerance * math.Max(soupScale(soup), 1)
	}

	// Each vertex occupies a cube of half-side tol/2, so two cubes overlap
	// exactly when the vertices are closer than tol along every axis.
	half := tol / 2
	tree := rtreego.NewTree(3, 25, 50)
	vertices := make([]r3.Vec, 0, len(soup))
	faces := make([][3]int, 0, len(soup))
	dropped := 0

	for _, tri := range soup {
		var face [3]int
		for j, p := range tri {
			pt := toPoint(p)
			best := -1
			for _, s := range tree.SearchIntersect(pt.ToRect(half)) {
				v := s.(*weldVertex)
				if r3.Norm(r3.Sub(v.pos, p)) <= tol && (best < 0 || v.index < best) {
					best = v.index
				}
			}
			if best < 0 {
				best = len(vertices)
				vertices = append(vertices, p)
				tree.Insert(&weldVertex{index: best, pos: p, rect: pt.ToRect(half)})
			}
			face[j] = best
		}
		if face[0] == face[1] || face[1] == face[2] || face[0] == face[2] {
			dropped++
			continue
		}
		faces = append(faces, face)
	}

	logger.Debug("welded triangle soup",
		zap.Int("triangles", len(soup)),
		zap.Int("vertices", len(vertices)),
		zap.Int("faces", len(faces)),
		zap.Int("collapsed", dropped),
		zap.Float64("tolerance", tol))

	return New(vertices, faces)
}

func soupScale(soup []triangle.Triangle) float64 {
	box := soup[0].Box()
	for _, t := range soup[1:] {
		b := t.Box()
		box.Min = r3.Vec{X: math.Min(box.Min.X, b.Min.X), Y: math.Min(box.Min.Y, b.Min.Y), Z: math.Min(box.Min.Z, b.Min.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, b.Max.X), Y: math.Max(box.Max.Y, b.Max.Y), Z: math.Max(box.Max.Z, b.Max.Z)}
	}
	return r3.Norm(r3.Sub(box.Max, box.Min))
}

// Soup returns the mesh as unconnected triangles in face order.
func (m *Mesh) Soup() []triangle.Triangle {
	out := make([]triangle.Triangle, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Triangle(i)
	}
	return out
}
