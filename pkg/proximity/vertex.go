package proximity

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// VertexResult holds, per query point, the index of the closest mesh vertex
// and the distance to it.
type VertexResult struct {
	Indices   []int
	Distances []float64
}

// vertexPoint is a mesh vertex stored in the k-d tree. Query points use
// index -1.
type vertexPoint struct {
	pos   r3.Vec
	index int
}

func (v vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return component(v.pos, d) - component(c.(vertexPoint).pos, d)
}

func (v vertexPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (v vertexPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(v.pos, c.(vertexPoint).pos))
}

func component(v r3.Vec, d kdtree.Dim) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

// vertexPoints implements kdtree.Interface.
type vertexPoints []vertexPoint

func (p vertexPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p vertexPoints) Len() int                      { return len(p) }
func (p vertexPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p vertexPoints) Pivot(d kdtree.Dim) int {
	plane := vertexPlane{Dim: d, points: p}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}

// vertexPlane sorts vertices along one axis for pivot selection.
type vertexPlane struct {
	kdtree.Dim
	points vertexPoints
}

func (p vertexPlane) Len() int { return len(p.points) }
func (p vertexPlane) Less(i, j int) bool {
	return component(p.points[i].pos, p.Dim) < component(p.points[j].pos, p.Dim)
}
func (p vertexPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p vertexPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (q *Query) vertexTree() *kdtree.Tree {
	q.kdOnce.Do(func() {
		pts := make(vertexPoints, len(q.mesh.Vertices))
		for i, v := range q.mesh.Vertices {
			pts[i] = vertexPoint{pos: v, index: i}
		}
		q.kd = kdtree.New(pts, false)
	})
	return q.kd
}

// Vertex returns the closest mesh vertex for each point. Vertices within
// the tolerance of the closest distance tie, and the lowest index wins.
// Like the surface queries it rejects a mesh without faces.
func (q *Query) Vertex(ctx context.Context, points []r3.Vec) (VertexResult, error) {
	if err := q.checkQuery(points); err != nil {
		return VertexResult{}, err
	}
	tree := q.vertexTree()
	res := VertexResult{
		Indices:   make([]int, len(points)),
		Distances: make([]float64, len(points)),
	}
	tol := q.opts.Tolerance
	err := q.parallel(ctx, len(points), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			query := vertexPoint{pos: points[i], index: -1}
			nearest, d2 := tree.Nearest(query)
			best := nearest.(vertexPoint).index

			// The tolerance can vanish in rounding far from the mesh, so
			// the radius never drops below the nearest distance.
			reach := math.Sqrt(d2) + tol
			keep := kdtree.NewDistKeeper(math.Max(d2, reach*reach))
			tree.NearestSet(keep, query)
			for _, c := range keep.Heap {
				if v, ok := c.Comparable.(vertexPoint); ok && v.index < best {
					best = v.index
				}
			}
			res.Indices[i] = best
			res.Distances[i] = r3.Norm(r3.Sub(points[i], q.mesh.Vertices[best]))
		}
	})
	if err != nil {
		return VertexResult{}, err
	}
	return res, nil
}
