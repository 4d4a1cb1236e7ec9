package proximity

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/triangle"
)

// SignedDistance returns the distance from the surface for each point,
// positive inside the mesh, negative outside and exactly zero on the
// surface.
func (q *Query) SignedDistance(ctx context.Context, points []r3.Vec) ([]float64, error) {
	res, err := q.OnSurface(ctx, points)
	if err != nil {
		return nil, err
	}
	q.warnIfOpen()
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = q.sign(p, res.Points[i], res.Triangles[i], res.Regions[i], res.Distances[i])
	}
	return out, nil
}

// Contains reports whether each point lies strictly inside the mesh.
// Points on the surface are not contained.
func (q *Query) Contains(ctx context.Context, points []r3.Vec) ([]bool, error) {
	d, err := q.SignedDistance(ctx, points)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(d))
	for i, v := range d {
		out[i] = v > 0
	}
	return out, nil
}

// sign applies the pseudo-normal of the feature holding the closest point.
// An offset along the outward pseudo-normal means the point is outside.
func (q *Query) sign(p, closest r3.Vec, face int, region triangle.Region, dist float64) float64 {
	if dist == 0 {
		return 0
	}
	n := q.featureNormal(face, region)
	if r3.Dot(r3.Sub(p, closest), n) > 0 {
		return -dist
	}
	return dist
}

func (q *Query) featureNormal(face int, region triangle.Region) r3.Vec {
	m := q.mesh
	f := m.Faces[face]
	switch {
	case region.IsEdge():
		i, j := region.Edge()
		return m.EdgePseudoNormal(f[i], f[j])
	case region.IsVertex():
		return m.VertexPseudoNormal(f[region.Vertex()])
	}
	return m.FacePseudoNormal(face)
}

func (q *Query) warnIfOpen() {
	q.warnOnce.Do(func() {
		m := q.mesh
		if m.IsWatertight() && m.IsWindingConsistent() {
			return
		}
		q.log.Warn("signed distance on an open or inconsistent mesh; signs are best effort",
			zap.Int("boundary_edges", m.BoundaryEdges()),
			zap.Int("non_manifold_edges", m.NonManifoldEdges()),
			zap.Bool("consistent_winding", m.IsWindingConsistent()))
	})
}
