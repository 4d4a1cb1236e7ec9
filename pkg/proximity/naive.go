package proximity

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/triangle"
)

// Naive computes the closest surface point by testing every face against
// every point. It is the reference the indexed search must agree with and
// is faster for very small meshes.
func (q *Query) Naive(ctx context.Context, points []r3.Vec) (SurfaceResult, error) {
	if err := q.checkQuery(points); err != nil {
		return SurfaceResult{}, err
	}
	res := newSurfaceResult(len(points))
	err := q.parallel(ctx, len(points), func(lo, hi int) {
		q.naiveChunk(points[lo:hi], lo, &res)
	})
	if err != nil {
		return SurfaceResult{}, err
	}
	return res, nil
}

// naiveChunk runs the face loop outermost so each triangle's edge vectors
// are computed once per chunk.
func (q *Query) naiveChunk(points []r3.Vec, offset int, res *SurfaceResult) {
	m := q.mesh
	sets := make([]candidates, len(points))
	for i := range sets {
		sets[i].reset(q.opts.Tolerance)
	}
	closest := make([]r3.Vec, len(points))
	regions := make([]triangle.Region, len(points))
	for f := range m.Faces {
		triangle.ClosestPoints(m.Triangle(f), points, closest, regions)
		for i, p := range points {
			sets[i].offer(f, p, closest[i], regions[i])
		}
	}
	for i, p := range points {
		res.set(offset+i, sets[i].resolve(m, p))
	}
}
