package proximity

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/internal/logger"
	"github.com/Drvanon/trimesh/pkg/bvh"
	"github.com/Drvanon/trimesh/pkg/mesh"
	"github.com/Drvanon/trimesh/pkg/triangle"
)

// minChunk is the smallest number of points handed to one goroutine.
const minChunk = 64

// SurfaceResult holds, per query point, the closest point on the surface,
// its distance, the owning face and which feature of that face it lies on.
type SurfaceResult struct {
	Points    []r3.Vec
	Distances []float64
	Triangles []int
	Regions   []triangle.Region
}

func newSurfaceResult(n int) SurfaceResult {
	return SurfaceResult{
		Points:    make([]r3.Vec, n),
		Distances: make([]float64, n),
		Triangles: make([]int, n),
		Regions:   make([]triangle.Region, n),
	}
}

func (r *SurfaceResult) set(i int, c candidate) {
	r.Points[i] = c.point
	r.Distances[i] = c.dist
	r.Triangles[i] = c.face
	r.Regions[i] = c.region
}

// Query owns the acceleration structures for one mesh. The mesh must not be
// modified while the Query is in use.
type Query struct {
	mesh *mesh.Mesh
	opts Options
	log  *zap.Logger

	tree *bvh.Tree // nil when faces < BruteForceBelow

	kdOnce sync.Once
	kd     *kdtree.Tree

	warnOnce sync.Once
}

// New builds a Query for m. The triangle index is built immediately; the
// vertex index is built on first use.
func New(m *mesh.Mesh, opts ...Option) (*Query, error) {
	if m == nil {
		return nil, ErrEmptyMesh
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	q := &Query{
		mesh: m,
		opts: o,
		log:  logger.Named("proximity"),
	}
	if m.NumFaces() > 0 && m.NumFaces() >= o.BruteForceBelow {
		start := time.Now()
		q.tree = bvh.Build(m.FaceBoxes(), o.LeafSize)
		q.log.Debug("built triangle index",
			zap.Int("faces", m.NumFaces()),
			zap.Int("nodes", len(q.tree.Nodes)),
			zap.Int("depth", q.tree.Depth()),
			zap.Duration("elapsed", time.Since(start)))
	}
	return q, nil
}

// Mesh returns the queried mesh.
func (q *Query) Mesh() *mesh.Mesh { return q.mesh }

// Options returns the effective options.
func (q *Query) Options() Options { return q.opts }

// Indexed reports whether surface queries use the triangle index.
func (q *Query) Indexed() bool { return q.tree != nil }

// OnSurface returns the closest surface point for every query point, using
// the triangle index when the mesh is large enough.
func (q *Query) OnSurface(ctx context.Context, points []r3.Vec) (SurfaceResult, error) {
	if q.tree == nil {
		return q.Naive(ctx, points)
	}
	if err := q.checkQuery(points); err != nil {
		return SurfaceResult{}, err
	}
	res := newSurfaceResult(len(points))
	err := q.parallel(ctx, len(points), func(lo, hi int) {
		var c candidates
		for i := lo; i < hi; i++ {
			res.set(i, q.closest(points[i], &c))
		}
	})
	if err != nil {
		return SurfaceResult{}, err
	}
	return res, nil
}

// checkQuery rejects a faceless mesh and empty or non-finite batches for
// every operation.
func (q *Query) checkQuery(points []r3.Vec) error {
	if q.mesh.NumFaces() == 0 {
		return ErrEmptyMesh
	}
	return checkPoints(points)
}

// parallel splits [0, n) into contiguous chunks and runs fn on them with at
// most Workers goroutines. The context is checked before each chunk starts.
func (q *Query) parallel(ctx context.Context, n int, fn func(lo, hi int)) error {
	workers := q.opts.Workers
	if workers < 1 {
		workers = 1
	}
	chunk := (n + 4*workers - 1) / (4 * workers)
	if chunk < minChunk {
		chunk = minChunk
	}
	if workers == 1 || n <= chunk {
		for lo := 0; lo < n; lo += chunk {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(lo, min(lo+chunk, n))
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		if gctx.Err() != nil {
			break
		}
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ClosestPointNaive checks every point against every face of m.
func ClosestPointNaive(m *mesh.Mesh, points []r3.Vec) (SurfaceResult, error) {
	q, err := New(m, WithBruteForceBelow(math.MaxInt))
	if err != nil {
		return SurfaceResult{}, err
	}
	return q.Naive(context.Background(), points)
}

// ClosestPoint returns the closest surface point of m for every query point.
func ClosestPoint(m *mesh.Mesh, points []r3.Vec) (SurfaceResult, error) {
	q, err := New(m)
	if err != nil {
		return SurfaceResult{}, err
	}
	return q.OnSurface(context.Background(), points)
}

// SignedDistance returns the signed distance from m to every query point:
// positive inside, negative outside and zero on the surface.
func SignedDistance(m *mesh.Mesh, points []r3.Vec) ([]float64, error) {
	q, err := New(m)
	if err != nil {
		return nil, err
	}
	return q.SignedDistance(context.Background(), points)
}

// NearestVertex returns the closest vertex of m for every query point.
func NearestVertex(m *mesh.Mesh, points []r3.Vec) (VertexResult, error) {
	q, err := New(m, WithBruteForceBelow(math.MaxInt))
	if err != nil {
		return VertexResult{}, err
	}
	return q.Vertex(context.Background(), points)
}

// Contains reports whether each query point lies inside m.
func Contains(m *mesh.Mesh, points []r3.Vec) ([]bool, error) {
	q, err := New(m)
	if err != nil {
		return nil, err
	}
	return q.Contains(context.Background(), points)
}
