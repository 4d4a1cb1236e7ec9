package proximity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/triangle"
)

// closest runs the best-first index search for one point. Leaves are
// visited in order of box distance and the search stops once every
// remaining box is farther than the closest distance plus the tolerance.
// c is scratch space reused across points.
func (q *Query) closest(p r3.Vec, c *candidates) candidate {
	c.reset(q.opts.Tolerance)
	m := q.mesh
	q.tree.Nearest(p, math.Inf(1), func(items []int) float64 {
		for _, f := range items {
			pt, region := triangle.ClosestPoint(m.Triangle(f), p)
			c.offer(f, p, pt, region)
		}
		return c.cutoff()
	})
	return c.resolve(m, p)
}
