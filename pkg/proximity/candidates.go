package proximity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/mesh"
	"github.com/Drvanon/trimesh/pkg/triangle"
)

type candidate struct {
	face   int
	point  r3.Vec
	region triangle.Region
	dist   float64
}

// candidates collects, for one query point, every triangle within tol of
// the closest distance seen so far. The final set depends only on the
// triangles offered, not their order.
type candidates struct {
	tol  float64
	min  float64
	list []candidate
}

func (c *candidates) reset(tol float64) {
	c.tol = tol
	c.min = math.Inf(1)
	c.list = c.list[:0]
}

func (c *candidates) offer(face int, p, q r3.Vec, region triangle.Region) {
	d := r3.Norm(r3.Sub(p, q))
	if d > c.min+c.tol {
		return
	}
	if d < c.min {
		c.min = d
		keep := c.list[:0]
		for _, e := range c.list {
			if e.dist <= d+c.tol {
				keep = append(keep, e)
			}
		}
		c.list = keep
	}
	c.list = append(c.list, candidate{face: face, point: q, region: region, dist: d})
}

// cutoff returns the squared distance beyond which no triangle can join
// the set.
func (c *candidates) cutoff() float64 {
	b := c.min + c.tol
	return b * b
}

// resolve picks the winner for query point p: the candidate whose face
// normal is most aligned with the offset from the surface, and among
// equally aligned candidates the lowest face index. A zero offset aligns
// with nothing, so points on the surface fall through to the index rule.
func (c *candidates) resolve(m *mesh.Mesh, p r3.Vec) candidate {
	normals := m.FaceNormals()
	align := func(e candidate) float64 {
		off := r3.Sub(p, e.point)
		l := r3.Norm(off)
		if l == 0 {
			return 0
		}
		return math.Abs(r3.Dot(normals[e.face], off)) / l
	}

	best := math.Inf(-1)
	for _, e := range c.list {
		best = math.Max(best, align(e))
	}
	winner := -1
	for i, e := range c.list {
		if align(e) >= best-c.tol && (winner < 0 || e.face < c.list[winner].face) {
			winner = i
		}
	}
	return c.list[winner]
}
