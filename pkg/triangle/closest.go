package triangle

import "gonum.org/v1/gonum/spatial/r3"

// Region identifies the Voronoi feature of a triangle that holds the closest
// point: the face interior, one of three edges or one of three vertices.
type Region uint8

const (
	Face Region = iota
	EdgeAB
	EdgeBC
	EdgeCA
	VertexA
	VertexB
	VertexC
)

var regionNames = [...]string{
	Face:    "face",
	EdgeAB:  "edge-ab",
	EdgeBC:  "edge-bc",
	EdgeCA:  "edge-ca",
	VertexA: "vertex-a",
	VertexB: "vertex-b",
	VertexC: "vertex-c",
}

func (r Region) String() string {
	if int(r) < len(regionNames) {
		return regionNames[r]
	}
	return "unknown"
}

// IsEdge reports whether r is one of the three edge regions.
func (r Region) IsEdge() bool { return r >= EdgeAB && r <= EdgeCA }

// IsVertex reports whether r is one of the three vertex regions.
func (r Region) IsVertex() bool { return r >= VertexA && r <= VertexC }

// Edge returns the local vertex indices (0..2) of an edge region.
func (r Region) Edge() (i, j int) {
	switch r {
	case EdgeAB:
		return 0, 1
	case EdgeBC:
		return 1, 2
	case EdgeCA:
		return 2, 0
	}
	return -1, -1
}

// Vertex returns the local vertex index (0..2) of a vertex region.
func (r Region) Vertex() int {
	if r.IsVertex() {
		return int(r - VertexA)
	}
	return -1
}

// ClosestPoint returns the point of the closed triangle t nearest to p and
// the region it falls in.
func ClosestPoint(t Triangle, p r3.Vec) (r3.Vec, Region) {
	if t.IsDegenerate() {
		return closestDegenerate(t, p)
	}
	return closest(t, r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]), p)
}

// ClosestPoints is the batch form of ClosestPoint for many points against one
// triangle. out and regions must be at least len(points) long; regions may be
// nil.
func ClosestPoints(t Triangle, points []r3.Vec, out []r3.Vec, regions []Region) {
	degenerate := t.IsDegenerate()
	ab := r3.Sub(t[1], t[0])
	ac := r3.Sub(t[2], t[0])
	for i, p := range points {
		var q r3.Vec
		var r Region
		if degenerate {
			q, r = closestDegenerate(t, p)
		} else {
			q, r = closest(t, ab, ac, p)
		}
		out[i] = q
		if regions != nil {
			regions[i] = r
		}
	}
}

// closest classifies p against the seven Voronoi regions of a
// non-degenerate triangle using dot products with the edge vectors.
func closest(t Triangle, ab, ac, p r3.Vec) (r3.Vec, Region) {
	a, b, c := t[0], t[1], t[2]

	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a, VertexA
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, VertexB
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)), EdgeAB
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, VertexC
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac)), EdgeCA
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), EdgeBC
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac))), Face
}

// closestDegenerate treats a zero-area triangle as its three edges and keeps
// the nearest segment point. Earlier edges win exact ties.
func closestDegenerate(t Triangle, p r3.Vec) (r3.Vec, Region) {
	edges := [3]Region{EdgeAB, EdgeBC, EdgeCA}
	var best r3.Vec
	var bestRegion Region
	bestDist := -1.0
	for _, e := range edges {
		i, j := e.Edge()
		q, s := closestOnSegment(t[i], t[j], p)
		d := r3.Norm2(r3.Sub(p, q))
		if bestDist >= 0 && d >= bestDist {
			continue
		}
		best, bestDist = q, d
		switch {
		case s <= 0:
			bestRegion = VertexA + Region(i)
		case s >= 1:
			bestRegion = VertexA + Region(j)
		default:
			bestRegion = e
		}
	}
	return best, bestRegion
}

// closestOnSegment returns the point of segment ab nearest to p and its
// clamped parameter along ab.
func closestOnSegment(a, b, p r3.Vec) (r3.Vec, float64) {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a, 0
	}
	s := r3.Dot(r3.Sub(p, a), ab) / l2
	switch {
	case s <= 0:
		return a, 0
	case s >= 1:
		return b, 1
	}
	return r3.Add(a, r3.Scale(s, ab)), s
}
