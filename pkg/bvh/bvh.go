// Package bvh implements a static bounding volume hierarchy over axis-aligned
// boxes. Nodes live in one contiguous slice and refer to their children by
// index, so a built tree is a plain value that many goroutines can traverse
// at once.
package bvh

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultLeafSize is the largest number of items stored in a leaf.
const DefaultLeafSize = 4

// Node is one entry of the tree arena. Internal nodes have two children;
// leaves own the item range Items[Start:Start+Count].
type Node struct {
	Box         r3.Box
	Left, Right int32 // -1 for leaves
	Start       int32
	Count       int32
}

// IsLeaf reports whether the node holds items instead of children.
func (n *Node) IsLeaf() bool { return n.Left < 0 }

// Tree is a bounding volume hierarchy. Nodes[0] is the root.
type Tree struct {
	Nodes []Node
	// Items is a permutation of the input indices; leaves index into it.
	Items []int
	// Boxes are the input boxes, indexed by item.
	Boxes []r3.Box
}

// Build constructs a tree over boxes with top-down median splits along the
// longest axis of the centroid bounds. Equal centroids are ordered by item
// index so the result does not depend on sort internals.
func Build(boxes []r3.Box, leafSize int) *Tree {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}
	t := &Tree{
		Items: make([]int, len(boxes)),
		Boxes: boxes,
	}
	if len(boxes) == 0 {
		return t
	}
	centroids := make([]r3.Vec, len(boxes))
	for i, b := range boxes {
		centroids[i] = r3.Scale(0.5, r3.Add(b.Min, b.Max))
		t.Items[i] = i
	}
	t.Nodes = make([]Node, 0, 2*len(boxes)/leafSize+1)
	b := &builder{tree: t, centroids: centroids, leafSize: leafSize}
	b.build(0, len(boxes))
	return t
}

type builder struct {
	tree      *Tree
	centroids []r3.Vec
	leafSize  int
}

// build appends the node for Items[start:end] and returns its index.
func (b *builder) build(start, end int) int32 {
	t := b.tree
	idx := int32(len(t.Nodes))
	box := t.Boxes[t.Items[start]]
	for _, it := range t.Items[start+1 : end] {
		box = Union(box, t.Boxes[it])
	}
	t.Nodes = append(t.Nodes, Node{Box: box, Left: -1, Right: -1, Start: int32(start), Count: int32(end - start)})

	if end-start <= b.leafSize {
		return idx
	}

	axis := b.splitAxis(start, end)
	items := t.Items[start:end]
	sort.Slice(items, func(i, j int) bool {
		ci := component(b.centroids[items[i]], axis)
		cj := component(b.centroids[items[j]], axis)
		if ci != cj {
			return ci < cj
		}
		return items[i] < items[j]
	})

	mid := (start + end) / 2
	left := b.build(start, mid)
	right := b.build(mid, end)
	n := &t.Nodes[idx]
	n.Left, n.Right = left, right
	n.Start, n.Count = 0, 0
	return idx
}

// splitAxis returns the axis with the largest centroid extent.
func (b *builder) splitAxis(start, end int) int {
	c := b.centroids[b.tree.Items[start]]
	lo, hi := c, c
	for _, it := range b.tree.Items[start+1 : end] {
		c = b.centroids[it]
		lo = r3.Vec{X: math.Min(lo.X, c.X), Y: math.Min(lo.Y, c.Y), Z: math.Min(lo.Z, c.Z)}
		hi = r3.Vec{X: math.Max(hi.X, c.X), Y: math.Max(hi.Y, c.Y), Z: math.Max(hi.Z, c.Z)}
	}
	ext := r3.Sub(hi, lo)
	switch {
	case ext.Y > ext.X && ext.Y >= ext.Z:
		return 1
	case ext.Z > ext.X && ext.Z > ext.Y:
		return 2
	}
	return 0
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	return v.X
}

// Union returns the smallest box containing a and b. Unlike r3.Box.Union it
// keeps flat boxes, which are common for axis-aligned triangles.
func Union(a, b r3.Box) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}

// LowerBound returns the squared distance from p to the closest point of box
// b, which is zero when p is inside b.
func LowerBound(b r3.Box, p r3.Vec) float64 {
	dx := math.Max(math.Max(b.Min.X-p.X, 0), p.X-b.Max.X)
	dy := math.Max(math.Max(b.Min.Y-p.Y, 0), p.Y-b.Max.Y)
	dz := math.Max(math.Max(b.Min.Z-p.Z, 0), p.Z-b.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

// Len returns the number of items in the tree.
func (t *Tree) Len() int { return len(t.Items) }

// Depth returns the number of levels of the tree.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var depth func(i int32) int
	depth = func(i int32) int {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return 1
		}
		return 1 + max(depth(n.Left), depth(n.Right))
	}
	return depth(0)
}

// Nearest walks the tree best-first from p. Leaves are handed to visit in
// order of increasing squared box distance; visit returns the caller's
// current squared cutoff. A subtree is skipped only when its lower bound is
// strictly greater than the cutoff, so an item whose true distance is within
// the final cutoff is always visited. bound is the initial squared cutoff,
// math.Inf(1) for an unbounded search.
func (t *Tree) Nearest(p r3.Vec, bound float64, visit func(items []int) float64) {
	if len(t.Nodes) == 0 {
		return
	}
	q := make(queue, 0, 32)
	if d := LowerBound(t.Nodes[0].Box, p); d <= bound {
		q = append(q, entry{node: 0, dist: d})
	}
	for len(q) > 0 {
		e := heap.Pop(&q).(entry)
		if e.dist > bound {
			break
		}
		n := &t.Nodes[e.node]
		if n.IsLeaf() {
			bound = visit(t.Items[n.Start : n.Start+n.Count])
			continue
		}
		for _, c := range [2]int32{n.Left, n.Right} {
			if d := LowerBound(t.Nodes[c].Box, p); d <= bound {
				heap.Push(&q, entry{node: c, dist: d})
			}
		}
	}
}

// Within returns, in ascending order, every item whose box lies within
// distance d of p.
func (t *Tree) Within(p r3.Vec, d float64) []int {
	if len(t.Nodes) == 0 || d < 0 {
		return nil
	}
	d2 := d * d
	var out []int
	stack := []int32{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.Nodes[i]
		if LowerBound(n.Box, p) > d2 {
			continue
		}
		if !n.IsLeaf() {
			stack = append(stack, n.Left, n.Right)
			continue
		}
		for _, it := range t.Items[n.Start : n.Start+n.Count] {
			if LowerBound(t.Boxes[it], p) <= d2 {
				out = append(out, it)
			}
		}
	}
	sort.Ints(out)
	return out
}

type entry struct {
	node int32
	dist float64
}

// queue is a min-heap of nodes keyed on their squared lower bound.
type queue []entry

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q queue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *queue) Push(x interface{}) { *q = append(*q, x.(entry)) }
func (q *queue) Pop() interface{} {
	old := *q
	e := old[len(old)-1]
	*q = old[:len(old)-1]
	return e
}
