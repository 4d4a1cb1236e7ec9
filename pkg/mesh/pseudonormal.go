package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// edgeKey is an undirected edge stored with the lower vertex index first.
type edgeKey [2]int

func makeEdge(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// topology is the adjacency-derived state of a mesh. It is built once on
// first use and read-only afterwards.
type topology struct {
	edgeFaces     map[edgeKey][]int
	edgeNormals   map[edgeKey]r3.Vec
	vertexNormals []r3.Vec

	boundary    int // edges with one face
	nonManifold int // edges with more than two faces
	misoriented int // edges walked in the same direction by two faces
}

func (m *Mesh) loadTopology() *topology {
	m.topoOnce.Do(func() {
		m.topo = buildTopology(m)
	})
	return m.topo
}

// buildTopology accumulates the pseudo-normals of Bærentzen and Aanæs: an
// edge gets the pi-weighted sum of its face normals and a vertex the sum of
// its face normals weighted by the incident angle.
func buildTopology(m *Mesh) *topology {
	t := &topology{
		edgeFaces:     make(map[edgeKey][]int, len(m.Faces)*3/2),
		edgeNormals:   make(map[edgeKey]r3.Vec, len(m.Faces)*3/2),
		vertexNormals: make([]r3.Vec, len(m.Vertices)),
	}
	directed := make(map[[2]int]int, len(m.Faces)*3)
	for f, face := range m.Faces {
		n := m.normals[f]
		for j := 0; j < 3; j++ {
			a, b, c := face[j], face[(j+1)%3], face[(j+2)%3]

			e := makeEdge(a, b)
			t.edgeFaces[e] = append(t.edgeFaces[e], f)
			t.edgeNormals[e] = r3.Add(t.edgeNormals[e], r3.Scale(math.Pi, n))
			directed[[2]int{a, b}]++

			s1 := r3.Sub(m.Vertices[b], m.Vertices[a])
			s2 := r3.Sub(m.Vertices[c], m.Vertices[a])
			if r3.Norm2(s1) == 0 || r3.Norm2(s2) == 0 {
				continue
			}
			cos := math.Max(-1, math.Min(1, r3.Cos(s1, s2)))
			t.vertexNormals[a] = r3.Add(t.vertexNormals[a], r3.Scale(math.Acos(cos), n))
		}
	}
	for _, faces := range t.edgeFaces {
		switch {
		case len(faces) == 1:
			t.boundary++
		case len(faces) > 2:
			t.nonManifold++
		}
	}
	for _, count := range directed {
		if count > 1 {
			t.misoriented++
		}
	}
	return t
}

func unitOrZero(v r3.Vec) r3.Vec {
	l := r3.Norm(v)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, v)
}

// FacePseudoNormal returns the unit normal of face f.
func (m *Mesh) FacePseudoNormal(f int) r3.Vec {
	return m.normals[f]
}

// EdgePseudoNormal returns the unit pseudo-normal of the edge between
// vertices a and b, or the zero vector if no face uses that edge.
func (m *Mesh) EdgePseudoNormal(a, b int) r3.Vec {
	return unitOrZero(m.loadTopology().edgeNormals[makeEdge(a, b)])
}

// VertexPseudoNormal returns the angle-weighted unit pseudo-normal of vertex
// v, or the zero vector for a vertex no face uses.
func (m *Mesh) VertexPseudoNormal(v int) r3.Vec {
	return unitOrZero(m.loadTopology().vertexNormals[v])
}

// EdgeFaces returns the faces sharing the edge between vertices a and b.
func (m *Mesh) EdgeFaces(a, b int) []int {
	return m.loadTopology().edgeFaces[makeEdge(a, b)]
}

// BoundaryEdges returns the number of edges used by exactly one face.
func (m *Mesh) BoundaryEdges() int { return m.loadTopology().boundary }

// NonManifoldEdges returns the number of edges shared by more than two faces.
func (m *Mesh) NonManifoldEdges() int { return m.loadTopology().nonManifold }

// IsWatertight reports whether every edge is shared by exactly two faces.
func (m *Mesh) IsWatertight() bool {
	t := m.loadTopology()
	return len(m.Faces) > 0 && t.boundary == 0 && t.nonManifold == 0
}

// IsWindingConsistent reports whether neighbouring faces walk their shared
// edge in opposite directions.
func (m *Mesh) IsWindingConsistent() bool {
	return m.loadTopology().misoriented == 0
}
