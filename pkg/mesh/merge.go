package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Merge concatenates meshes into one. Vertex indices of each input are
// offset by the vertices before it; nothing is welded, so separate parts
// stay separate components.
func Merge(meshes ...*Mesh) (*Mesh, error) {
	var nv, nf int
	for i, m := range meshes {
		if m == nil {
			return nil, fmt.Errorf("mesh: merge: input %d is nil", i)
		}
		nv += len(m.Vertices)
		nf += len(m.Faces)
	}
	if nv == 0 {
		return nil, ErrNoVertices
	}
	vertices := make([]r3.Vec, 0, nv)
	faces := make([][3]int, 0, nf)
	for _, m := range meshes {
		off := len(vertices)
		vertices = append(vertices, m.Vertices...)
		for _, f := range m.Faces {
			faces = append(faces, [3]int{f[0] + off, f[1] + off, f[2] + off})
		}
	}
	return New(vertices, faces)
}
