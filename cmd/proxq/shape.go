package main

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/internal/config"
	"github.com/Drvanon/trimesh/pkg/kernel/sdfx"
	"github.com/Drvanon/trimesh/pkg/mesh"
	"github.com/Drvanon/trimesh/pkg/primitives"
	"github.com/Drvanon/trimesh/pkg/scene"
	"github.com/Drvanon/trimesh/pkg/tessellate"
)

// buildMesh generates the mesh described by s.
func buildMesh(s config.ShapeConfig) (*mesh.Mesh, error) {
	extents := r3.Vec{X: s.Extents[0], Y: s.Extents[1], Z: s.Extents[2]}
	switch s.Kind {
	case config.ShapeBox:
		return primitives.Box(extents)
	case config.ShapeIcosphere:
		return primitives.Icosphere(s.Subdivisions, s.Radius)
	case config.ShapeTetra:
		return primitives.Tetrahedron(s.Radius)
	case config.ShapeSDFSphere:
		return tessellateShape(tessellate.Shape{Kind: tessellate.ShapeSphere, Radius: s.Radius}, s.MeshCells)
	case config.ShapeSDFBox:
		return tessellateShape(tessellate.Shape{Kind: tessellate.ShapeBox, Extents: extents}, s.MeshCells)
	case config.ShapeScene:
		return sceneMesh(s.Scene, s.MeshCells)
	}
	return nil, fmt.Errorf("unknown shape %q", s.Kind)
}

func tessellateShape(shape tessellate.Shape, cells int) (*mesh.Mesh, error) {
	k := sdfx.New()
	solid, err := tessellate.Solid(k, shape)
	if err != nil {
		return nil, err
	}
	return tessellate.Mesh(k, solid, tessellate.Options{Cells: cells})
}

// sceneMesh evaluates a scene script and merges its parts into one mesh.
func sceneMesh(path string, cells int) (*mesh.Mesh, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	root, evalErrs, err := scene.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("scene %s: %w", path, errors.Join(errs...))
	}
	parts, err := tessellate.Tessellate(root, sdfx.New(), tessellate.Options{Cells: cells})
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("scene %s: no parts", path)
	}
	meshes := make([]*mesh.Mesh, len(parts))
	for i, p := range parts {
		meshes[i] = p.Mesh
	}
	return mesh.Merge(meshes...)
}
