// Package config handles proxq configuration loading and management.
package config

import (
	"fmt"

	"github.com/Drvanon/trimesh/pkg/bvh"
	"github.com/Drvanon/trimesh/pkg/primitives"
	"github.com/Drvanon/trimesh/pkg/proximity"
)

// Shape kinds accepted by ShapeConfig.Kind.
const (
	ShapeBox       = "box"
	ShapeIcosphere = "icosphere"
	ShapeTetra     = "tetra"
	ShapeSDFSphere = "sdf-sphere"
	ShapeSDFBox    = "sdf-box"
	ShapeScene     = "scene"
)

// Config holds all proxq settings.
type Config struct {
	Query   QueryConfig   `yaml:"query"`
	Shape   ShapeConfig   `yaml:"shape"`
	Logging LoggingConfig `yaml:"logging"`
}

// QueryConfig holds proximity query tuning.
type QueryConfig struct {
	LeafSize        int     `yaml:"leaf_size"`
	Tolerance       float64 `yaml:"tolerance"`
	Workers         int     `yaml:"workers"` // 0 selects GOMAXPROCS
	BruteForceBelow int     `yaml:"brute_force_below"`
}

// ShapeConfig describes the generated mesh that points are queried against.
type ShapeConfig struct {
	Kind         string     `yaml:"kind"`
	Subdivisions int        `yaml:"subdivisions"` // icosphere only
	Radius       float64    `yaml:"radius"`
	Extents      [3]float64 `yaml:"extents"`
	MeshCells    int        `yaml:"mesh_cells"` // sdf shapes and scenes
	Scene        string     `yaml:"scene"`      // scene script path
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Query: QueryConfig{
			LeafSize:        bvh.DefaultLeafSize,
			Tolerance:       proximity.DefaultTolerance,
			Workers:         0,
			BruteForceBelow: proximity.DefaultBruteForceBelow,
		},
		Shape: ShapeConfig{
			Kind:         ShapeIcosphere,
			Subdivisions: 3,
			Radius:       1,
			Extents:      [3]float64{1, 1, 1},
			MeshCells:    64,
		},
		Logging: LoggingConfig{
			Level:   "warn",
			LogFile: "",
		},
	}
}

// Options converts the query settings to proximity options.
func (q QueryConfig) Options() []proximity.Option {
	return []proximity.Option{
		proximity.WithLeafSize(q.LeafSize),
		proximity.WithTolerance(q.Tolerance),
		proximity.WithWorkers(q.Workers),
		proximity.WithBruteForceBelow(q.BruteForceBelow),
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	q := c.Query
	if q.LeafSize < 1 {
		return fmt.Errorf("config: query.leaf_size %d must be at least 1", q.LeafSize)
	}
	if q.Tolerance < 0 {
		return fmt.Errorf("config: query.tolerance %g must not be negative", q.Tolerance)
	}
	if q.Workers < 0 {
		return fmt.Errorf("config: query.workers %d must not be negative", q.Workers)
	}

	s := c.Shape
	switch s.Kind {
	case ShapeBox, ShapeSDFBox:
		for _, e := range s.Extents {
			if e <= 0 {
				return fmt.Errorf("config: shape.extents %v must be positive", s.Extents)
			}
		}
	case ShapeIcosphere, ShapeTetra, ShapeSDFSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("config: shape.radius %g must be positive", s.Radius)
		}
	case ShapeScene:
		if s.Scene == "" {
			return fmt.Errorf("config: shape.scene must name a script for kind %q", ShapeScene)
		}
	default:
		return fmt.Errorf("config: unknown shape.kind %q", s.Kind)
	}
	if s.Kind == ShapeIcosphere && (s.Subdivisions < 0 || s.Subdivisions > primitives.MaxSubdivisions) {
		return fmt.Errorf("config: shape.subdivisions %d outside [0, %d]", s.Subdivisions, primitives.MaxSubdivisions)
	}
	if (s.Kind == ShapeSDFBox || s.Kind == ShapeSDFSphere || s.Kind == ShapeScene) && s.MeshCells < 1 {
		return fmt.Errorf("config: shape.mesh_cells %d must be at least 1", s.MeshCells)
	}
	return nil
}
