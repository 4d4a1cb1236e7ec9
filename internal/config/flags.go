package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags holds command-line overrides. Only flags set explicitly override
// the config file.
type Flags struct {
	fs *flag.FlagSet

	config       string
	debug        bool
	level        string
	logFile      string
	shape        string
	subdivisions int
	radius       float64
	extents      extentsValue
	cells        int
	scene        string
	workers      int
	leafSize     int
	tolerance    float64
	bruteForce   int
}

// extentsValue parses "x,y,z".
type extentsValue [3]float64

func (e *extentsValue) String() string {
	return fmt.Sprintf("%g,%g,%g", e[0], e[1], e[2])
}

func (e *extentsValue) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return err
		}
		e[i] = v
	}
	return nil
}

// RegisterFlags defines the config flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.config, "config", "", "Path to config file")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.level, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this file")
	fs.StringVar(&f.shape, "shape", "", "Mesh to query: box, icosphere, tetra, sdf-sphere, sdf-box, scene")
	fs.IntVar(&f.subdivisions, "subdivisions", 0, "Icosphere subdivisions")
	fs.Float64Var(&f.radius, "radius", 0, "Sphere or tetrahedron radius")
	fs.Var(&f.extents, "extents", "Box extents as x,y,z")
	fs.IntVar(&f.cells, "cells", 0, "Marching cubes resolution for sdf shapes and scenes")
	fs.StringVar(&f.scene, "scene", "", "Scene script for -shape scene")
	fs.IntVar(&f.workers, "workers", 0, "Query goroutines (0 = GOMAXPROCS)")
	fs.IntVar(&f.leafSize, "leaf-size", 0, "Triangles per index leaf")
	fs.Float64Var(&f.tolerance, "tolerance", 0, "Distance tie tolerance")
	fs.IntVar(&f.bruteForce, "brute-force-below", 0, "Face count below which the index is skipped")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	return f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		case "log-level":
			cfg.Logging.Level = f.level
		case "log-file":
			cfg.Logging.LogFile = f.logFile
		case "shape":
			cfg.Shape.Kind = f.shape
		case "subdivisions":
			cfg.Shape.Subdivisions = f.subdivisions
		case "radius":
			cfg.Shape.Radius = f.radius
		case "extents":
			cfg.Shape.Extents = f.extents
		case "cells":
			cfg.Shape.MeshCells = f.cells
		case "scene":
			cfg.Shape.Scene = f.scene
		case "workers":
			cfg.Query.Workers = f.workers
		case "leaf-size":
			cfg.Query.LeafSize = f.leafSize
		case "tolerance":
			cfg.Query.Tolerance = f.tolerance
		case "brute-force-below":
			cfg.Query.BruteForceBelow = f.bruteForce
		}
	})
}
