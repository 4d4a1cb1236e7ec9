package proximity

import (
	"runtime"

	"github.com/Drvanon/trimesh/pkg/bvh"
)

// DefaultTolerance is the distance within which two triangles count as
// equally close to a query point.
const DefaultTolerance = 1e-8

// DefaultBruteForceBelow is the face count under which surface queries skip
// the spatial index.
const DefaultBruteForceBelow = 16

// Options tunes a Query.
type Options struct {
	LeafSize        int
	Tolerance       float64
	Workers         int
	BruteForceBelow int
}

// Option configures a Query.
type Option func(*Options)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		LeafSize:        bvh.DefaultLeafSize,
		Tolerance:       DefaultTolerance,
		Workers:         runtime.GOMAXPROCS(0),
		BruteForceBelow: DefaultBruteForceBelow,
	}
}

// WithLeafSize sets the number of triangles per index leaf.
func WithLeafSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.LeafSize = n
		}
	}
}

// WithTolerance sets the tie tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		if tol >= 0 {
			o.Tolerance = tol
		}
	}
}

// WithWorkers sets how many goroutines process a batch. Values below one
// select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.Workers = n
	}
}

// WithBruteForceBelow sets the face count under which the spatial index is
// not used. Zero always uses the index.
func WithBruteForceBelow(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.BruteForceBelow = n
		}
	}
}
