package proximity

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyMesh is returned for a nil mesh, and by every query on a
	// mesh without faces.
	ErrEmptyMesh = errors.New("proximity: mesh has no faces")
	// ErrEmptyQuery is returned when no query points are given.
	ErrEmptyQuery = errors.New("proximity: no query points")
	// ErrNonFiniteQuery is returned when a query point has a NaN or
	// infinite coordinate.
	ErrNonFiniteQuery = errors.New("non-finite query point")
)

func checkPoints(points []r3.Vec) error {
	if len(points) == 0 {
		return ErrEmptyQuery
	}
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) ||
			math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
			return fmt.Errorf("proximity: point %d %v: %w", i, p, ErrNonFiniteQuery)
		}
	}
	return nil
}
