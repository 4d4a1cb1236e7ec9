package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/proximity"
)

// readPoints parses one "x y z" triple per line. Blank lines and lines
// starting with # are skipped; commas may separate the coordinates.
func readPoints(r io.Reader) ([]r3.Vec, error) {
	var points []r3.Vec
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 coordinates, got %d", line, len(fields))
		}
		var c [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			c[i] = v
		}
		points = append(points, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading points: %w", err)
	}
	return points, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeLines writes n lines produced by line through a buffered writer.
func writeLines(out io.Writer, n int, line func(w *bufio.Writer, i int)) error {
	w := bufio.NewWriter(out)
	for i := 0; i < n; i++ {
		line(w, i)
		w.WriteByte('\n')
	}
	return w.Flush()
}

func writeSurface(out io.Writer, res proximity.SurfaceResult) error {
	return writeLines(out, len(res.Points), func(w *bufio.Writer, i int) {
		p := res.Points[i]
		fmt.Fprintf(w, "%s %s %s %s %d",
			formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z),
			formatFloat(res.Distances[i]), res.Triangles[i])
	})
}

func cmdClosest(ctx context.Context, q *proximity.Query, in io.Reader, out io.Writer) error {
	points, err := readPoints(in)
	if err != nil {
		return err
	}
	res, err := q.OnSurface(ctx, points)
	if err != nil {
		return err
	}
	return writeSurface(out, res)
}

func cmdNaive(ctx context.Context, q *proximity.Query, in io.Reader, out io.Writer) error {
	points, err := readPoints(in)
	if err != nil {
		return err
	}
	res, err := q.Naive(ctx, points)
	if err != nil {
		return err
	}
	return writeSurface(out, res)
}

func cmdSigned(ctx context.Context, q *proximity.Query, in io.Reader, out io.Writer) error {
	points, err := readPoints(in)
	if err != nil {
		return err
	}
	d, err := q.SignedDistance(ctx, points)
	if err != nil {
		return err
	}
	return writeLines(out, len(d), func(w *bufio.Writer, i int) {
		w.WriteString(formatFloat(d[i]))
	})
}

func cmdVertex(ctx context.Context, q *proximity.Query, in io.Reader, out io.Writer) error {
	points, err := readPoints(in)
	if err != nil {
		return err
	}
	res, err := q.Vertex(ctx, points)
	if err != nil {
		return err
	}
	return writeLines(out, len(res.Indices), func(w *bufio.Writer, i int) {
		fmt.Fprintf(w, "%d %s", res.Indices[i], formatFloat(res.Distances[i]))
	})
}

func cmdContains(ctx context.Context, q *proximity.Query, in io.Reader, out io.Writer) error {
	points, err := readPoints(in)
	if err != nil {
		return err
	}
	inside, err := q.Contains(ctx, points)
	if err != nil {
		return err
	}
	return writeLines(out, len(inside), func(w *bufio.Writer, i int) {
		w.WriteString(strconv.FormatBool(inside[i]))
	})
}

func printInfo(out io.Writer, q *proximity.Query) {
	m := q.Mesh()
	b := m.Bounds()
	fmt.Fprintf(out, "Vertices:    %d\n", m.NumVertices())
	fmt.Fprintf(out, "Faces:       %d\n", m.NumFaces())
	fmt.Fprintf(out, "Bounds:      %v - %v\n", b.Min, b.Max)
	fmt.Fprintf(out, "Area:        %s\n", formatFloat(m.Area()))
	fmt.Fprintf(out, "Volume:      %s\n", formatFloat(m.Volume()))
	fmt.Fprintf(out, "Watertight:  %v\n", m.IsWatertight())
	fmt.Fprintf(out, "Winding:     consistent=%v\n", m.IsWindingConsistent())
	fmt.Fprintf(out, "Indexed:     %v\n", q.Indexed())

	res := m.Validate()
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  %v\n", e)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  %v\n", w)
	}
}
