// proxq answers proximity queries against a generated triangle mesh.
// Query points are read from stdin, one "x y z" triple per line, and one
// result line is written per point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Drvanon/trimesh/internal/config"
	"github.com/Drvanon/trimesh/internal/logger"
	"github.com/Drvanon/trimesh/pkg/proximity"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// command answers one kind of query for a batch of points.
type command func(ctx context.Context, q *proximity.Query, in io.Reader, out io.Writer) error

var commands = map[string]command{
	"closest":  cmdClosest,
	"naive":    cmdNaive,
	"signed":   cmdSigned,
	"vertex":   cmdVertex,
	"contains": cmdContains,
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	name, args := args[0], args[1:]
	switch name {
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "info", "config":
	default:
		if _, ok := commands[name]; !ok {
			fmt.Fprintf(stderr, "Unknown command: %s\n", name)
			printUsage(stderr)
			return 2
		}
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	save := ""
	if name == "config" {
		fs.StringVar(&save, "save", "", "Write the effective config to this path")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}
	if name == "config" {
		return runConfig(cfg, save, stdout, stderr)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Reset()
	logger.Sugar.Debugf("config: %+v", *cfg)

	m, err := buildMesh(cfg.Shape)
	if err != nil {
		logger.Error("building mesh failed", zap.String("shape", cfg.Shape.Kind), zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	q, err := proximity.New(m, cfg.Query.Options()...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("mesh ready",
		zap.String("shape", cfg.Shape.Kind),
		zap.Int("vertices", m.NumVertices()),
		zap.Int("faces", m.NumFaces()),
		zap.Bool("indexed", q.Indexed()))

	if name == "info" {
		printInfo(stdout, q)
		return 0
	}
	if err := commands[name](ctx, q, stdin, stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("query interrupted", zap.String("command", name))
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runConfig(cfg *config.Config, save string, stdout, stderr io.Writer) int {
	if save != "" {
		if err := cfg.SaveTo(save); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	stdout.Write(data)
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `proxq - proximity queries against a triangle mesh

Usage:
  proxq <command> [options] < points.txt

Commands:
  closest   Closest surface point: x y z distance triangle
  naive     Same as closest, testing every triangle
  signed    Signed distance (positive inside, negative outside)
  vertex    Nearest vertex: index distance
  contains  Whether each point is strictly inside: true/false
  info      Describe the mesh
  config    Print the effective config (-save path to write it)

Options:
  -shape box|icosphere|tetra|sdf-sphere|sdf-box|scene
  -radius R  -extents x,y,z  -subdivisions N  -cells N  -scene file.zy
  -workers N  -leaf-size N  -tolerance T  -brute-force-below N
  -config file.yaml  -log-level L  -log-file path  -debug

Examples:
  echo "0 0 2" | proxq closest -shape icosphere -subdivisions 4
  proxq signed -shape sdf-box -extents 20,20,20 < points.txt
  proxq contains -shape scene -scene room.zy < points.txt`)
}
