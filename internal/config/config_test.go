package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Drvanon/trimesh/pkg/proximity"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test query defaults
	if cfg.Query.LeafSize != 4 {
		t.Errorf("expected leaf size 4, got %d", cfg.Query.LeafSize)
	}
	if cfg.Query.Tolerance != 1e-8 {
		t.Errorf("expected tolerance 1e-8, got %g", cfg.Query.Tolerance)
	}
	if cfg.Query.Workers != 0 {
		t.Errorf("expected workers 0, got %d", cfg.Query.Workers)
	}

	// Test shape defaults
	if cfg.Shape.Kind != ShapeIcosphere {
		t.Errorf("expected shape icosphere, got %s", cfg.Shape.Kind)
	}
	if cfg.Shape.Radius != 1 {
		t.Errorf("expected radius 1, got %g", cfg.Shape.Radius)
	}

	// Test logging defaults
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
query:
  leaf_size: 8
  tolerance: 1e-6
  workers: 3

shape:
  kind: "sdf-box"
  extents: [2, 3, 4]
  mesh_cells: 40

logging:
  level: "debug"
  log_file: "proxq.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Query.LeafSize != 8 {
		t.Errorf("expected leaf size 8, got %d", cfg.Query.LeafSize)
	}
	if cfg.Query.Tolerance != 1e-6 {
		t.Errorf("expected tolerance 1e-6, got %g", cfg.Query.Tolerance)
	}
	if cfg.Query.Workers != 3 {
		t.Errorf("expected workers 3, got %d", cfg.Query.Workers)
	}
	if cfg.Shape.Kind != ShapeSDFBox {
		t.Errorf("expected sdf-box, got %s", cfg.Shape.Kind)
	}
	if cfg.Shape.Extents != [3]float64{2, 3, 4} {
		t.Errorf("expected extents [2 3 4], got %v", cfg.Shape.Extents)
	}
	if cfg.Logging.LogFile != "proxq.log" {
		t.Errorf("expected log file proxq.log, got %s", cfg.Logging.LogFile)
	}

	// Unset keys keep their defaults
	if cfg.Query.BruteForceBelow != proximity.DefaultBruteForceBelow {
		t.Errorf("expected default brute force threshold, got %d", cfg.Query.BruteForceBelow)
	}
	if cfg.Shape.Subdivisions != 3 {
		t.Errorf("expected default subdivisions 3, got %d", cfg.Shape.Subdivisions)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	tmpDir := t.TempDir()
	if err := loadFromFile(Default(), filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("query: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadFromFile(Default(), bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return f
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "proxq.yaml")
	yamlContent := `
query:
  workers: 2
  leaf_size: 16
shape:
  kind: box
logging:
  level: info
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	f := parseFlags(t, "-config", configPath, "-workers", "6", "-debug", "-extents", "1, 2,3")
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Query.Workers != 6 {
		t.Errorf("flag should override file: workers = %d", cfg.Query.Workers)
	}
	if cfg.Query.LeafSize != 16 {
		t.Errorf("file should override default: leaf size = %d", cfg.Query.LeafSize)
	}
	if cfg.Shape.Kind != ShapeBox {
		t.Errorf("file should override default: kind = %s", cfg.Shape.Kind)
	}
	if cfg.Shape.Extents != [3]float64{1, 2, 3} {
		t.Errorf("extents = %v", cfg.Shape.Extents)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("-debug should set level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Shape.Radius != 1 {
		t.Errorf("unset flag changed radius to %g", cfg.Shape.Radius)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown shape", []string{"-shape", "torus"}, "shape.kind"},
		{"zero radius", []string{"-shape", "tetra", "-radius", "0"}, "shape.radius"},
		{"negative extents", []string{"-shape", "box", "-extents", "1,-1,1"}, "shape.extents"},
		{"too many subdivisions", []string{"-subdivisions", "99"}, "shape.subdivisions"},
		{"zero cells", []string{"-shape", "sdf-sphere", "-cells", "0"}, "shape.mesh_cells"},
		{"scene without script", []string{"-shape", "scene"}, "shape.scene"},
		{"scene zero cells", []string{"-shape", "scene", "-scene", "a.zy", "-cells", "0"}, "shape.mesh_cells"},
		{"zero leaf size", []string{"-leaf-size", "0"}, "query.leaf_size"},
		{"negative workers", []string{"-workers", "-2"}, "query.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(parseFlags(t, tt.args...))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestExtentsFlagErrors(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	RegisterFlags(fs)
	for _, arg := range []string{"1,2", "a,b,c"} {
		if err := fs.Parse([]string{"-extents", arg}); err == nil {
			t.Errorf("-extents %q should fail", arg)
		}
	}
}

func TestQueryOptions(t *testing.T) {
	q := QueryConfig{LeafSize: 7, Tolerance: 1e-5, Workers: 3, BruteForceBelow: 0}
	o := proximity.DefaultOptions()
	for _, opt := range q.Options() {
		opt(&o)
	}
	want := proximity.Options{LeafSize: 7, Tolerance: 1e-5, Workers: 3, BruteForceBelow: 0}
	if o != want {
		t.Errorf("options = %+v, want %+v", o, want)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Shape.Kind = ShapeTetra
	cfg.Query.Workers = 5
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", loaded, cfg)
	}
}
