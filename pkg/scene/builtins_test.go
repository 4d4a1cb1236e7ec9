package scene

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/kernel/sdfx"
	"github.com/Drvanon/trimesh/pkg/tessellate"
)

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(sphere :radius 2)`,
			expect: `(sphere "__kw_radius" 2)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :height 4 :radius 1)`,
			expect: `(cylinder "__kw_height" 4 "__kw_radius" 1)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def wall-height 3)`,
			expect: `(def wall_height 3)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:outer-radius`,
			expect: `"__kw_outer-radius"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func mustEvaluate(t *testing.T, source string) *tessellate.Node {
	t.Helper()
	root, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return root
}

func TestPartsWithoutAssembly(t *testing.T) {
	root := mustEvaluate(t, `
(defpart "slab" (box :size (vec3 4 2 1)))
(defpart "ball" (sphere :radius 0.5))
(defpart "rod" (cylinder :height 3 :radius 0.25))
`)
	if root.Kind != tessellate.NodeGroup {
		t.Fatalf("root kind = %v, want group", root.Kind)
	}
	want := []tessellate.Shape{
		{Kind: tessellate.ShapeBox, Extents: r3.Vec{X: 4, Y: 2, Z: 1}},
		{Kind: tessellate.ShapeSphere, Radius: 0.5},
		{Kind: tessellate.ShapeCylinder, Height: 3, Radius: 0.25},
	}
	if len(root.Children) != len(want) {
		t.Fatalf("got %d children, want %d", len(root.Children), len(want))
	}
	for i, w := range want {
		n := root.Children[i]
		if n.Kind != tessellate.NodePrimitive {
			t.Errorf("child %d kind = %v, want primitive", i, n.Kind)
		}
		if n.Shape != w {
			t.Errorf("child %d shape = %+v, want %+v", i, n.Shape, w)
		}
	}
}

func TestPositionalBox(t *testing.T) {
	root := mustEvaluate(t, `(defpart "b" (box 1 2.5 3))`)
	got := root.Children[0].Shape.Extents
	if got != (r3.Vec{X: 1, Y: 2.5, Z: 3}) {
		t.Errorf("extents = %v", got)
	}
}

func TestVariableReference(t *testing.T) {
	root := mustEvaluate(t, `
(def wall-thickness 0.2)
(def slab (box :size (vec3 4 4 wall-thickness)))
(defpart "floor" slab)
`)
	if z := root.Children[0].Shape.Extents.Z; z != 0.2 {
		t.Errorf("extents z = %v, want 0.2", z)
	}
}

func TestAssemblyWithPlacement(t *testing.T) {
	root := mustEvaluate(t, `
(defpart "floor" (box 4 4 0.2))
(defpart "ball" (sphere :radius 0.5))
(assembly "room"
  (place (part "floor") :at (vec3 10.5 20.3 30.7))
  (place (part "ball") :at (vec3 1 1 0.5) :rotate (vec3 0 0 90))
  (part "ball"))
`)
	if len(root.Children) != 1 {
		t.Fatalf("expected one assembly, got %d children", len(root.Children))
	}
	asm := root.Children[0]
	if asm.Name != "room" || asm.Kind != tessellate.NodeGroup {
		t.Fatalf("unexpected assembly %q kind %v", asm.Name, asm.Kind)
	}
	if len(asm.Children) != 3 {
		t.Fatalf("assembly has %d children, want 3", len(asm.Children))
	}

	floor := asm.Children[0]
	if floor.Kind != tessellate.NodeTransform {
		t.Fatalf("first child kind = %v, want transform", floor.Kind)
	}
	if floor.Translation != (r3.Vec{X: 10.5, Y: 20.3, Z: 30.7}) {
		t.Errorf("translation = %v", floor.Translation)
	}
	if floor.Rotation != (r3.Vec{}) {
		t.Errorf("rotation = %v, want zero", floor.Rotation)
	}
	if len(floor.Children) != 1 || floor.Children[0].Name != "floor" {
		t.Errorf("placement should wrap the floor part")
	}

	ball := asm.Children[1]
	if ball.Rotation != (r3.Vec{Z: 90}) {
		t.Errorf("rotation = %v", ball.Rotation)
	}
	if asm.Children[2] != ball.Children[0] {
		t.Error("part lookups should share one node")
	}
	if floor.Name == ball.Name {
		t.Errorf("placements share name %q", floor.Name)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing part", `(part "nonexistent")`, "nonexistent"},
		{"duplicate part", `(defpart "a" (box 1 1 1)) (defpart "a" (box 1 1 1))`, "already defined"},
		{"defpart without shape", `(defpart "a" 3)`, "shape"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"vec3 non-number", `(vec3 1 2 "z")`, "number"},
		{"box arity", `(box 1 2)`, "box"},
		{"sphere radius type", `(sphere :radius "big")`, "radius"},
		{"place without ref", `(place 3 :at (vec3 0 0 0))`, "node reference"},
		{"place at type", `(defpart "a" (box 1 1 1)) (place (part "a") :at 3)`, "vec3"},
		{"assembly child", `(assembly "x" 4)`, "child 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if root != nil {
				t.Fatal("expected nil root")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected eval errors")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message %q does not mention %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}

func TestSceneTessellates(t *testing.T) {
	root := mustEvaluate(t, `
(defpart "slab" (box 4 4 1))
(defpart "ball" (sphere :radius 1))
(assembly "stack"
  (part "slab")
  (place (part "ball") :at (vec3 0 0 3)))
`)
	parts, err := tessellate.Tessellate(root, sdfx.New(), tessellate.Options{Cells: 24})
	if err != nil {
		t.Fatalf("tessellate: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	ball := parts[1].Mesh.Bounds()
	if ball.Min.Z < 1.5 || ball.Max.Z > 4.5 {
		t.Errorf("ball bounds %v not around z=3", ball)
	}
}
