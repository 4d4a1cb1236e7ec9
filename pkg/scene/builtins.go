package scene

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Drvanon/trimesh/pkg/tessellate"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols.
//  2. ; line comments become // comments.
//  3. Hyphens between identifier characters become underscores, since
//     zygomys reads a hyphen as subtraction.
//
// String literals are copied unchanged.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"' || c == '`':
			j := i + 1
			for j < len(b) && b[j] != c {
				if c == '"' && b[j] == '\\' {
					j++
				}
				j++
			}
			j = min(j+1, len(b))
			result = append(result, b[i:j]...)
			i = j

		case c == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++

		default:
			result = append(result, c)
			i++
		}
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps a tessellate.Shape returned by box, sphere and cylinder.
type sexpShape struct {
	shape tessellate.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	switch s.shape.Kind {
	case tessellate.ShapeSphere:
		return fmt.Sprintf("(sphere :radius %g)", s.shape.Radius)
	case tessellate.ShapeCylinder:
		return fmt.Sprintf("(cylinder :height %g :radius %g)", s.shape.Height, s.shape.Radius)
	}
	e := s.shape.Extents
	return fmt.Sprintf("(box %gx%gx%g)", e.X, e.Y, e.Z)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a scene node so it can be passed between builtins.
type sexpNodeRef struct {
	node *tessellate.Node
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(noderef %q)", n.node.Name)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		switch {
		case !ok:
			result.positional = append(result.positional, args[i])
		case i+1 < len(args):
			result.kw[name] = args[i+1]
			i++
		default:
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toNode extracts the node from a sexpNodeRef.
func toNode(s zygo.Sexp) (*tessellate.Node, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.node, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional numeric keyword argument into dst.
func (a kwArgs) kwFloat(fn, key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = f
	return nil
}

// kwVec3 reads an optional vec3 keyword argument into dst.
func (a kwArgs) kwVec3(fn, key string, dst *r3.Vec) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = vec
	return nil
}

// ---------------------------------------------------------------------------
// Scene building
// ---------------------------------------------------------------------------

// builder collects the nodes created while a script runs.
type builder struct {
	parts      map[string]*tessellate.Node
	order      []*tessellate.Node
	assemblies []*tessellate.Node
	places     int
}

func newBuilder() *builder {
	return &builder{parts: make(map[string]*tessellate.Node)}
}

// root returns the scene: the assemblies when there are any, otherwise
// every part in definition order.
func (b *builder) root() *tessellate.Node {
	children := b.assemblies
	if len(children) == 0 {
		children = b.order
	}
	return &tessellate.Node{Name: "scene", Kind: tessellate.NodeGroup, Children: children}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// Source must be preprocessed with preprocessSource before evaluation so
// that :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (box :size (vec3 4 2 1)) or (box 4 2 1)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		shape := tessellate.Shape{Kind: tessellate.ShapeBox}
		switch {
		case len(pa.positional) == 3:
			v, err := toFloat64s(pa.positional)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
			shape.Extents = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
		case len(pa.positional) == 0:
			if err := pa.kwVec3("box", "size", &shape.Extents); err != nil {
				return zygo.SexpNull, err
			}
		default:
			return zygo.SexpNull, fmt.Errorf("box takes 3 extents or :size, got %d positional arguments", len(pa.positional))
		}
		return &sexpShape{shape: shape}, nil
	})

	// (sphere :radius 1)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		shape := tessellate.Shape{Kind: tessellate.ShapeSphere}
		if err := pa.kwFloat("sphere", "radius", &shape.Radius); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: shape}, nil
	})

	// (cylinder :height 2 :radius 0.5)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		shape := tessellate.Shape{Kind: tessellate.ShapeCylinder}
		if err := pa.kwFloat("cylinder", "height", &shape.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.kwFloat("cylinder", "radius", &shape.Radius); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: shape}, nil
	})

	// (defpart "name" (box ...))
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a shape expression")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if _, dup := b.parts[partName]; dup {
			return zygo.SexpNull, fmt.Errorf("defpart: part %q already defined", partName)
		}
		shape, ok := args[1].(*sexpShape)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected shape expression, got %T", args[1])
		}

		node := &tessellate.Node{Name: partName, Kind: tessellate.NodePrimitive, Shape: shape.shape}
		b.parts[partName] = node
		b.order = append(b.order, node)
		return &sexpNodeRef{node: node}, nil
	})

	// (part "name")
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		n, ok := b.parts[partName]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpNodeRef{node: n}, nil
	})

	// (place (part "ball") :at (vec3 0 0 1) :rotate (vec3 0 0 90))
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires one node reference")
		}
		child, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		b.places++
		node := &tessellate.Node{
			Name:     fmt.Sprintf("place/%s/%d", child.Name, b.places),
			Kind:     tessellate.NodeTransform,
			Children: []*tessellate.Node{child},
		}
		if err := pa.kwVec3("place", "at", &node.Translation); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.kwVec3("place", "rotate", &node.Rotation); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNodeRef{node: node}, nil
	})

	// (assembly "name" (place ...) (part ...) ...)
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}
		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		node := &tessellate.Node{Name: asmName, Kind: tessellate.NodeGroup}
		for i, a := range args[1:] {
			child, err := toNode(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i+1, err)
			}
			node.Children = append(node.Children, child)
		}
		b.assemblies = append(b.assemblies, node)
		return &sexpNodeRef{node: node}, nil
	})
}

func toFloat64s(args []zygo.Sexp) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
