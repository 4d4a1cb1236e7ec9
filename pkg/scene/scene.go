// Package scene evaluates Lisp scene scripts into tessellation trees. It
// wraps zygomys in a sandboxed environment; the builtins describe
// primitives, placements and assemblies:
//
//	(def wall 0.2)
//	(defpart "floor" (box :size (vec3 4 4 wall)))
//	(defpart "ball" (sphere :radius 0.5))
//	(assembly "room"
//	  (place (part "floor") :at (vec3 0 0 -1))
//	  (place (part "ball") :at (vec3 1 1 0.5)))
package scene

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/Drvanon/trimesh/pkg/tessellate"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a scene script and returns the root of the scene tree: a
// group holding every assembly, or every part when the script defines no
// assembly.
//
// Return semantics:
//   - On success: returns root + nil errors + nil error
//   - On parse/eval failure: returns nil root + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*tessellate.Node, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		root, evalErrs := evaluate(source)
		ch <- evalResult{root: root, errors: evalErrs}
	}()

	return e.wait(ch, gen, EvalTimeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string) (*tessellate.Node, []EvalError) {
	b := newBuilder()

	// Empty source is a valid script that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return b.root(), nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return b.root(), nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
