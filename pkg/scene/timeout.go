package scene

import (
	"errors"
	"fmt"
	"time"

	"github.com/Drvanon/trimesh/pkg/tessellate"
)

// EvalTimeout bounds one call to Evaluate.
const EvalTimeout = 5 * time.Second

// errSuperseded is returned when a newer Evaluate started before this one
// finished.
var errSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	root   *tessellate.Node
	errors []EvalError
	err    error
}

// latest reports the generation of the most recent Evaluate call.
func (e *Engine) latest() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// wait blocks for the evaluation numbered gen. A script still running at
// EvalTimeout is abandoned; its goroutine finishes in the background and
// the buffered channel absorbs the late result.
func (e *Engine) wait(ch <-chan evalResult, gen uint64, timeout time.Duration) (*tessellate.Node, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != e.latest() {
			return nil, nil, errSuperseded
		}
		return res.root, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
