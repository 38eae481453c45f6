package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/lathe/pkg/config"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer Evaluate call on the same Engine had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type outcome struct {
	model  *config.Model
	errors []EvalError
	err    error
}

// await blocks until the evaluation tagged gen reports on ch or the
// engine's timeout elapses. A timed-out sandbox keeps running in its
// goroutine; ch is buffered so the late send never blocks.
func (e *Engine) await(ch <-chan outcome, gen uint64) (*config.Model, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case o := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return o.model, o.errors, o.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}
