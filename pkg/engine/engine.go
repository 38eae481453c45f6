// Package engine turns Lisp model scripts into config.Model values. Scripts
// run in a zygomys sandbox whose builtins (engine, manifold, channels,
// section and so on) record the model being described.
package engine

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/lathe/pkg/config"
)

// EvalError is a problem in the script itself. Line is 1-based and zero
// when zygomys did not report a position.
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

// Engine runs model scripts. Each Evaluate call gets a fresh sandbox, so
// results depend only on the source. An Engine is safe for concurrent use;
// when calls overlap, only the most recent one gets its result.
type Engine struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each evaluation. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine returns an Engine with EvalTimeout unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate runs a model script and returns the model it defines.
//
// Problems in the script itself (syntax, unknown keywords, a missing
// model) come back as EvalErrors with a nil error. The error result is
// reserved for the evaluation machinery: ErrTimeout, ErrSuperseded or a
// recovered panic.
func (e *Engine) Evaluate(source string) (*config.Model, []EvalError, error) {
	gen := e.next()
	ch := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		m, evalErrs, err := e.evaluate(source)
		ch <- outcome{model: m, errors: evalErrs, err: err}
	}()

	return e.await(ch, gen)
}

// EvaluateFile reads path and evaluates it. Read failures are returned as
// the error result.
func (e *Engine) EvaluateFile(path string) (*config.Model, []EvalError, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: read %s: %w", path, err)
	}
	return e.Evaluate(string(src))
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*config.Model, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, []EvalError{{Message: errNoModel.Error()}}, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := &script{}
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	m, err := s.result()
	if err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return m, nil, nil
}

// zygomys reports positions as "Error on line N: ..." from the parser and
// "line N: ..." from some runtime paths.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

func parseZygomysError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	for _, re := range linePatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: msg}}
}
