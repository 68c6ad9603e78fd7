// Package action provides evaluators that turn action code attached to grammar
// alternatives into callables run on successful matches.
package action

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// ErrUnknownAction is returned when a registry has no callable for the code.
var ErrUnknownAction = errors.New("unknown action")

// Evaluator compiles action code into a callable.
type Evaluator interface {
	Compile(code string) (peg.ActionFunc, error)
}

// Named is implemented by evaluators that report a stable name, used to key
// caches of compiled grammars.
type Named interface {
	Name() string
}

// NameOf returns the evaluator's name, or its Go type when it has none.
func NameOf(e Evaluator) string {
	if n, ok := e.(Named); ok {
		return n.Name()
	}

	return fmt.Sprintf("%T", e)
}

// Registry maps trimmed action code to pre-registered callables. It never runs
// dynamic code.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]peg.ActionFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]peg.ActionFunc)}
}

// Register adds fn under code, replacing any earlier entry.
func (r *Registry) Register(code string, fn peg.ActionFunc) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.funcs[strings.TrimSpace(code)] = fn

	return r
}

// Compile looks up the callable registered for code.
func (r *Registry) Compile(code string) (peg.ActionFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[strings.TrimSpace(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}

	return fn, nil
}

// Codes returns the registered codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.funcs))
}

// Name implements Named.
func (r *Registry) Name() string { return "registry" }

// Builtins returns a registry preloaded with the standard actions.
func Builtins() *Registry {
	r := NewRegistry()

	r.Register("text", func(b peg.Bindings) (any, error) { return b.Text, nil })
	r.Register("match", wholeMatch)
	r.Register(peg.WholeMatch, wholeMatch)
	r.Register("join", func(b peg.Bindings) (any, error) { return peg.Join(b.Match), nil })
	r.Register("null", func(peg.Bindings) (any, error) { return nil, nil })
	r.Register("captures", func(b peg.Bindings) (any, error) { return b.Map(), nil })
	r.Register("first", func(b peg.Bindings) (any, error) {
		if items, ok := b.Match.([]any); ok {
			if len(items) == 0 {
				return nil, nil
			}

			return items[0], nil
		}

		return b.Match, nil
	})
	r.Register("compact", func(b peg.Bindings) (any, error) { return peg.Compact(b.Match), nil })

	return r
}

func wholeMatch(b peg.Bindings) (any, error) { return b.Match, nil }

type passthrough struct{}

// Passthrough ignores action code and returns the whole match.
func Passthrough() Evaluator { return passthrough{} }

func (passthrough) Compile(string) (peg.ActionFunc, error) { return wholeMatch, nil }
func (passthrough) Name() string                          { return "none" }

type chain struct {
	evals []Evaluator
}

// Chain tries each evaluator in turn; the first that compiles the code wins.
// When none does, the errors of all of them are joined.
func Chain(evals ...Evaluator) Evaluator { return &chain{evals: evals} }

func (c *chain) Compile(code string) (peg.ActionFunc, error) {
	errs := make([]error, 0, len(c.evals))

	for _, e := range c.evals {
		fn, err := e.Compile(code)
		if err == nil {
			return fn, nil
		}

		errs = append(errs, err)
	}

	return nil, errors.Join(errs...)
}

func (c *chain) Name() string {
	names := make([]string, len(c.evals))
	for i, e := range c.evals {
		names[i] = NameOf(e)
	}

	return "chain(" + strings.Join(names, ",") + ")"
}
