package config

import (
	"fmt"
	"sync"

	"github.com/Sumatoshi-tech/pegkit/pkg/action"
)

// evaluators holds one evaluator per mode. They are shared so that a Loader
// keyed by evaluator identity reuses parsers across callers.
var evaluators = sync.OnceValue(func() map[string]action.Evaluator {
	builtins := action.Builtins()
	expr := action.NewExpr()

	return map[string]action.Evaluator{
		ActionsRegistry: builtins,
		ActionsExpr:     expr,
		ActionsChain:    action.Chain(builtins, expr),
		ActionsNone:     action.Passthrough(),
	}
})

// Evaluator returns the shared action evaluator for mode. An empty mode
// selects DefaultActionsMode. Callers must not register into the returned
// evaluator.
func Evaluator(mode string) (action.Evaluator, error) {
	if mode == "" {
		mode = DefaultActionsMode
	}

	eval, ok := evaluators()[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidActionsMode, mode)
	}

	return eval, nil
}

// Evaluator returns the evaluator selected by Mode.
func (c ActionsConfig) Evaluator() (action.Evaluator, error) {
	return Evaluator(c.Mode)
}
