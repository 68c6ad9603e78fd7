package peg

// Result is the outcome of matching an expression: a success carrying a
// value and the resulting capture scope, or a failure.
//
// A success may be empty, meaning it carries no value at all. Empty results
// are dropped when sequences and repetitions aggregate their children. An
// empty result differs from a success whose value is nil.
type Result struct {
	ok    bool
	empty bool
	value any
	name  string
	scope Scope
}

func success(value any, scope Scope) Result {
	return Result{ok: true, value: value, scope: scope}
}

func emptySuccess(scope Scope) Result {
	return Result{ok: true, empty: true, scope: scope}
}

func failure() Result {
	return Result{}
}

// OK reports whether the match succeeded.
func (r Result) OK() bool { return r.ok }

// Empty reports whether the result is a success that carries no value.
func (r Result) Empty() bool { return r.ok && r.empty }

// Value returns the matched value. It is nil for failures and empty results.
func (r Result) Value() any { return r.value }

// Name returns the label the value was bound to, if any.
func (r Result) Name() string { return r.name }

// Captures returns the capture scope after the match.
func (r Result) Captures() Scope { return r.scope }
