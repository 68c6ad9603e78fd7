package peg

import "maps"

// WholeMatch is the reserved binding name for the value of the expression an
// action governs.
const WholeMatch = "$$"

// Span is a half-open byte range of the input.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Bindings is what an action sees when it runs: the captures made while its
// expression matched, plus the whole matched value.
type Bindings struct {
	// Captures maps label names to captured values.
	Captures map[string]any
	// Match is the value of the governed expression. It is nil when the
	// expression produced an empty result.
	Match any
	// Span is the input range the governed expression consumed.
	Span Span
	// Text is the input text the governed expression consumed.
	Text string
}

// Get returns the capture bound to name. WholeMatch returns Match.
func (b Bindings) Get(name string) (any, bool) {
	if name == WholeMatch {
		return b.Match, true
	}

	v, ok := b.Captures[name]

	return v, ok
}

// Map returns the captures together with the WholeMatch binding.
func (b Bindings) Map() map[string]any {
	out := make(map[string]any, len(b.Captures)+1)
	maps.Copy(out, b.Captures)

	out[WholeMatch] = b.Match

	return out
}

// ActionFunc computes the semantic value of a successful match. A non-nil
// error aborts the parse with an *ActionError.
type ActionFunc func(b Bindings) (any, error)

type actionExpr struct {
	name string
	elem Expression
	fn   ActionFunc
}

// Action returns an expression that runs fn after e matches and uses its
// return value as the result. e is matched in a fresh scope; its captures are
// passed to fn and then merged into the enclosing scope.
func Action(e Expression, fn ActionFunc) Expression {
	return actionExpr{elem: e, fn: fn}
}

// NamedAction is Action with a name used in diagnostics and String.
func NamedAction(name string, e Expression, fn ActionFunc) Expression {
	return actionExpr{name: name, elem: e, fn: fn}
}

func (e actionExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	res, next := e.elem.Match(in, at, EmptyScope())
	if !res.ok {
		return failure(), at
	}

	value, err := e.fn(Bindings{
		Captures: res.scope.Map(),
		Match:    res.value,
		Span:     Span{Start: at.offset, End: next.offset},
		Text:     in.text[at.offset:next.offset],
	})
	if err != nil {
		panic(abort{err: &ActionError{Action: e.name, Offset: at.offset, Err: err}})
	}

	return success(value, scope.Merge(res.scope)), next
}

func (e actionExpr) String() string {
	name := e.name
	if name == "" {
		name = "action"
	}

	return group(e.elem, precSequence) + " -> " + name
}

func (actionExpr) expression() {}
