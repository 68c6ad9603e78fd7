package peg

import "strings"

type sequenceExpr struct {
	elems []Expression
}

// Sequence returns an expression matching each element in order. Its value
// is the list of non-empty element values. When any element fails, the whole
// sequence fails at its starting cursor and drops the captures made so far.
func Sequence(elems ...Expression) Expression {
	return sequenceExpr{elems: elems}
}

func (e sequenceExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	values := make([]any, 0, len(e.elems))
	cur, captured := at, scope

	for _, elem := range e.elems {
		res, next := elem.Match(in, cur, captured)
		if !res.ok {
			return failure(), at
		}

		if !res.empty {
			values = append(values, res.value)
		}

		cur, captured = next, res.scope
	}

	return success(values, captured), cur
}

func (e sequenceExpr) String() string {
	parts := make([]string, len(e.elems))
	for i, elem := range e.elems {
		parts[i] = group(elem, precSequence)
	}

	return strings.Join(parts, " ")
}

func (sequenceExpr) expression() {}

type choiceExpr struct {
	alts []Expression
}

// Choice returns an expression trying each alternative in order from the same
// cursor and scope. The first success is returned unchanged; later
// alternatives are not tried.
func Choice(alts ...Expression) Expression {
	return choiceExpr{alts: alts}
}

func (e choiceExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	for _, alt := range e.alts {
		res, next := alt.Match(in, at, scope)
		if res.ok {
			return res, next
		}
	}

	return failure(), at
}

func (e choiceExpr) String() string {
	parts := make([]string, len(e.alts))
	for i, alt := range e.alts {
		parts[i] = group(alt, precChoice)
	}

	return strings.Join(parts, " / ")
}

func (choiceExpr) expression() {}

type repeatExpr struct {
	elem Expression
	min  int
}

// ZeroOrMore returns an expression matching e as many times as possible. It
// always succeeds; its value is the list of non-empty iteration values.
// Captures of each iteration carry into the next, so a label repeated across
// iterations keeps its last value. Repetition stops after an iteration that
// consumes no input.
func ZeroOrMore(e Expression) Expression {
	return repeatExpr{elem: e}
}

// OneOrMore is ZeroOrMore that fails unless e matches at least once.
func OneOrMore(e Expression) Expression {
	return repeatExpr{elem: e, min: 1}
}

func (e repeatExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	values := []any{}
	cur, captured := at, scope
	count := 0

	for {
		res, next := e.elem.Match(in, cur, captured)
		if !res.ok {
			break
		}

		count++

		if !res.empty {
			values = append(values, res.value)
		}

		captured = res.scope

		if next == cur {
			break
		}

		cur = next
	}

	if count < e.min {
		return failure(), at
	}

	return success(values, captured), cur
}

func (e repeatExpr) String() string {
	if e.min == 0 {
		return group(e.elem, precSuffix) + "*"
	}

	return group(e.elem, precSuffix) + "+"
}

func (repeatExpr) expression() {}

type optionalExpr struct {
	elem Expression
}

// Optional returns an expression trying e once. When e fails it succeeds
// with a nil value without consuming input.
func Optional(e Expression) Expression {
	return optionalExpr{elem: e}
}

func (e optionalExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	res, next := e.elem.Match(in, at, scope)
	if res.ok {
		return res, next
	}

	return success(nil, scope), at
}

func (e optionalExpr) String() string { return group(e.elem, precSuffix) + "?" }
func (optionalExpr) expression()      {}

type lookaheadExpr struct {
	elem   Expression
	negate bool
}

// Lookahead returns an expression that succeeds iff e matches. It consumes
// nothing, keeps no captures and has an empty result.
func Lookahead(e Expression) Expression {
	return lookaheadExpr{elem: e}
}

// Reject returns an expression that succeeds iff e does not match. It
// consumes nothing and has an empty result.
func Reject(e Expression) Expression {
	return lookaheadExpr{elem: e, negate: true}
}

func (e lookaheadExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	in.quiet++
	res, _ := e.elem.Match(in, at, scope)
	in.quiet--

	if res.ok == e.negate {
		return failure(), at
	}

	return emptySuccess(scope), at
}

func (e lookaheadExpr) String() string {
	if e.negate {
		return "!" + group(e.elem, precPrefix)
	}

	return "&" + group(e.elem, precPrefix)
}

func (lookaheadExpr) expression() {}

type labelExpr struct {
	name string
	elem Expression
}

// Label returns an expression that binds the value of e to name in the
// capture scope. The value passes through unchanged.
func Label(name string, e Expression) Expression {
	return labelExpr{name: name, elem: e}
}

func (e labelExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	res, next := e.elem.Match(in, at, scope)
	if !res.ok {
		return failure(), at
	}

	res.scope = res.scope.Bind(e.name, res.value)
	res.name = e.name

	return res, next
}

func (e labelExpr) String() string { return e.name + ":" + group(e.elem, precPrefix) }
func (labelExpr) expression()      {}

type tokenExpr struct {
	elem Expression
}

// Token returns an expression that matches e and discards its value, so the
// match does not show up in aggregated results.
func Token(e Expression) Expression {
	return tokenExpr{elem: e}
}

func (e tokenExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	res, next := e.elem.Match(in, at, scope)
	if !res.ok {
		return failure(), at
	}

	return emptySuccess(res.scope), next
}

func (e tokenExpr) String() string { return e.elem.String() }
func (tokenExpr) expression()      {}

// Binding precedence, loosest first.
const (
	precChoice = iota
	precSequence
	precPrefix
	precSuffix
	precPrimary
)

func precedence(e Expression) int {
	switch x := e.(type) {
	case choiceExpr:
		return precChoice
	case sequenceExpr:
		return precSequence
	case actionExpr:
		return precChoice
	case labelExpr, lookaheadExpr:
		return precPrefix
	case repeatExpr, optionalExpr:
		return precSuffix
	case tokenExpr:
		return precedence(x.elem)
	default:
		return precPrimary
	}
}

// group renders e, parenthesized when it binds looser than min.
func group(e Expression, minPrec int) string {
	if precedence(e) < minPrec {
		return "(" + e.String() + ")"
	}

	return e.String()
}
