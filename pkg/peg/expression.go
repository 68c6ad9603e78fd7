package peg

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expression is a parsing expression.
//
// Match tries the expression at cursor at with the capture scope of the
// caller. On success it returns the result, whose Captures hold the updated
// scope, and the cursor after the match. On failure it returns the cursor it
// was given. The set of implementations is closed; build expressions with the
// constructors in this package.
type Expression interface {
	Match(in *Input, at Cursor, scope Scope) (Result, Cursor)
	String() string

	expression()
}

type passExpr struct{}

// Pass returns an expression that always succeeds with an empty result and
// consumes nothing.
func Pass() Expression { return passExpr{} }

func (passExpr) Match(_ *Input, at Cursor, scope Scope) (Result, Cursor) {
	return emptySuccess(scope), at
}

func (passExpr) String() string { return "~" }
func (passExpr) expression()    {}

type advanceExpr struct{}

// Advance returns an expression that consumes any single rune. Its value is
// the rune as a string. It fails only at end of input.
func Advance() Expression { return advanceExpr{} }

func (advanceExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	if at.offset >= len(in.text) {
		in.fail(at.offset, "any character")

		return failure(), at
	}

	_, size := utf8.DecodeRuneInString(in.text[at.offset:])

	return success(in.text[at.offset:at.offset+size], scope), at.Advance(size)
}

func (advanceExpr) String() string { return "." }
func (advanceExpr) expression()    {}

type literalExpr struct {
	text string
}

// Literal returns an expression matching exactly s. Its value is s.
func Literal(s string) Expression { return literalExpr{text: s} }

func (e literalExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	if !strings.HasPrefix(in.text[at.offset:], e.text) {
		in.fail(at.offset, e.String())

		return failure(), at
	}

	return success(e.text, scope), at.Advance(len(e.text))
}

func (e literalExpr) String() string { return strconv.Quote(e.text) }
func (literalExpr) expression()      {}

type classExpr struct {
	set CharSet
}

// Class returns an expression matching one rune contained in set. Its value
// is the rune as a string.
func Class(set CharSet) Expression { return classExpr{set: set} }

func (e classExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	return matchRune(in, at, scope, e.set.Contains, e.set.String())
}

func (e classExpr) String() string { return e.set.String() }
func (classExpr) expression()      {}

type predicateExpr struct {
	desc string
	fn   func(rune) bool
}

// Predicate returns an expression matching one rune for which fn reports
// true. desc names the expected input in diagnostics.
func Predicate(desc string, fn func(rune) bool) Expression {
	return predicateExpr{desc: desc, fn: fn}
}

func (e predicateExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	return matchRune(in, at, scope, e.fn, e.desc)
}

func (e predicateExpr) String() string { return e.desc }
func (predicateExpr) expression()      {}

func matchRune(in *Input, at Cursor, scope Scope, accept func(rune) bool, want string) (Result, Cursor) {
	if at.offset >= len(in.text) {
		in.fail(at.offset, want)

		return failure(), at
	}

	r, size := utf8.DecodeRuneInString(in.text[at.offset:])
	if !accept(r) {
		in.fail(at.offset, want)

		return failure(), at
	}

	return success(in.text[at.offset:at.offset+size], scope), at.Advance(size)
}

type patternExpr struct {
	source string
	re     *regexp.Regexp
}

// Pattern returns an expression matching re anchored at the cursor. Its
// value is the matched text, which may be empty.
func Pattern(re *regexp.Regexp) Expression {
	return patternExpr{
		source: re.String(),
		re:     regexp.MustCompile(`^(?:` + re.String() + `)`),
	}
}

// MustPattern compiles expr and returns Pattern for it. It panics if expr is
// not a valid regular expression.
func MustPattern(expr string) Expression {
	return Pattern(regexp.MustCompile(expr))
}

func (e patternExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	loc := e.re.FindStringIndex(in.text[at.offset:])
	if loc == nil {
		in.fail(at.offset, e.String())

		return failure(), at
	}

	return success(in.text[at.offset:at.offset+loc[1]], scope), at.Advance(loc[1])
}

func (e patternExpr) String() string { return "/" + e.source + "/" }
func (patternExpr) expression()      {}
