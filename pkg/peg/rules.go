package peg

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// DefaultStart is the rule name preferred as the start rule when none is
// given explicitly.
const DefaultStart = "Start"

// rule is a lazily filled definition cell. References hold the cell, so a
// rule may be referenced before it is defined.
type rule struct {
	name string
	expr Expression
}

type refExpr struct {
	rule *rule
}

func (e refExpr) Match(in *Input, at Cursor, scope Scope) (Result, Cursor) {
	body := e.rule.expr
	if body == nil {
		panic(abort{err: fmt.Errorf("%w: %s", ErrUndefinedRule, e.rule.name)})
	}

	in.enter(e.rule.name, at)
	res, next := body.Match(in, at, EmptyScope())
	in.exit(e.rule.name, next, res.ok)

	if !res.ok {
		return failure(), at
	}

	// A rule is a capture boundary: the caller keeps its own scope.
	res.scope = scope
	res.name = ""

	return res, next
}

func (e refExpr) String() string { return e.rule.name }
func (refExpr) expression()      {}

// Builder collects rule definitions for a RuleTable.
type Builder struct {
	rules  map[string]*rule
	order  []string
	sealed bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{rules: make(map[string]*rule)}
}

func (b *Builder) cell(name string) *rule {
	r, ok := b.rules[name]
	if !ok {
		r = &rule{name: name}
		b.rules[name] = r
	}

	return r
}

// Ref returns an expression invoking the rule called name. The rule need not
// be defined yet, but must be defined before Build. A Ref made after Build
// never changes the built table.
func (b *Builder) Ref(name string) Expression {
	return refExpr{rule: b.cell(name)}
}

// Define registers expr as the body of the rule called name.
func (b *Builder) Define(name string, expr Expression) error {
	if b.sealed {
		return ErrBuilderSealed
	}

	if name == "" {
		return ErrEmptyRuleName
	}

	r := b.cell(name)
	if r.expr != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, name)
	}

	r.expr = expr
	b.order = append(b.order, name)

	return nil
}

// MustDefine is Define that panics on error. It suits grammars built in code.
func (b *Builder) MustDefine(name string, expr Expression) {
	err := b.Define(name, expr)
	if err != nil {
		panic(err)
	}
}

// Undefined returns the sorted names referenced but never defined.
func (b *Builder) Undefined() []string {
	var names []string

	for name, r := range b.rules {
		if r.expr == nil {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// Build validates the definitions and returns the rule table. An empty start
// selects the rule named DefaultStart, or else the first rule defined. After
// Build the builder accepts no more definitions.
func (b *Builder) Build(start string) (*RuleTable, error) {
	var errs []error

	for _, name := range b.Undefined() {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUndefinedRule, name))
	}

	start, err := b.resolveStart(start)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	b.sealed = true

	return &RuleTable{
		rules: maps.Clone(b.rules),
		order: slices.Clone(b.order),
		start: start,
	}, nil
}

func (b *Builder) resolveStart(start string) (string, error) {
	if start == "" {
		if r, ok := b.rules[DefaultStart]; ok && r.expr != nil {
			return DefaultStart, nil
		}

		if len(b.order) == 0 {
			return "", fmt.Errorf("%w: no rules defined", ErrUndefinedStart)
		}

		return b.order[0], nil
	}

	if r, ok := b.rules[start]; !ok || r.expr == nil {
		return "", fmt.Errorf("%w: %s", ErrUndefinedStart, start)
	}

	return start, nil
}

// RuleTable is an immutable set of named rules with a designated start rule.
// It is safe for concurrent use.
type RuleTable struct {
	rules map[string]*rule
	order []string
	start string
}

// Start returns the name of the start rule.
func (t *RuleTable) Start() string {
	return t.start
}

// Names returns the rule names in definition order.
func (t *RuleTable) Names() []string {
	return slices.Clone(t.order)
}

// Body returns the expression defining the rule called name.
func (t *RuleTable) Body(name string) (Expression, bool) {
	r, ok := t.rules[name]
	if !ok || r.expr == nil {
		return nil, false
	}

	return r.expr, true
}

// Rule returns an expression invoking the rule called name. It can be used
// in another Builder to embed this grammar in a larger one.
func (t *RuleTable) Rule(name string) (Expression, bool) {
	r, ok := t.rules[name]
	if !ok || r.expr == nil {
		return nil, false
	}

	return refExpr{rule: r}, true
}

// Parse matches the start rule against the whole of text and returns its
// value. A match that stops short of the end of text is a failure. Failures
// are reported as *ParseError wrapping ErrNoMatch; a failing action is
// reported as *ActionError.
func (t *RuleTable) Parse(text string, opts ...ParseOption) (any, error) {
	return t.ParseRule(t.start, text, opts...)
}

// ParseRule is Parse starting from the rule called name.
func (t *RuleTable) ParseRule(name, text string, opts ...ParseOption) (any, error) {
	ref, ok := t.Rule(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedRule, name)
	}

	in := NewInput(text, opts...)

	res, end, err := in.run(ref)
	if err != nil {
		return nil, err
	}

	if res.ok && end.offset == len(text) {
		return res.value, nil
	}

	return nil, in.parseError(res.ok, end)
}
