// Package binder translates a grammar syntax tree into an executable
// peg.RuleTable.
package binder

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// maxSuggestDistance is the edit distance below which an undefined rule gets
// a did-you-mean hint.
const maxSuggestDistance = 3

var (
	// ErrInvalidClass reports a character class that cannot be parsed.
	ErrInvalidClass = errors.New("invalid character class")
	// ErrEmptyGrammar reports a grammar with no definitions.
	ErrEmptyGrammar = errors.New("empty grammar")
)

// UndefinedRuleError reports a reference to a rule the grammar never defines.
type UndefinedRuleError struct {
	// Name is the referenced rule.
	Name string
	// Rule is the definition holding the reference.
	Rule string
	// Pos is the span of the reference in the grammar text.
	Pos grammar.Span
	// Suggestion is the closest defined rule name, if any is close.
	Suggestion string
}

func (e *UndefinedRuleError) Error() string {
	msg := fmt.Sprintf("rule %s: undefined rule %s", e.Rule, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Suggestion)
	}

	return msg
}

func (e *UndefinedRuleError) Unwrap() error {
	return peg.ErrUndefinedRule
}

// RuleError is a fault in the definition of Rule. Pos is the span of the
// offending action, or of the whole definition.
type RuleError struct {
	Rule string
	Pos  grammar.Span
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// Option configures Bind.
type Option func(*options)

type options struct {
	eval   action.Evaluator
	start  string
	logger *slog.Logger
}

// WithEvaluator sets the evaluator for action code. The default is
// action.Builtins.
func WithEvaluator(e action.Evaluator) Option {
	return func(o *options) {
		o.eval = e
	}
}

// WithStart selects the start rule.
func WithStart(name string) Option {
	return func(o *options) {
		o.start = name
	}
}

// WithLogger sets the logger for bind diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type binder struct {
	builder *peg.Builder
	eval    action.Evaluator
	def     *grammar.Definition
	errs    []error
}

// Bind builds the rule table of g. Every fault found is reported, joined into
// one error.
func Bind(g *grammar.Grammar, opts ...Option) (*peg.RuleTable, error) {
	o := options{eval: action.Builtins()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	if g == nil || len(g.Definitions) == 0 {
		return nil, ErrEmptyGrammar
	}

	b := &binder{builder: peg.NewBuilder(), eval: o.eval}
	defined := g.Names()

	for _, def := range g.Definitions {
		b.def = def

		for _, ref := range grammar.References(def.Expr) {
			if !slices.Contains(defined, ref.Name) {
				b.errs = append(b.errs, &UndefinedRuleError{
					Name:       ref.Name,
					Rule:       def.Name,
					Pos:        ref.Pos,
					Suggestion: suggest(ref.Name, defined),
				})
			}
		}

		expr := b.bind(def.Expr)

		err := b.builder.Define(def.Name, expr)
		if err != nil {
			b.fault(def.Pos, err)
		}
	}

	if len(b.errs) > 0 {
		if o.start != "" && !slices.Contains(defined, o.start) {
			b.errs = append(b.errs, fmt.Errorf("%w: %s", peg.ErrUndefinedStart, o.start))
		}

		return nil, errors.Join(b.errs...)
	}

	table, err := b.builder.Build(o.start)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("grammar bound",
		"rules", len(g.Definitions),
		"start", table.Start(),
		"evaluator", action.NameOf(o.eval))

	return table, nil
}

func (b *binder) bind(n grammar.Node) peg.Expression {
	switch x := n.(type) {
	case *grammar.Literal:
		return peg.Literal(x.Text)
	case *grammar.CharClass:
		set, err := peg.ParseCharSet(x.Chars)
		if err != nil {
			b.fault(b.def.Pos, fmt.Errorf("%w: [%s]: %w", ErrInvalidClass, x.Chars, err))

			return peg.Pass()
		}

		return peg.Class(set)
	case *grammar.Wildcard:
		return peg.Advance()
	case *grammar.Epsilon:
		return peg.Pass()
	case *grammar.RuleRef:
		return b.builder.Ref(x.Name)
	case *grammar.Choice:
		return peg.Choice(b.bindAll(x.Alternatives)...)
	case *grammar.Sequence:
		return peg.Sequence(b.bindAll(x.Elements)...)
	case *grammar.Labeled:
		return peg.Label(x.Name, b.bind(x.Expr))
	case *grammar.Prefixed:
		if x.Op == grammar.NegativeLookahead {
			return peg.Reject(b.bind(x.Expr))
		}

		return peg.Lookahead(b.bind(x.Expr))
	case *grammar.Suffixed:
		elem := b.bind(x.Expr)

		switch x.Op {
		case grammar.ZeroOrMore:
			return peg.ZeroOrMore(elem)
		case grammar.OneOrMore:
			return peg.OneOrMore(elem)
		default:
			return peg.Optional(elem)
		}
	case *grammar.Group:
		return b.bind(x.Expr)
	case *grammar.Action:
		elem := b.bind(x.Expr)

		fn, err := b.eval.Compile(x.Code)
		if err != nil {
			b.fault(x.Pos, err)

			return elem
		}

		return peg.NamedAction(x.Code, elem, fn)
	default:
		b.fault(b.def.Pos, fmt.Errorf("unsupported node %T", n))

		return peg.Pass()
	}
}

func (b *binder) fault(pos grammar.Span, err error) {
	b.errs = append(b.errs, &RuleError{Rule: b.def.Name, Pos: pos, Err: err})
}

func (b *binder) bindAll(nodes []grammar.Node) []peg.Expression {
	out := make([]peg.Expression, len(nodes))
	for i, n := range nodes {
		out[i] = b.bind(n)
	}

	return out
}

// suggest returns the candidate closest to name, or "" when none is close.
func suggest(name string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance

	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(name, c)
		if dist < bestDist || (dist == bestDist && best != "" && c < best) {
			best, bestDist = c, dist
		}
	}

	return best
}
