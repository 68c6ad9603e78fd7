// Package pegkit compiles PEG grammar text into ready-to-use parsers.
//
// Compile runs the grammar through the compiler, the binder and the static
// analysis, and wraps the resulting rule table with tracing, metrics and an
// input size limit:
//
//	p, err := pegkit.Compile(src, pegkit.WithEvaluator(action.NewExpr()))
//	if err != nil {
//		return err
//	}
//
//	value, err := p.Parse(ctx, input)
package pegkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/analysis"
	"github.com/Sumatoshi-tech/pegkit/pkg/binder"
	"github.com/Sumatoshi-tech/pegkit/pkg/compiler"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

var (
	// ErrInputTooLarge is returned when parse input exceeds WithMaxInputSize.
	ErrInputTooLarge = errors.New("input too large")
	// ErrLeftRecursion is returned by Compile for a left-recursive grammar.
	ErrLeftRecursion = errors.New("left-recursive grammar")
)

const (
	spanCompile = "pegkit.compile"
	spanParse   = "pegkit.parse"

	attrRules     = "peg.rules"
	attrStart     = "peg.start"
	attrRule      = "peg.rule"
	attrEvaluator = "peg.evaluator"
	attrInputSize = "peg.input.bytes"
	attrRuleCalls = "peg.rule_calls"
	attrMaxDepth  = "peg.max_depth"
	attrOffset    = "peg.error.offset"
)

// Parser is a compiled grammar. It is safe for concurrent use.
type Parser struct {
	grammar *grammar.Grammar
	rules   *peg.RuleTable
	report  *analysis.Report
	opts    options
	size    int64
}

// Compile builds a Parser from grammar text. Grammar syntax errors wrap
// compiler.ErrInvalidGrammar; binding faults wrap peg.ErrUndefinedRule,
// peg.ErrUndefinedStart or peg.ErrDuplicateRule. A grammar with left
// recursion is rejected with ErrLeftRecursion; other analysis findings are
// available from Report.
func Compile(text string, opts ...Option) (*Parser, error) {
	return compile(context.Background(), text, newOptions(opts))
}

func compile(ctx context.Context, text string, o options) (*Parser, error) {
	ctx, span := o.tracer.Start(ctx, spanCompile,
		trace.WithAttributes(attribute.String(attrEvaluator, action.NameOf(o.eval))))
	defer span.End()

	started := time.Now()

	p, err := build(text, o)

	outcome := observability.OutcomeOK
	if err != nil {
		outcome = observability.OutcomeInvalid

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int(attrRules, len(p.grammar.Definitions)),
			attribute.String(attrStart, p.rules.Start()),
		)
	}

	if o.metrics != nil {
		o.metrics.RecordCompile(ctx, outcome, time.Since(started))
	}

	o.logger.DebugContext(ctx, "grammar compiled", "outcome", outcome, "duration", time.Since(started))

	return p, err
}

func build(text string, o options) (*Parser, error) {
	g, err := compiler.Compile(text, compiler.WithLogger(o.logger), compiler.WithExcerptWidth(o.excerptWidth))
	if err != nil {
		return nil, err
	}

	rules, err := binder.Bind(g,
		binder.WithEvaluator(o.eval),
		binder.WithStart(o.start),
		binder.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	report := analysis.Analyze(g, rules.Start())

	var errs []error

	for _, f := range report.Findings {
		if f.Kind == analysis.KindLeftRecursion {
			errs = append(errs, fmt.Errorf("%w: %s", ErrLeftRecursion, f.Message))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Parser{
		grammar: g,
		rules:   rules,
		report:  report,
		opts:    o,
		size:    int64(len(text)),
	}, nil
}

// Grammar returns the grammar AST.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Rules returns the bound rule table.
func (p *Parser) Rules() *peg.RuleTable {
	return p.rules
}

// with returns a Parser sharing p's compiled grammar under the options o.
func (p *Parser) with(o options) *Parser {
	c := *p
	c.opts = o

	return &c
}

// Report returns the analysis report of the grammar.
func (p *Parser) Report() *analysis.Report {
	return p.report
}

// Start returns the name of the start rule.
func (p *Parser) Start() string {
	return p.rules.Start()
}

// Parse matches the start rule against the whole of input.
func (p *Parser) Parse(ctx context.Context, input string) (any, error) {
	return p.ParseRule(ctx, p.rules.Start(), input)
}

// ParseRule matches the rule called rule against the whole of input.
func (p *Parser) ParseRule(ctx context.Context, rule, input string) (any, error) {
	ctx, span := p.opts.tracer.Start(ctx, spanParse, trace.WithAttributes(
		attribute.String(attrRule, rule),
		attribute.Int(attrInputSize, len(input)),
	))
	defer span.End()

	started := time.Now()

	if p.opts.maxInput > 0 && int64(len(input)) > p.opts.maxInput {
		err := fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(input), p.opts.maxInput)
		p.finish(ctx, span, observability.OutcomeTooLarge, len(input), started, err)

		return nil, err
	}

	var stats peg.Stats

	value, err := p.rules.ParseRule(rule, input,
		peg.WithLogger(p.opts.logger),
		peg.WithExcerptWidth(p.opts.excerptWidth),
		peg.WithStats(&stats))

	span.SetAttributes(
		attribute.Int(attrRuleCalls, stats.RuleCalls),
		attribute.Int(attrMaxDepth, stats.MaxDepth),
	)

	p.finish(ctx, span, outcomeOf(err), len(input), started, err)

	if err != nil {
		return nil, err
	}

	return value, nil
}

func (p *Parser) finish(ctx context.Context, span trace.Span, outcome string, size int, started time.Time, err error) {
	if err != nil {
		var perr *peg.ParseError
		if errors.As(err, &perr) {
			span.SetAttributes(attribute.Int(attrOffset, perr.Offset))
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	if p.opts.metrics != nil {
		p.opts.metrics.RecordParse(ctx, outcome, size, time.Since(started))
	}

	p.opts.logger.DebugContext(ctx, "input parsed", "outcome", outcome, "bytes", size)
}

func outcomeOf(err error) string {
	var aerr *peg.ActionError

	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.As(err, &aerr):
		return observability.OutcomeActionFail
	case errors.Is(err, peg.ErrNoMatch):
		return observability.OutcomeNoMatch
	default:
		return observability.OutcomeInvalid
	}
}
