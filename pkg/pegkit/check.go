package pegkit

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/pegkit/pkg/analysis"
	"github.com/Sumatoshi-tech/pegkit/pkg/binder"
	"github.com/Sumatoshi-tech/pegkit/pkg/compiler"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// Diagnostic kinds besides the analysis.Kind* values.
const (
	KindSyntax = "syntax"
	KindBind   = "bind"
)

// Diagnostic is one problem found in a grammar.
type Diagnostic struct {
	Severity analysis.Severity `json:"severity"       yaml:"severity"`
	Kind     string            `json:"kind"           yaml:"kind"`
	Rule     string            `json:"rule,omitempty" yaml:"rule,omitempty"`
	Message  string            `json:"message"        yaml:"message"`
	Span     grammar.Span      `json:"span"           yaml:"span"`
	Line     int               `json:"line"           yaml:"line"`
	Column   int               `json:"column"         yaml:"column"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
}

// RuleInfo summarizes one rule definition.
type RuleInfo struct {
	Name         string   `json:"name"                    yaml:"name"`
	Alternatives int      `json:"alternatives"            yaml:"alternatives"`
	References   []string `json:"references,omitempty"    yaml:"references,omitempty"`
	ReferencedBy []string `json:"referenced_by,omitempty" yaml:"referenced_by,omitempty"`
	Nullable     bool     `json:"nullable"                yaml:"nullable"`
	Comment      string   `json:"comment,omitempty"       yaml:"comment,omitempty"`
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	// Grammar is nil when the text does not compile.
	Grammar *grammar.Grammar `json:"-" yaml:"-"`
	// Report is nil when the text does not compile.
	Report      *analysis.Report `json:"-"     yaml:"-"`
	Start       string           `json:"start" yaml:"start"`
	Rules       []RuleInfo       `json:"rules" yaml:"rules"`
	Diagnostics []Diagnostic     `json:"diagnostics" yaml:"diagnostics"`
}

// HasErrors reports whether any diagnostic is an error.
func (r *CheckResult) HasErrors() bool {
	return slices.ContainsFunc(r.Diagnostics, func(d Diagnostic) bool {
		return d.Severity == analysis.SeverityError
	})
}

// Check compiles, binds and analyzes text and collects every problem found,
// ordered by position. Unlike Compile it does not stop at the first failing
// stage when a later one can still report.
func Check(text string, opts ...Option) *CheckResult {
	o := newOptions(opts)
	res := &CheckResult{Rules: []RuleInfo{}, Diagnostics: []Diagnostic{}}

	g, err := compiler.Compile(text, compiler.WithLogger(o.logger), compiler.WithExcerptWidth(o.excerptWidth))
	if err != nil {
		offset := 0

		var perr *peg.ParseError
		if errors.As(err, &perr) {
			offset = perr.Offset
		}

		res.add(text, Diagnostic{
			Severity: analysis.SeverityError,
			Kind:     KindSyntax,
			Message:  err.Error(),
			Span:     grammar.Span{Start: offset, End: min(offset+1, len(text))},
		})

		return res
	}

	res.Grammar = g

	_, err = binder.Bind(g, binder.WithEvaluator(o.eval), binder.WithStart(o.start), binder.WithLogger(o.logger))
	for _, e := range flatten(err) {
		res.add(text, bindDiagnostic(e))
	}

	if len(g.Definitions) == 0 {
		return res
	}

	report := analysis.Analyze(g, o.start)
	res.Report = report
	res.Start = report.Start

	for _, f := range report.Findings {
		// The binder reports undefined references with a suggestion.
		if f.Kind == analysis.KindUndefined {
			continue
		}

		res.add(text, Diagnostic{
			Severity: f.Severity,
			Kind:     f.Kind,
			Rule:     f.Rule,
			Message:  f.Message,
			Span:     f.Pos,
		})
	}

	slices.SortStableFunc(res.Diagnostics, func(a, b Diagnostic) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})

	res.Rules = ruleInfos(g, report)

	return res
}

func bindDiagnostic(err error) Diagnostic {
	d := Diagnostic{Severity: analysis.SeverityError, Kind: KindBind, Message: err.Error()}

	var (
		undef *binder.UndefinedRuleError
		rerr  *binder.RuleError
	)

	switch {
	case errors.As(err, &undef):
		d.Kind, d.Rule, d.Span = analysis.KindUndefined, undef.Rule, undef.Pos
	case errors.As(err, &rerr):
		d.Rule, d.Span = rerr.Rule, rerr.Pos
	}

	return d
}

func (r *CheckResult) add(text string, d Diagnostic) {
	d.Line, d.Column = peg.Position(text, d.Span.Start)
	r.Diagnostics = append(r.Diagnostics, d)
}

func ruleInfos(g *grammar.Grammar, report *analysis.Report) []RuleInfo {
	infos := make([]RuleInfo, 0, len(g.Definitions))

	for _, def := range g.Definitions {
		info := RuleInfo{
			Name:         def.Name,
			Alternatives: len(grammar.Alternatives(def.Expr)),
			Nullable:     report.Nullable[def.Name],
		}

		for _, ref := range grammar.References(def.Expr) {
			if !slices.Contains(info.References, ref.Name) {
				info.References = append(info.References, ref.Name)
			}
		}

		if parents := report.Graph.FindParents(def.Name); len(parents) > 0 {
			info.ReferencedBy = parents
		}

		if len(def.Comments) > 0 {
			info.Comment = def.Comments[0]
		}

		infos = append(infos, info)
	}

	return infos
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}

		return out
	}

	return []error{err}
}
