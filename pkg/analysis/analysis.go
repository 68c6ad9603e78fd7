// Package analysis inspects a grammar for rules that are unreachable,
// left-recursive or otherwise unable to work as written.
package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
	"github.com/Sumatoshi-tech/pegkit/pkg/toposort"
)

// Severity ranks a finding.
type Severity string

// Severities.
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding kinds.
const (
	KindUnreachable        = "unreachable"
	KindLeftRecursion      = "left-recursion"
	KindNullableRepetition = "nullable-repetition"
	KindUndefined          = "undefined"
)

// Finding is one problem found in a grammar.
type Finding struct {
	Kind     string       `json:"kind"     yaml:"kind"`
	Severity Severity     `json:"severity" yaml:"severity"`
	Rule     string       `json:"rule"     yaml:"rule"`
	Message  string       `json:"message"  yaml:"message"`
	Pos      grammar.Span `json:"pos"      yaml:"pos"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Rule, f.Message)
}

// Report is the outcome of Analyze.
type Report struct {
	// Start is the start rule the analysis used.
	Start string `json:"start" yaml:"start"`
	// Findings are ordered by rule position, then kind.
	Findings []Finding `json:"findings" yaml:"findings"`
	// Order lists the defined rules so that a rule follows the rules it
	// references; rules of a cycle are adjacent.
	Order []string `json:"order" yaml:"order"`
	// Nullable holds the rules that can succeed without consuming input.
	Nullable map[string]bool `json:"nullable" yaml:"nullable"`
	// Graph is the rule dependency graph.
	Graph *toposort.Graph `json:"-" yaml:"-"`
}

// HasErrors reports whether any finding is an error.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Findings, func(f Finding) bool { return f.Severity == SeverityError })
}

// Filter returns the findings of severity s.
func (r *Report) Filter(s Severity) []Finding {
	var out []Finding

	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}

	return out
}

type analyzer struct {
	g        *grammar.Grammar
	defs     map[string]*grammar.Definition
	nullable map[string]bool
	report   *Report
}

// Analyze checks g. An empty start selects the rule named peg.DefaultStart,
// or else the first definition.
func Analyze(g *grammar.Grammar, start string) *Report {
	a := &analyzer{
		g:        g,
		defs:     make(map[string]*grammar.Definition),
		nullable: make(map[string]bool),
		report:   &Report{Graph: toposort.NewGraph()},
	}

	for _, def := range g.Definitions {
		if _, dup := a.defs[def.Name]; !dup {
			a.defs[def.Name] = def
			a.report.Graph.AddNode(def.Name)
		}
	}

	a.report.Start = a.resolveStart(start)
	a.computeNullable()
	a.checkReferences()
	a.checkReachable()
	a.checkLeftRecursion()
	a.checkRepetitions()

	for _, name := range a.report.Graph.DependencyOrder() {
		if _, ok := a.defs[name]; ok {
			a.report.Order = append(a.report.Order, name)
		}
	}

	a.report.Nullable = a.nullable

	slices.SortStableFunc(a.report.Findings, func(x, y Finding) int {
		if x.Pos.Start != y.Pos.Start {
			return x.Pos.Start - y.Pos.Start
		}

		return strings.Compare(x.Kind, y.Kind)
	})

	return a.report
}

func (a *analyzer) resolveStart(start string) string {
	if start != "" {
		return start
	}

	if _, ok := a.defs[peg.DefaultStart]; ok {
		return peg.DefaultStart
	}

	if len(a.g.Definitions) > 0 {
		return a.g.Definitions[0].Name
	}

	return ""
}

func (a *analyzer) add(f Finding) {
	a.report.Findings = append(a.report.Findings, f)
}

// computeNullable iterates to a fixpoint.
func (a *analyzer) computeNullable() {
	for changed := true; changed; {
		changed = false

		for name, def := range a.defs {
			if !a.nullable[name] && a.isNullable(def.Expr) {
				a.nullable[name] = true
				changed = true
			}
		}
	}
}

// isNullable reports whether n can succeed without consuming input, given the
// rule nullability known so far.
func (a *analyzer) isNullable(n grammar.Node) bool {
	switch x := n.(type) {
	case *grammar.Literal:
		return x.Text == ""
	case *grammar.CharClass, *grammar.Wildcard:
		return false
	case *grammar.Epsilon, *grammar.Prefixed:
		return true
	case *grammar.RuleRef:
		return a.nullable[x.Name]
	case *grammar.Choice:
		return slices.ContainsFunc(x.Alternatives, a.isNullable)
	case *grammar.Sequence:
		for _, elem := range x.Elements {
			if !a.isNullable(elem) {
				return false
			}
		}

		return true
	case *grammar.Suffixed:
		return x.Op != grammar.OneOrMore || a.isNullable(x.Expr)
	case *grammar.Labeled:
		return a.isNullable(x.Expr)
	case *grammar.Group:
		return a.isNullable(x.Expr)
	case *grammar.Action:
		return a.isNullable(x.Expr)
	default:
		return false
	}
}

func (a *analyzer) checkReferences() {
	if _, ok := a.defs[a.report.Start]; !ok && a.report.Start != "" {
		a.add(Finding{
			Kind:     KindUndefined,
			Severity: SeverityError,
			Rule:     a.report.Start,
			Message:  fmt.Sprintf("start rule %s is not defined", a.report.Start),
		})
	}

	for _, def := range a.g.Definitions {
		for _, ref := range grammar.References(def.Expr) {
			if _, ok := a.defs[ref.Name]; ok {
				a.report.Graph.AddEdge(def.Name, ref.Name)

				continue
			}

			a.add(Finding{
				Kind:     KindUndefined,
				Severity: SeverityError,
				Rule:     def.Name,
				Message:  fmt.Sprintf("reference to undefined rule %s", ref.Name),
				Pos:      ref.Pos,
			})
		}
	}
}

func (a *analyzer) checkReachable() {
	if _, ok := a.defs[a.report.Start]; !ok {
		return
	}

	reachable := a.report.Graph.Reachable(a.report.Start)

	for _, def := range a.g.Definitions {
		if a.defs[def.Name] == def && !slices.Contains(reachable, def.Name) {
			a.add(Finding{
				Kind:     KindUnreachable,
				Severity: SeverityWarning,
				Rule:     def.Name,
				Message:  fmt.Sprintf("rule %s is not reachable from %s", def.Name, a.report.Start),
				Pos:      def.Pos,
			})
		}
	}
}

// checkLeftRecursion looks for cycles among rules invoked at the offset where
// their caller started.
func (a *analyzer) checkLeftRecursion() {
	left := toposort.NewGraph()

	for _, def := range a.g.Definitions {
		if a.defs[def.Name] != def {
			continue
		}

		for _, callee := range a.leftCalls(def.Expr) {
			if _, ok := a.defs[callee]; ok {
				left.AddEdge(def.Name, callee)
			}
		}
	}

	for _, cycle := range left.Cycles() {
		// Report at the first member in definition order.
		first := a.firstDefined(cycle)
		path := append(left.FindCycle(first), first)

		a.add(Finding{
			Kind:     KindLeftRecursion,
			Severity: SeverityError,
			Rule:     first,
			Message:  "left recursion: " + strings.Join(path, " -> "),
			Pos:      a.defs[first].Pos,
		})
	}
}

func (a *analyzer) firstDefined(names []string) string {
	for _, def := range a.g.Definitions {
		if slices.Contains(names, def.Name) {
			return def.Name
		}
	}

	return names[0]
}

// leftCalls returns the rules n may invoke before consuming input.
func (a *analyzer) leftCalls(n grammar.Node) []string {
	switch x := n.(type) {
	case *grammar.RuleRef:
		return []string{x.Name}
	case *grammar.Choice:
		var out []string
		for _, alt := range x.Alternatives {
			out = append(out, a.leftCalls(alt)...)
		}

		return out
	case *grammar.Sequence:
		var out []string

		for _, elem := range x.Elements {
			out = append(out, a.leftCalls(elem)...)
			if !a.isNullable(elem) {
				break
			}
		}

		return out
	case *grammar.Labeled:
		return a.leftCalls(x.Expr)
	case *grammar.Prefixed:
		return a.leftCalls(x.Expr)
	case *grammar.Suffixed:
		return a.leftCalls(x.Expr)
	case *grammar.Group:
		return a.leftCalls(x.Expr)
	case *grammar.Action:
		return a.leftCalls(x.Expr)
	default:
		return nil
	}
}

func (a *analyzer) checkRepetitions() {
	for _, def := range a.g.Definitions {
		grammar.Walk(def.Expr, func(n grammar.Node) bool {
			s, ok := n.(*grammar.Suffixed)
			if ok && s.Op != grammar.Optional && a.isNullable(s.Expr) {
				a.add(Finding{
					Kind:     KindNullableRepetition,
					Severity: SeverityWarning,
					Rule:     def.Name,
					Message:  fmt.Sprintf("%s repeats an expression that can match empty input", grammar.FormatNode(s)),
					Pos:      def.Pos,
				})
			}

			return true
		})
	}
}
