package action

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// Reserved variables of the expression language. Labels are lowercase, so
// they never shadow these.
const (
	VarMatch = "Match"
	VarText  = "Text"
	VarStart = "Start"
	VarEnd   = "End"
)

// Expr evaluates action code as github.com/expr-lang/expr expressions.
//
// Captures are variables, and labels that did not match evaluate to nil. The
// whole match, its text and its byte span are available as Match, Text, Start
// and End, alongside the helpers Join, Extract, Compact and Unescape.
type Expr struct{}

// NewExpr returns the expression evaluator.
func NewExpr() *Expr { return &Expr{} }

// Name implements Named.
func (*Expr) Name() string { return "expr" }

// Compile compiles code once; the returned callable only runs the program.
func (*Expr) Compile(code string) (peg.ActionFunc, error) {
	program, err := expr.Compile(code, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile action %q: %w", code, err)
	}

	return func(b peg.Bindings) (any, error) {
		return run(program, b)
	}, nil
}

func run(program *vm.Program, b peg.Bindings) (any, error) {
	env := b.Map()
	env[VarMatch] = b.Match
	env[VarText] = b.Text
	env[VarStart] = b.Span.Start
	env[VarEnd] = b.Span.End
	env["Join"] = peg.Join
	env["Extract"] = peg.Extract
	env["Compact"] = peg.Compact
	env["Unescape"] = peg.Unescape

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("run action: %w", err)
	}

	return out, nil
}
