package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/analysis"
	"github.com/Sumatoshi-tech/pegkit/pkg/compiler"
)

func analyze(t *testing.T, text, start string) *analysis.Report {
	t.Helper()

	g, err := compiler.Compile(text)
	require.NoError(t, err)

	return analysis.Analyze(g, start)
}

func kinds(findings []analysis.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Kind + ":" + f.Rule
	}

	return out
}

func TestCleanGrammar(t *testing.T) {
	t.Parallel()

	r := analyze(t, `Sum:
  Number ('+' Number)*

Number:
  Digit+

Digit:
  [0-9]
`, "")

	assert.Equal(t, "Sum", r.Start)
	assert.Empty(t, r.Findings)
	assert.False(t, r.HasErrors())
	assert.Equal(t, []string{"Digit", "Number", "Sum"}, r.Order)
	assert.Empty(t, r.Nullable)
}

func TestStartPreference(t *testing.T) {
	t.Parallel()

	r := analyze(t, "A:\n  'a'\n\nStart:\n  'b'\n", "")

	assert.Equal(t, "Start", r.Start)
	assert.Equal(t, []string{"unreachable:A"}, kinds(r.Findings))
}

func TestUnreachable(t *testing.T) {
	t.Parallel()

	r := analyze(t, "A:\n  B\n\nB:\n  'b'\n\nC:\n  'c'\n", "")

	require.Len(t, r.Findings, 1)
	f := r.Findings[0]
	assert.Equal(t, analysis.KindUnreachable, f.Kind)
	assert.Equal(t, analysis.SeverityWarning, f.Severity)
	assert.Equal(t, "C", f.Rule)
	assert.Equal(t, "warning: C: rule C is not reachable from A", f.String())
}

func TestLeftRecursion(t *testing.T) {
	t.Parallel()

	r := analyze(t, `Expr:
  Term '+' Expr
  / Term

Term:
  Opt Expr '*'
  / [0-9]

Opt:
  '-'?

Self:
  Self 'x'
`, "")

	errs := r.Filter(analysis.SeverityError)
	require.Len(t, errs, 2)

	assert.Equal(t, "Expr", errs[0].Rule)
	assert.Equal(t, "left recursion: Expr -> Term -> Expr", errs[0].Message)
	assert.Equal(t, "Self", errs[1].Rule)
	assert.Equal(t, "left recursion: Self -> Self", errs[1].Message)
	assert.True(t, r.HasErrors())
	assert.True(t, r.Nullable["Opt"])
}

func TestNullableRepetition(t *testing.T) {
	t.Parallel()

	r := analyze(t, "Start:\n  ('a'?)* Empty+\n\nEmpty:\n  ~\n", "")

	assert.Equal(t, []string{"nullable-repetition:Start", "nullable-repetition:Start"}, kinds(r.Findings))
	assert.Contains(t, r.Findings[0].Message, "can match empty input")
}

func TestUndefined(t *testing.T) {
	t.Parallel()

	r := analyze(t, "Start:\n  Missing 'x'\n", "")

	require.Len(t, r.Findings, 1)
	assert.Equal(t, analysis.KindUndefined, r.Findings[0].Kind)
	assert.Equal(t, 9, r.Findings[0].Pos.Start)

	r = analyze(t, "Start:\n  'x'\n", "Other")
	assert.Equal(t, []string{"undefined:Other"}, kinds(r.Findings))
}

func TestGraph(t *testing.T) {
	t.Parallel()

	r := analyze(t, "A:\n  B C\n\nB:\n  C\n\nC:\n  'c'\n", "")

	assert.Equal(t, []string{"B", "C"}, r.Graph.FindChildren("A"))
	assert.Equal(t, []string{"A", "B"}, r.Graph.FindParents("C"))
	assert.Equal(t, []string{"C", "B", "A"}, r.Order)
}
