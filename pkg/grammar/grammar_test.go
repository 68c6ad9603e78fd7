package grammar_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
)

// sample is the tree of:
//
//	# Sums of numbers.
//	Sum:
//	  head:Number tail:(' '? '+' ' '? Number)* -> head
//	  / '(' Sum ')'
//
//	Number:
//	  [0-9]+ !.
//	  / &'x' ~
func sample() *grammar.Grammar {
	return &grammar.Grammar{Definitions: []*grammar.Definition{
		{
			Name:     "Sum",
			Comments: []string{"Sums of numbers."},
			Expr: &grammar.Choice{Alternatives: []grammar.Node{
				&grammar.Action{
					Code: "head",
					Expr: &grammar.Sequence{Elements: []grammar.Node{
						&grammar.Labeled{Name: "head", Expr: &grammar.RuleRef{Name: "Number"}},
						&grammar.Labeled{Name: "tail", Expr: &grammar.Suffixed{
							Op: grammar.ZeroOrMore,
							Expr: &grammar.Sequence{Elements: []grammar.Node{
								&grammar.Suffixed{Op: grammar.Optional, Expr: &grammar.Literal{Text: " "}},
								&grammar.Literal{Text: "+"},
								&grammar.Suffixed{Op: grammar.Optional, Expr: &grammar.Literal{Text: " "}},
								&grammar.RuleRef{Name: "Number"},
							}},
						}},
					}},
				},
				&grammar.Sequence{Elements: []grammar.Node{
					&grammar.Literal{Text: "("},
					&grammar.RuleRef{Name: "Sum"},
					&grammar.Literal{Text: ")"},
				}},
			}},
		},
		{
			Name: "Number",
			Expr: &grammar.Choice{Alternatives: []grammar.Node{
				&grammar.Sequence{Elements: []grammar.Node{
					&grammar.Suffixed{Op: grammar.OneOrMore, Expr: &grammar.CharClass{Chars: "0-9"}},
					&grammar.Prefixed{Op: grammar.NegativeLookahead, Expr: &grammar.Wildcard{}},
				}},
				&grammar.Sequence{Elements: []grammar.Node{
					&grammar.Prefixed{Op: grammar.Lookahead, Expr: &grammar.Literal{Text: "x"}},
					&grammar.Epsilon{},
				}},
			}},
		},
	}}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	want := "# Sums of numbers.\n" +
		"Sum:\n" +
		"  head:Number tail:(' '? '+' ' '? Number)* -> head\n" +
		"  / '(' Sum ')'\n" +
		"\n" +
		"Number:\n" +
		"  [0-9]+ !.\n" +
		"  / &'x' ~\n"

	assert.Equal(t, want, grammar.Format(sample()))
}

func TestFormat_BlockAction(t *testing.T) {
	t.Parallel()

	def := &grammar.Definition{
		Name: "A",
		Expr: &grammar.Action{
			Expr: &grammar.Literal{Text: "a"},
			Code: "let x = 1;\n\n  x + 1",
		},
	}

	assert.Equal(t, "A:\n  'a' ->\n    let x = 1;\n\n      x + 1", grammar.FormatDefinition(def))
}

func TestFormatNode_Parenthesizes(t *testing.T) {
	t.Parallel()

	n := &grammar.Sequence{Elements: []grammar.Node{
		&grammar.Choice{Alternatives: []grammar.Node{&grammar.Literal{Text: "a"}, &grammar.Literal{Text: "b"}}},
		&grammar.Prefixed{Op: grammar.Lookahead, Expr: &grammar.Suffixed{Op: grammar.Optional, Expr: &grammar.Literal{Text: "c"}}},
		&grammar.Suffixed{Op: grammar.OneOrMore, Expr: &grammar.Prefixed{Op: grammar.NegativeLookahead, Expr: &grammar.Wildcard{}}},
		&grammar.Group{Expr: &grammar.Labeled{Name: "x", Expr: &grammar.Literal{Text: "d"}}},
	}}

	assert.Equal(t, `('a' / 'b') &'c'? (!.)+ (x:'d')`, grammar.FormatNode(n))
}

func TestQuote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `'abc'`, grammar.Quote("abc"))
	assert.Equal(t, `"it's"`, grammar.Quote("it's"))
	assert.Equal(t, `'say "it\'s"'`, grammar.Quote(`say "it's"`))
	assert.Equal(t, `'a\nb\r\\'`, grammar.Quote("a\nb\r\\"))
}

func TestReferencesAndWalk(t *testing.T) {
	t.Parallel()

	g := sample()

	var names []string
	for _, ref := range grammar.References(g) {
		names = append(names, ref.Name)
	}

	assert.Equal(t, []string{"Number", "Number", "Sum"}, names)
	assert.Equal(t, []string{"Sum", "Number"}, g.Names())

	def, ok := g.Lookup("Number")
	require.True(t, ok)
	assert.Equal(t, "Number", def.Name)

	_, ok = g.Lookup("Missing")
	assert.False(t, ok)

	literals := 0

	grammar.Walk(g, func(n grammar.Node) bool {
		if _, ok := n.(*grammar.Action); ok {
			return false
		}

		if _, ok := n.(*grammar.Literal); ok {
			literals++
		}

		return true
	})

	assert.Equal(t, 3, literals)
}

func TestHasLabel(t *testing.T) {
	t.Parallel()

	assert.True(t, grammar.HasLabel(sample().Definitions[0].Expr))
	assert.False(t, grammar.HasLabel(sample().Definitions[1].Expr))
}

func TestTree(t *testing.T) {
	t.Parallel()

	got := grammar.Tree(&grammar.Labeled{Name: "x", Expr: &grammar.Suffixed{Op: grammar.ZeroOrMore, Expr: &grammar.CharClass{Chars: "a-z"}}})

	want := map[string]any{
		"kind": "labeled",
		"name": "x",
		"expr": map[string]any{
			"kind": "suffixed",
			"op":   "zero_or_more",
			"expr": map[string]any{"kind": "char_class", "chars": "a-z"},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_EncodesAsYAML(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(grammar.Tree(&grammar.RuleRef{Name: "Number"}))
	require.NoError(t, err)

	assert.Equal(t, "kind: rule_ref\nname: Number\n", string(out))
}

func TestValidateTree(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(grammar.Tree(sample()))
	require.NoError(t, err)

	violations, err := grammar.ValidateTree(data)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateTree_Violations(t *testing.T) {
	t.Parallel()

	bad := `{"kind":"grammar","definitions":[{"kind":"definition","name":"lower","expr":{"kind":"wildcard"}}]}`

	violations, err := grammar.ValidateTree([]byte(bad))
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Contains(t, violations[0].String(), "name")

	_, err = grammar.ValidateTree([]byte("{not json"))
	require.Error(t, err)
}
