package peg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

func run(t *testing.T, e peg.Expression, text string) (peg.Result, int) {
	t.Helper()

	res, end, err := peg.Run(e, text)
	require.NoError(t, err)

	return res, end.Offset()
}

func mustNotRun(t *testing.T) peg.ActionFunc {
	t.Helper()

	return func(peg.Bindings) (any, error) {
		t.Error("action must not run")

		return nil, errors.New("evaluated")
	}
}

func TestPrimitives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		expr  peg.Expression
		input string
		ok    bool
		value any
		end   int
	}{
		{"pass", peg.Pass(), "abc", true, nil, 0},
		{"advance", peg.Advance(), "abc", true, "a", 1},
		{"advance_multibyte", peg.Advance(), "жx", true, "ж", 2},
		{"advance_eof", peg.Advance(), "", false, nil, 0},
		{"literal", peg.Literal("ab"), "abc", true, "ab", 2},
		{"literal_mismatch", peg.Literal("ac"), "abc", false, nil, 0},
		{"literal_empty", peg.Literal(""), "abc", true, "", 0},
		{"class", peg.Class(peg.MustCharSet("a-c")), "bcd", true, "b", 1},
		{"class_mismatch", peg.Class(peg.MustCharSet("a-c")), "xyz", false, nil, 0},
		{"predicate", peg.Predicate("digit", func(r rune) bool { return r >= '0' && r <= '9' }), "7x", true, "7", 1},
		{"pattern", peg.MustPattern(`[0-9]+`), "123abc", true, "123", 3},
		{"pattern_anchored", peg.MustPattern(`[0-9]+`), "abc123", false, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, end := run(t, tt.expr, tt.input)

			assert.Equal(t, tt.ok, res.OK())
			assert.Equal(t, tt.value, res.Value())
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestPass_IsEmpty(t *testing.T) {
	t.Parallel()

	res, _ := run(t, peg.Pass(), "")

	assert.True(t, res.Empty())
}

func TestSequence_AggregatesNonEmptyValues(t *testing.T) {
	t.Parallel()

	e := peg.Sequence(peg.Literal("a"), peg.Token(peg.Literal("-")), peg.Literal("b"), peg.Pass())

	res, end := run(t, e, "a-b")

	require.True(t, res.OK())
	assert.Equal(t, []any{"a", "b"}, res.Value())
	assert.Equal(t, 3, end)
}

func TestSequence_AllOrNothing(t *testing.T) {
	t.Parallel()

	e := peg.Sequence(peg.Literal("a"), peg.Literal("b"))
	in := peg.NewInput("xac")

	res, next := e.Match(in, peg.At(1), peg.EmptyScope())

	assert.False(t, res.OK())
	assert.Equal(t, peg.At(1), next)
}

func TestChoice_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	e := peg.Choice(peg.Literal("ab"), peg.Literal("a"))

	res, end := run(t, e, "abc")

	assert.Equal(t, "ab", res.Value())
	assert.Equal(t, 2, end)
}

func TestChoice_ShortCircuit(t *testing.T) {
	t.Parallel()

	e := peg.Choice(peg.Literal("a"), peg.Action(peg.Literal("a"), mustNotRun(t)))

	res, end, err := peg.Run(e, "a")

	require.NoError(t, err)
	assert.Equal(t, "a", res.Value())
	assert.Equal(t, 1, end.Offset())
}

func TestChoice_AllFail(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.Choice(peg.Literal("x"), peg.Literal("y")), "z")

	assert.False(t, res.OK())
	assert.Equal(t, 0, end)
}

func TestZeroOrMore_Greedy(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.ZeroOrMore(peg.Literal("a")), "aaab")

	require.True(t, res.OK())
	assert.Equal(t, []any{"a", "a", "a"}, res.Value())
	assert.Equal(t, 3, end)
}

func TestZeroOrMore_NoMatchIsEmptyList(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.ZeroOrMore(peg.Literal("a")), "b")

	require.True(t, res.OK())
	assert.Equal(t, []any{}, res.Value())
	assert.Equal(t, 0, end)
}

func TestZeroOrMore_StopsWithoutProgress(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.ZeroOrMore(peg.Optional(peg.Literal("x"))), "abc")

	require.True(t, res.OK())
	assert.Equal(t, []any{nil}, res.Value())
	assert.Equal(t, 0, end)
}

func TestOneOrMore(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.OneOrMore(peg.Literal("a")), "aab")
	require.True(t, res.OK())
	assert.Equal(t, []any{"a", "a"}, res.Value())
	assert.Equal(t, 2, end)

	res, end = run(t, peg.OneOrMore(peg.Literal("a")), "baa")
	assert.False(t, res.OK())
	assert.Equal(t, 0, end)
}

func TestOptional(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.Optional(peg.Literal("a")), "b")
	require.True(t, res.OK())
	assert.False(t, res.Empty())
	assert.Nil(t, res.Value())
	assert.Equal(t, 0, end)

	res, end = run(t, peg.Sequence(peg.Optional(peg.Literal("a")), peg.Literal("b")), "b")
	require.True(t, res.OK())
	assert.Equal(t, []any{nil, "b"}, res.Value())
	assert.Equal(t, 1, end)
}

func TestLookahead_DoesNotConsume(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.Lookahead(peg.Literal("a")), "abc")

	require.True(t, res.OK())
	assert.True(t, res.Empty())
	assert.Equal(t, 0, end)

	res, end = run(t, peg.Lookahead(peg.Literal("b")), "abc")
	assert.False(t, res.OK())
	assert.Equal(t, 0, end)
}

func TestLookahead_KeepsNoCaptures(t *testing.T) {
	t.Parallel()

	res, _ := run(t, peg.Lookahead(peg.Label("x", peg.Literal("a"))), "a")

	require.True(t, res.OK())
	assert.Equal(t, 0, res.Captures().Len())
}

func TestReject(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.Reject(peg.Literal("b")), "abc")
	require.True(t, res.OK())
	assert.Equal(t, 0, end)

	res, _ = run(t, peg.Reject(peg.Literal("a")), "abc")
	assert.False(t, res.OK())
}

func TestLabel_BindsAndPassesThrough(t *testing.T) {
	t.Parallel()

	res, _ := run(t, peg.Label("word", peg.Literal("hi")), "hi")

	require.True(t, res.OK())
	assert.Equal(t, "hi", res.Value())
	assert.Equal(t, "word", res.Name())

	v, ok := res.Captures().Lookup("word")
	require.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestToken_IsEmpty(t *testing.T) {
	t.Parallel()

	res, end := run(t, peg.Token(peg.Literal("hello")), "hello")

	require.True(t, res.OK())
	assert.True(t, res.Empty())
	assert.Equal(t, 5, end)
}

func TestAction_ReceivesBindings(t *testing.T) {
	t.Parallel()

	var got peg.Bindings

	e := peg.Sequence(
		peg.Literal(">"),
		peg.Action(
			peg.Sequence(peg.Label("a", peg.Literal("x")), peg.Label("b", peg.Literal("y"))),
			func(b peg.Bindings) (any, error) {
				got = b

				return peg.Join(b.Match), nil
			},
		),
	)

	res, _ := run(t, e, ">xy")

	require.True(t, res.OK())
	assert.Equal(t, []any{">", "xy"}, res.Value())
	assert.Equal(t, map[string]any{"a": "x", "b": "y"}, got.Captures)
	assert.Equal(t, []any{"x", "y"}, got.Match)
	assert.Equal(t, peg.Span{Start: 1, End: 3}, got.Span)
	assert.Equal(t, "xy", got.Text)

	whole, ok := got.Get(peg.WholeMatch)
	require.True(t, ok)
	assert.Equal(t, got.Match, whole)
	assert.Contains(t, got.Map(), peg.WholeMatch)
}

func TestAction_CapturesMergeIntoEnclosingScope(t *testing.T) {
	t.Parallel()

	e := peg.Action(peg.Label("a", peg.Literal("x")), func(peg.Bindings) (any, error) { return 1, nil })

	res, _ := run(t, e, "x")

	v, ok := res.Captures().Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestAction_RunsInFreshScope(t *testing.T) {
	t.Parallel()

	var seen map[string]any

	e := peg.Sequence(
		peg.Label("outer", peg.Literal("o")),
		peg.Action(peg.Label("inner", peg.Literal("i")), func(b peg.Bindings) (any, error) {
			seen = b.Captures

			return nil, nil
		}),
	)

	res, _ := run(t, e, "oi")

	require.True(t, res.OK())
	assert.Equal(t, map[string]any{"inner": "i"}, seen)
	assert.Equal(t, map[string]any{"outer": "o", "inner": "i"}, res.Captures().Map())
}

func TestAction_EmptyMatchIsNil(t *testing.T) {
	t.Parallel()

	e := peg.Action(peg.Token(peg.Literal("a")), func(b peg.Bindings) (any, error) {
		return b.Match == nil, nil
	})

	res, _ := run(t, e, "a")

	assert.Equal(t, true, res.Value())
}

func TestAction_ErrorAbortsRun(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := peg.Choice(
		peg.NamedAction("explode", peg.Literal("a"), func(peg.Bindings) (any, error) { return nil, boom }),
		peg.Literal("a"),
	)

	_, _, err := peg.Run(e, "a")

	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	var actionErr *peg.ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "explode", actionErr.Action)
	assert.Equal(t, 0, actionErr.Offset)
}

func TestCaptureScoping_FailedAlternativeDoesNotLeak(t *testing.T) {
	t.Parallel()

	first := peg.Sequence(peg.Label("x", peg.Literal("a")), peg.Literal("z"))

	t.Run("choice_succeeds_later", func(t *testing.T) {
		t.Parallel()

		res, _ := run(t, peg.Choice(first, peg.Label("y", peg.Literal("a"))), "ab")

		require.True(t, res.OK())

		_, ok := res.Captures().Lookup("x")
		assert.False(t, ok)

		_, ok = res.Captures().Lookup("y")
		assert.True(t, ok)
	})

	t.Run("choice_fails", func(t *testing.T) {
		t.Parallel()

		scope := peg.EmptyScope().Bind("keep", 1)
		in := peg.NewInput("ab")

		res, next := peg.Choice(first, peg.Literal("q")).Match(in, peg.At(0), scope)

		assert.False(t, res.OK())
		assert.Equal(t, peg.At(0), next)
		assert.Equal(t, map[string]any{"keep": 1}, scope.Map())
	})

	t.Run("action_sees_winning_alternative_only", func(t *testing.T) {
		t.Parallel()

		var seen map[string]any

		e := peg.Action(peg.Choice(first, peg.Label("y", peg.Literal("a"))), func(b peg.Bindings) (any, error) {
			seen = b.Captures

			return nil, nil
		})

		run(t, e, "ab")

		assert.Equal(t, map[string]any{"y": "a"}, seen)
	})
}

func TestRepeatedLabelLastWriteWins(t *testing.T) {
	t.Parallel()

	e := peg.Action(peg.ZeroOrMore(peg.Label("x", peg.Advance())), func(b peg.Bindings) (any, error) {
		return b.Captures["x"], nil
	})

	res, _ := run(t, e, "abc")

	assert.Equal(t, "c", res.Value())
}

func TestBacktrackingPurity(t *testing.T) {
	t.Parallel()

	b := peg.NewBuilder()
	b.MustDefine("Z", peg.Sequence(peg.Label("r", peg.Literal("a")), peg.Literal("z")))
	table, err := b.Build("Z")
	require.NoError(t, err)

	ref, ok := table.Rule("Z")
	require.True(t, ok)

	partial := peg.Sequence(peg.Label("a", peg.Literal("a")), peg.Literal("z"))

	tests := []struct {
		name string
		expr peg.Expression
	}{
		{"sequence", partial},
		{"choice", peg.Choice(partial, peg.Literal("q"))},
		{"one_or_more", peg.OneOrMore(partial)},
		{"lookahead", peg.Lookahead(partial)},
		{"reject", peg.Reject(peg.Label("a", peg.Literal("a")))},
		{"label", peg.Label("v", partial)},
		{"token", peg.Token(partial)},
		{"action", peg.Action(partial, mustNotRun(t))},
		{"rule", ref},
		{"literal", peg.Literal("q")},
		{"class", peg.Class(peg.MustCharSet("q"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			scope := peg.EmptyScope().Bind("before", true)
			in := peg.NewInput("xab")

			res, next := tt.expr.Match(in, peg.At(1), scope)

			assert.False(t, res.OK())
			assert.Equal(t, peg.At(1), next)
			assert.Equal(t, 0, res.Captures().Len())
			assert.Equal(t, map[string]any{"before": true}, scope.Map())
		})
	}
}

func TestString_RendersGrammarNotation(t *testing.T) {
	t.Parallel()

	e := peg.Sequence(
		peg.Label("x", peg.Choice(peg.Literal("a"), peg.Advance())),
		peg.ZeroOrMore(peg.Sequence(peg.Literal("b"), peg.Literal("c"))),
		peg.Reject(peg.Class(peg.MustCharSet("0-9"))),
		peg.Optional(peg.Pass()),
	)

	assert.Equal(t, `x:("a" / .) ("b" "c")* ![0-9] ~?`, e.String())
}
