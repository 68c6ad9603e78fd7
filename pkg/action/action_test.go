package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/action"
	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

func bindings() peg.Bindings {
	return peg.Bindings{
		Captures: map[string]any{"a": "x", "b": []any{"y", "z"}},
		Match:    []any{"x", nil, "", []any{"y", "z"}},
		Span:     peg.Span{Start: 2, End: 5},
		Text:     "xyz",
	}
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want any
	}{
		{"text", "xyz"},
		{"match", bindings().Match},
		{"$$", bindings().Match},
		{" join ", "xyz"},
		{"null", nil},
		{"first", "x"},
		{"compact", []any{"x", []any{"y", "z"}}},
		{"captures", map[string]any{"a": "x", "b": []any{"y", "z"}, "$$": bindings().Match}},
	}

	reg := action.Builtins()

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			fn, err := reg.Compile(tt.code)
			require.NoError(t, err)

			got, err := fn(bindings())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryUnknown(t *testing.T) {
	t.Parallel()

	_, err := action.NewRegistry().Compile("a + b")
	assert.ErrorIs(t, err, action.ErrUnknownAction)
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	reg := action.NewRegistry().
		Register("upper", func(peg.Bindings) (any, error) { return "U", nil }).
		Register("lower", func(peg.Bindings) (any, error) { return "l", nil })

	assert.Equal(t, []string{"lower", "upper"}, reg.Codes())

	fn, err := reg.Compile("  upper\n")
	require.NoError(t, err)

	got, err := fn(peg.Bindings{})
	require.NoError(t, err)
	assert.Equal(t, "U", got)
}

func TestExpr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want any
	}{
		{"a + Join(b)", "xyz"},
		{"Text", "xyz"},
		{"End - Start", 3},
		{"missing == nil", true},
		{"len(Compact(Match))", 2},
		{"Unescape('a\\\\nb')", "a\nb"},
		{"Extract([[1, 2], [3, 4]], 1)", []any{2, 4}},
	}

	ev := action.NewExpr()

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			fn, err := ev.Compile(tt.code)
			require.NoError(t, err)

			got, err := fn(bindings())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExprCompileError(t *testing.T) {
	t.Parallel()

	_, err := action.NewExpr().Compile("a +")
	assert.Error(t, err)
}

func TestExprRunError(t *testing.T) {
	t.Parallel()

	fn, err := action.NewExpr().Compile("a.missing.field")
	require.NoError(t, err)

	_, err = fn(peg.Bindings{Captures: map[string]any{"a": 1}})
	assert.Error(t, err)
}

func TestPassthrough(t *testing.T) {
	t.Parallel()

	fn, err := action.Passthrough().Compile("anything at all")
	require.NoError(t, err)

	got, err := fn(bindings())
	require.NoError(t, err)
	assert.Equal(t, bindings().Match, got)
}

func TestChain(t *testing.T) {
	t.Parallel()

	ev := action.Chain(action.Builtins(), action.NewExpr())

	fn, err := ev.Compile("text")
	require.NoError(t, err)

	got, err := fn(bindings())
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)

	fn, err = ev.Compile("a + a")
	require.NoError(t, err)

	got, err = fn(bindings())
	require.NoError(t, err)
	assert.Equal(t, "xx", got)

	_, err = action.Chain(action.NewRegistry()).Compile("nope")
	assert.ErrorIs(t, err, action.ErrUnknownAction)
}

func TestNameOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "registry", action.NameOf(action.Builtins()))
	assert.Equal(t, "expr", action.NameOf(action.NewExpr()))
	assert.Equal(t, "none", action.NameOf(action.Passthrough()))
	assert.Equal(t, "chain(registry,expr)", action.NameOf(action.Chain(action.Builtins(), action.NewExpr())))
}
