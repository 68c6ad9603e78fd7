package peg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

func TestScope_BindDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := peg.EmptyScope().Bind("a", 1)
	extended := base.Bind("b", 2)

	_, ok := base.Lookup("b")
	assert.False(t, ok)

	v, ok := extended.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())
}

func TestScope_LaterBindingShadows(t *testing.T) {
	t.Parallel()

	s := peg.EmptyScope().Bind("a", 1).Bind("b", 2).Bind("a", 3)

	v, ok := s.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.Equal(t, map[string]any{"a": 3, "b": 2}, s.Map())
}

func TestScope_Merge(t *testing.T) {
	t.Parallel()

	outer := peg.EmptyScope().Bind("a", 1).Bind("b", 2)
	inner := peg.EmptyScope().Bind("b", 20).Bind("c", 30)

	merged := outer.Merge(inner)

	assert.Equal(t, map[string]any{"a": 1, "b": 20, "c": 30}, merged.Map())
	assert.Equal(t, []string{"a", "b", "c"}, merged.Names())
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, outer.Map())
	assert.Equal(t, outer.Map(), outer.Merge(peg.EmptyScope()).Map())
	assert.Equal(t, inner.Map(), peg.EmptyScope().Merge(inner).Map())
}

func TestCursor_Advance(t *testing.T) {
	t.Parallel()

	c := peg.At(2)
	next := c.Advance(3)

	assert.Equal(t, 2, c.Offset())
	assert.Equal(t, 5, next.Offset())
}
