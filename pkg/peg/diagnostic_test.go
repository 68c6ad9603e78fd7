package peg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

func TestPosition(t *testing.T) {
	t.Parallel()

	text := "ab\ncd\r\nef\rgh"

	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{4, 2, 2},
		{7, 3, 1},
		{10, 4, 1},
		{12, 4, 3},
		{99, 4, 3},
	}

	for _, tt := range tests {
		line, column := peg.Position(text, tt.offset)
		assert.Equal(t, tt.line, line, "line at %d", tt.offset)
		assert.Equal(t, tt.column, column, "column at %d", tt.offset)
	}
}

func TestPosition_CountsRunes(t *testing.T) {
	t.Parallel()

	line, column := peg.Position("жжx", 4)

	assert.Equal(t, 1, line)
	assert.Equal(t, 3, column)
}

func TestExcerpt_ShortLine(t *testing.T) {
	t.Parallel()

	got := peg.Excerpt("first\nsecond line\nthird", 13, peg.DefaultExcerptWidth)

	assert.Equal(t, "second line\n       ^", got)
}

func TestExcerpt_EndOfInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc\n   ^", peg.Excerpt("abc", 3, 80))
	assert.Equal(t, "\n^", peg.Excerpt("", 0, 80))
}

func TestExcerpt_LongLineKeepsCaretProportional(t *testing.T) {
	t.Parallel()

	line := strings.Repeat("0123456789", 20)

	tests := []struct {
		name   string
		offset int
		window string
		caret  int
	}{
		{"start", 0, line[:40], 0},
		{"middle", 100, line[80:120], 20},
		{"end", 200, line[160:200], 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := peg.Excerpt(line, tt.offset, 40)
			parts := strings.Split(got, "\n")
			require.Len(t, parts, 2)

			assert.Equal(t, tt.window, parts[0])
			assert.Equal(t, strings.Repeat(" ", tt.caret)+"^", parts[1])
		})
	}
}

func TestParseError_Message(t *testing.T) {
	t.Parallel()

	b := peg.NewBuilder()
	b.MustDefine("Start", peg.Sequence(peg.Literal("let "), peg.Choice(peg.Literal("x"), peg.Class(peg.MustCharSet("0-9")))))
	table, err := b.Build("")
	require.NoError(t, err)

	_, err = table.Parse("let ?")

	var perr *peg.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 4, perr.Offset)
	assert.Equal(t, 1, perr.Line)
	assert.Equal(t, 5, perr.Column)
	assert.Equal(t, []string{`"x"`, "[0-9]"}, perr.Expected)
	assert.Equal(t, "let ?\n    ^", perr.Excerpt)
	assert.Equal(t, `1:5: no match: expected "x" or [0-9], found '?'`, perr.Error())
}

func TestParseError_LookaheadFailuresAreNotExpected(t *testing.T) {
	t.Parallel()

	b := peg.NewBuilder()
	b.MustDefine("Start", peg.Sequence(peg.Reject(peg.Literal("ab")), peg.Literal("x")))
	table, err := b.Build("")
	require.NoError(t, err)

	_, err = table.Parse("ay")

	var perr *peg.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{`"x"`}, perr.Expected)
}

func TestParseError_ExcerptWidthOption(t *testing.T) {
	t.Parallel()

	b := peg.NewBuilder()
	b.MustDefine("Start", peg.Literal("a"))
	table, err := b.Build("")
	require.NoError(t, err)

	_, err = table.Parse(strings.Repeat("b", 100), peg.WithExcerptWidth(10))

	var perr *peg.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, strings.Repeat("b", 10)+"\n^", perr.Excerpt)
}
