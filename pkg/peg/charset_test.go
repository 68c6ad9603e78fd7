package peg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

func TestParseCharSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		body string
		in   string
		out  string
	}{
		{"abc", "abc", "dA"},
		{"a-z", "amz", "AZ0"},
		{"a-zA-Z_", "qQ_", "-0 "},
		{"^a-z", "A0 ", "az"},
		{`\]\\\-`, `]\-`, "a"},
		{"-a", "-a", "b"},
		{"a-", "-a", "b"},
		{`\n\r\t`, "\n\r\t", " "},
		{`\d`, "0189", "a"},
		{`\w`, "aZ_9", "-"},
		{`\s`, " \t\n", "x"},
		{`\S`, "x", " "},
		{"ж-я", "жя", "a"},
		{"", "", "a"},
		{"^", "a", ""},
	}

	for _, tt := range tests {
		set, err := peg.ParseCharSet(tt.body)
		require.NoError(t, err, tt.body)

		for _, r := range tt.in {
			assert.True(t, set.Contains(r), "%q should contain %q", tt.body, r)
		}

		for _, r := range tt.out {
			assert.False(t, set.Contains(r), "%q should not contain %q", tt.body, r)
		}
	}
}

func TestParseCharSet_Errors(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`z-a`, `abc\`, `a-\d`} {
		_, err := peg.ParseCharSet(body)
		require.ErrorIs(t, err, peg.ErrInvalidCharSet, body)
	}
}

func TestCharSet_String(t *testing.T) {
	t.Parallel()

	set := peg.MustCharSet("^0-9")

	assert.Equal(t, "[^0-9]", set.String())
	assert.True(t, set.Negated())
	assert.Panics(t, func() { peg.MustCharSet("z-a") })
}
