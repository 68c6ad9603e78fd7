package mcp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/pegkit/internal/mcp"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

func TestNewServer_Tools(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})

	assert.Equal(t, []string{mcp.ToolNameCheck, mcp.ToolNameFormat, mcp.ToolNameParse}, srv.ListToolNames())
}

func TestNewServer_SharedLoader(t *testing.T) {
	t.Parallel()

	loader := pegkit.NewLoader()
	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{Loader: loader}))

	for _, input := range []string{"1+2", "3"} {
		result := call(t, ctx, session, mcp.ToolNameParse, map[string]any{"grammar": sumGrammar, "input": input})
		assert.False(t, result.IsError, text(t, result))
	}

	stats := loader.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestNewServer_DefaultInputLimit(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := call(t, ctx, session, mcp.ToolNameParse, map[string]any{
		"grammar": "S:\n  'a'* -> null\n",
		"input":   strings.Repeat("a", mcp.MaxInputBytes),
	})
	assert.False(t, result.IsError, "input at the limit is accepted")

	result = call(t, ctx, session, mcp.ToolNameParse, map[string]any{
		"grammar": "S:\n  'a'* -> null\n",
		"input":   strings.Repeat("a", mcp.MaxInputBytes+1),
	})
	assert.True(t, result.IsError)
	assert.Contains(t, text(t, result), "exceeds maximum size")
}
