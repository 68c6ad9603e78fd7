package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/cmd/pegkit/commands"
)

const sumGrammar = `# Sums of numbers.
Sum:
  head:Number tail:('+' Number)* -> head + sum(map(tail, #[1]))

Number:
  [0-9]+ -> int(Text)
`

// run executes the root command with args and stdin and returns what it
// wrote to stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer

	root := commands.NewRootCommand()
	root.SetArgs(append([]string{"--config", writeFile(t, "config.yaml", "logging:\n  level: warn\n")}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err = root.Execute()

	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestCheck_Clean(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	stdout, _, err := run(t, "", "check", path)
	require.NoError(t, err)
	assert.Equal(t, path+": ok (2 rules)\n", stdout)
}

func TestCheck_Errors(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.peg", "Start:\n  Missing\n")

	stdout, _, err := run(t, "", "check", path)
	require.ErrorIs(t, err, commands.ErrCheckFailed)
	assert.Contains(t, stdout, path+":2:3: error: ")
	assert.Contains(t, stdout, "[undefined]")
}

func TestCheck_Stdin(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, sumGrammar, "check", "-")
	require.NoError(t, err)
	assert.Equal(t, "<stdin>: ok (2 rules)\n", stdout)
}

func TestParse(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	stdout, _, err := run(t, "1+2+39", "parse", "-g", path)
	require.NoError(t, err)
	assert.Equal(t, "42\n", stdout)

	stdout, _, err = run(t, "17", "parse", "-g", path, "--start", "Number", "--format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "17\n", stdout)
}

func TestParse_Failure(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)
	input := writeFile(t, "in.txt", "1+x")

	_, stderr, err := run(t, "", "parse", "-g", path, input)
	require.ErrorIs(t, err, commands.ErrParseFailed)
	assert.Contains(t, stderr, input+": 1:3: ")
	assert.Contains(t, stderr, "1+x\n  ^")
}

func TestParse_Flags(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	_, _, err := run(t, "1", "parse")
	require.Error(t, err)

	_, _, err = run(t, "1", "parse", "-g", "-")
	require.ErrorIs(t, err, commands.ErrGrammarFromStdin)

	_, _, err = run(t, "1", "parse", "-g", path, "--actions", "bogus")
	require.Error(t, err)

	_, _, err = run(t, "1", "parse", "-g", path, "--format", "xml")
	require.ErrorIs(t, err, commands.ErrUnknownFormat)
}

func TestAST(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	stdout, _, err := run(t, "", "ast", path)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &tree))
	assert.Equal(t, "grammar", tree["kind"])
	assert.Len(t, tree["definitions"], 2)

	stdout, _, err = run(t, "", "ast", "--format", "yaml", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "definitions:\n"), stdout)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	tree, _, err := run(t, "", "ast", path)
	require.NoError(t, err)

	stdout, _, err := run(t, "", "validate", writeFile(t, "sum.json", tree))
	require.NoError(t, err)
	assert.Contains(t, stdout, "valid grammar tree")

	yamlTree, _, err := run(t, "", "ast", "--format", "yaml", path)
	require.NoError(t, err)

	_, _, err = run(t, "", "validate", writeFile(t, "sum.yaml", yamlTree))
	require.NoError(t, err)

	stdout, _, err = run(t, "", "validate", writeFile(t, "bad.json", `{"kind":"grammar"}`))
	require.ErrorIs(t, err, commands.ErrInvalidTree)
	assert.Contains(t, stdout, "schema violations")

	stdout, _, err = run(t, "", "validate", "--schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestFmt(t *testing.T) {
	t.Parallel()

	ugly := "Start:\n  'a'   'b'\n"
	path := writeFile(t, "ugly.peg", ugly)

	stdout, _, err := run(t, "", "fmt", path)
	require.NoError(t, err)
	assert.Equal(t, "Start:\n  'a' 'b'\n", stdout)

	stdout, _, err = run(t, "", "fmt", "--diff", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "--- "+path)
	assert.Contains(t, stdout, "-  'a'   'b'\n")
	assert.Contains(t, stdout, "+  'a' 'b'\n")

	_, _, err = run(t, "", "fmt", "--write", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Start:\n  'a' 'b'\n", string(data))

	stdout, _, err = run(t, "", "fmt", "--diff", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	_, _, err = run(t, ugly, "fmt", "--write", "-")
	require.ErrorIs(t, err, commands.ErrWriteStdin)
}

func TestRules(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	stdout, _, err := run(t, "", "rules", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sum *")
	assert.Contains(t, stdout, "Sums of numbers.")
	assert.Contains(t, strings.ToLower(stdout), "total: 2 rules")

	_, _, err = run(t, "", "rules", writeFile(t, "broken.peg", "Start\n  'a'"))
	require.ErrorIs(t, err, commands.ErrNotCompiled)
}

func TestGraph(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "sum.peg", sumGrammar)

	stdout, _, err := run(t, "", "graph", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, `digraph "sum" {`), stdout)
	assert.Contains(t, stdout, `"Sum" [style=bold];`)
	assert.Contains(t, stdout, `"Sum" -> "Number";`)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "pegkit "), stdout)
}

func TestConfigErrors(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()
	root.SetArgs([]string{"--config", writeFile(t, "bad.yaml", "actions:\n  mode: fancy\n"), "version"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.Error(t, root.Execute())
}

func TestMCPCommand_DebugFlag(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	cmd, _, err := root.Find([]string{"mcp"})
	require.NoError(t, err)
	assert.Equal(t, "mcp", cmd.Use)
	assert.NotEmpty(t, cmd.Long)

	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
