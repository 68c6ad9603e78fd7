package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

// ErrNotCompiled is returned when a grammar has syntax errors.
var ErrNotCompiled = errors.New("grammar does not compile")

func newRulesCommand(a *app) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "rules <grammar|->",
		Short: "Tabulate the rules of a grammar",
		Long: `Print a table with one row per rule: the number of alternatives, the rules it
references and is referenced by, whether it can match the empty string, and
its first comment line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.checkGrammar(cmd, args[0], start)
			if err != nil {
				return err
			}

			renderRules(cmd.OutOrStdout(), res)

			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start rule (default: parse.start, then Start, then the first rule)")

	return cmd
}

// checkGrammar runs Check on the grammar at path. Only syntax errors fail.
// Other diagnostics are logged as warnings so tables and graphs can still be
// drawn for grammars in progress.
func (a *app) checkGrammar(cmd *cobra.Command, path, start string) (*pegkit.CheckResult, error) {
	opts, err := a.parserOptions(start, "")
	if err != nil {
		return nil, err
	}

	text, label, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}

	res := pegkit.Check(text, opts...)
	if res.Report == nil {
		printDiagnostics(cmd.ErrOrStderr(), label, res.Diagnostics)

		return nil, fmt.Errorf("%w: %s", ErrNotCompiled, label)
	}

	for _, d := range res.Diagnostics {
		a.logger.Warn("grammar diagnostic", "file", label, "diagnostic", d.String())
	}

	return res, nil
}

func renderRules(w io.Writer, res *pegkit.CheckResult) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Rule", "Alternatives", "References", "Referenced by", "Nullable", "Comment"})

	for _, info := range res.Rules {
		name := info.Name
		if name == res.Start {
			name += " *"
		}

		tbl.AppendRow(table.Row{
			name,
			info.Alternatives,
			strings.Join(info.References, ", "),
			strings.Join(info.ReferencedBy, ", "),
			yesNo(info.Nullable),
			info.Comment,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d rules", len(res.Rules))})
	tbl.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
