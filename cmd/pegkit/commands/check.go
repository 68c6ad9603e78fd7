package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/pkg/analysis"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

// ErrCheckFailed is returned when a checked grammar has errors.
var ErrCheckFailed = errors.New("grammar check failed")

func newCheckCommand(a *app) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "check <grammar>...",
		Short: "Report errors and warnings in grammars",
		Long: `Compile, bind and analyze each grammar and print every problem found:
syntax errors, undefined rules, invalid actions, left recursion, unreachable
rules and repetitions of expressions that can match nothing.

Exits non-zero when any grammar has errors. Warnings alone do not fail.

Examples:
  pegkit check calc.peg
  pegkit check --start Expr calc.peg json.peg
  pegkit check - < calc.peg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, start)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start rule (default: parse.start, then Start, then the first rule)")

	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, paths []string, start string) error {
	opts, err := a.parserOptions(start, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0

	for _, path := range paths {
		text, label, readErr := readSource(cmd, path)
		if readErr != nil {
			return readErr
		}

		res := pegkit.Check(text, opts...)
		printDiagnostics(out, label, res.Diagnostics)

		if res.HasErrors() {
			failed++

			continue
		}

		if len(res.Diagnostics) == 0 && !a.flags.quiet {
			color.New(color.FgGreen).Fprintf(out, "%s: ok (%d rules)\n", label, len(res.Rules))
		}

		a.logger.Debug("grammar checked", "file", label, "rules", len(res.Rules), "start", res.Start)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d grammars", ErrCheckFailed, failed, len(paths))
	}

	return nil
}

// printDiagnostics writes one "file:line:col: severity: message [kind]" line
// per diagnostic.
func printDiagnostics(w io.Writer, label string, diags []pegkit.Diagnostic) {
	for _, d := range diags {
		sev := color.New(color.FgYellow)
		if d.Severity == analysis.SeverityError {
			sev = color.New(color.FgRed, color.Bold)
		}

		fmt.Fprintf(w, "%s:%d:%d: ", label, d.Line, d.Column)
		sev.Fprint(w, d.Severity)
		fmt.Fprintf(w, ": %s ", d.Message)
		color.New(color.Faint).Fprintf(w, "[%s]\n", d.Kind)
	}
}
