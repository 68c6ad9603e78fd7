package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
)

// ErrWriteStdin rejects --write for standard input.
var ErrWriteStdin = errors.New("--write cannot rewrite stdin")

type fmtFlags struct {
	diff  bool
	write bool
}

func newFmtCommand(a *app) *cobra.Command {
	var flags fmtFlags

	cmd := &cobra.Command{
		Use:   "fmt <grammar>...",
		Short: "Rewrite grammars in canonical layout",
		Long: `Print each grammar in canonical layout: two-space bodies, one alternative
per line, minimal parentheses and re-indented block actions.

Examples:
  pegkit fmt calc.peg
  pegkit fmt --diff *.peg
  pegkit fmt --write calc.peg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFmt(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.diff, "diff", "d", false, "print a unified diff instead of the formatted text")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "rewrite files in place")

	return cmd
}

func (a *app) runFmt(cmd *cobra.Command, paths []string, flags fmtFlags) error {
	out := cmd.OutOrStdout()

	for _, path := range paths {
		if flags.write && path == stdinPath {
			return ErrWriteStdin
		}

		text, label, err := readSource(cmd, path)
		if err != nil {
			return err
		}

		g, err := a.compileText(label, text)
		if err != nil {
			return err
		}

		formatted := grammar.Format(g)

		switch {
		case flags.diff:
			writeDiff(out, label, text, formatted)
		case !flags.write:
			fmt.Fprint(out, formatted)
		}

		if flags.write && formatted != text {
			if err = writeFileAtomic(path, []byte(formatted)); err != nil {
				return err
			}

			a.logger.Info("grammar formatted", "file", label)
		}
	}

	return nil
}

// writeDiff prints a line diff of before and after with ---/+++ headers.
// Nothing is printed when they are equal.
func writeDiff(w io.Writer, label, before, after string) {
	if before == after {
		return
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	fmt.Fprintf(w, "--- %s\n+++ %s (formatted)\n", label, label)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				removed.Fprintln(w, "-"+line)
			case diffmatchpatch.DiffInsert:
				added.Fprintln(w, "+"+line)
			case diffmatchpatch.DiffEqual:
				fmt.Fprintln(w, " "+line)
			}
		}
	}
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
