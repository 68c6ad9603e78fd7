package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

var (
	// ErrParseFailed is returned when an input does not match the grammar.
	ErrParseFailed = errors.New("parse failed")
	// ErrGrammarFromStdin rejects reading both grammar and input from stdin.
	ErrGrammarFromStdin = errors.New("grammar and input cannot both come from stdin")
)

type parseFlags struct {
	grammar string
	start   string
	actions string
	format  string
}

func newParseCommand(a *app) *cobra.Command {
	var flags parseFlags

	cmd := &cobra.Command{
		Use:   "parse -g <grammar> [file...|-]",
		Short: "Parse input with a grammar and print the action value",
		Long: `Parse each input file, or stdin when none is given, with the grammar and
print the value its actions build. A failed parse prints the position, what
was expected and an excerpt with a caret under the failure.

Examples:
  pegkit parse -g calc.peg expr.txt
  echo '1+2' | pegkit parse -g calc.peg
  pegkit parse -g json.peg --actions expr --format yaml data.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.grammar, "grammar", "g", "", "grammar file")
	cmd.Flags().StringVar(&flags.start, "start", "", "start rule (default: parse.start, then Start, then the first rule)")
	cmd.Flags().StringVar(&flags.actions, "actions", "", "action evaluation: registry, expr, chain or none (default: actions.mode)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", formatJSON, "output format: json or yaml")

	_ = cmd.MarkFlagRequired("grammar")

	return cmd
}

func (a *app) runParse(cmd *cobra.Command, inputs []string, flags parseFlags) error {
	if len(inputs) == 0 {
		inputs = []string{stdinPath}
	}

	if flags.grammar == stdinPath {
		for _, in := range inputs {
			if in == stdinPath {
				return ErrGrammarFromStdin
			}
		}
	}

	opts, err := a.parserOptions(flags.start, flags.actions)
	if err != nil {
		return err
	}

	grammarText, grammarLabel, err := readSource(cmd, flags.grammar)
	if err != nil {
		return err
	}

	loader, err := a.newLoader(opts...)
	if err != nil {
		return err
	}

	parser, err := loader.Compile(cmd.Context(), grammarLabel, grammarText)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0

	for _, path := range inputs {
		text, label, readErr := readSource(cmd, path)
		if readErr != nil {
			return readErr
		}

		value, parseErr := parser.Parse(cmd.Context(), text)
		if parseErr != nil {
			failed++

			printFailure(cmd.ErrOrStderr(), label, pegkit.Describe(parseErr))

			continue
		}

		a.logger.Debug("input parsed", "file", label, "size", humanize.Bytes(uint64(len(text))))

		if err = encode(out, flags.format, value); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d inputs", ErrParseFailed, failed, len(inputs))
	}

	return nil
}

func printFailure(w io.Writer, label string, f pegkit.Failure) {
	color.New(color.FgRed, color.Bold).Fprintf(w, "%s: ", label)
	fmt.Fprintln(w, f.Error)

	if f.Excerpt != "" {
		fmt.Fprintln(w, f.Excerpt)
	}
}
