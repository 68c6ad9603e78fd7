package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/pkg/compiler"
	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
)

func newASTCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ast <grammar|->",
		Short: "Dump the grammar AST as JSON or YAML",
		Long: `Compile the grammar and print its syntax tree. Every node carries a "kind"
key; the JSON form validates against the schema used by "pegkit validate".

Examples:
  pegkit ast calc.peg
  pegkit ast --format yaml calc.peg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.compileGrammar(cmd, args[0])
			if err != nil {
				return err
			}

			return encode(cmd.OutOrStdout(), format, grammar.Tree(g))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json or yaml")

	return cmd
}

// compileGrammar reads and compiles the grammar at path without binding it.
func (a *app) compileGrammar(cmd *cobra.Command, path string) (*grammar.Grammar, error) {
	text, _, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}

	return a.compileText(path, text)
}

func (a *app) compileText(label, text string) (*grammar.Grammar, error) {
	g, err := compiler.Compile(text,
		compiler.WithLogger(a.logger),
		compiler.WithExcerptWidth(a.cfg.Parse.ExcerptWidth),
	)
	if err != nil {
		return nil, wrapLabel(label, err)
	}

	return g, nil
}
