package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newGraphCommand(a *app) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "graph <grammar|->",
		Short: "Print the rule dependency graph in DOT",
		Long: `Print the graph of rule references in Graphviz DOT. The start rule is drawn
in bold.

Examples:
  pegkit graph calc.peg | dot -Tsvg > calc.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.checkGrammar(cmd, args[0], start)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), res.Report.Graph.Serialize(graphName(args[0]), res.Start))

			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start rule (default: parse.start, then Start, then the first rule)")

	return cmd
}

func graphName(path string) string {
	if path == stdinPath {
		return "grammar"
	}

	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
