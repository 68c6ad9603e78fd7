package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/lsp"
)

func newLSPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Run the grammar language server on stdio",
		Long: `Start a Language Server Protocol server for grammar files on stdio.

It publishes diagnostics on open and change, and answers hover, completion
and go-to-definition requests. Logs go to stderr.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			eval, err := a.cfg.Actions.Evaluator()
			if err != nil {
				return err
			}

			obs, err := a.observabilityConfig(observability.ModeLSP)
			if err != nil {
				return err
			}

			providers, err := initProviders(obs)
			if err != nil {
				return err
			}
			defer providers.close()

			return lsp.NewServer(lsp.WithEvaluator(eval), lsp.WithLogger(providers.Logger)).Run()
		},
	}
}
