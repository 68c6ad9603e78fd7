package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/internal/mcp"
	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
)

func newMCPCommand(a *app) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes grammar tools that AI agents can discover and invoke:
  - peg_check: Report syntax errors, undefined rules and analysis findings
  - peg_parse: Parse input with a grammar and return the action value
  - peg_format: Rewrite a grammar in canonical layout`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			obs, err := a.observabilityConfig(observability.ModeMCP)
			if err != nil {
				return err
			}

			obs.LogJSON = true

			if debug {
				obs.LogLevel = slog.LevelDebug
			}

			providers, err := initProviders(obs)
			if err != nil {
				return err
			}
			defer providers.close()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			loader, err := a.newLoader(
				pegkit.WithLogger(providers.Logger),
				pegkit.WithTracer(providers.Tracer),
				pegkit.WithExcerptWidth(a.cfg.Parse.ExcerptWidth),
			)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
				Loader:  loader,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
