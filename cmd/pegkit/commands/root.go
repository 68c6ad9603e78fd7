// Package commands implements the pegkit command-line interface.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
	"github.com/Sumatoshi-tech/pegkit/pkg/config"
	"github.com/Sumatoshi-tech/pegkit/pkg/pegkit"
	"github.com/Sumatoshi-tech/pegkit/pkg/version"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
	logJSON    bool
	noColor    bool
}

// app holds state shared by every command. It is filled by the root
// command's PersistentPreRunE.
type app struct {
	flags  globalFlags
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the pegkit command tree.
func NewRootCommand() *cobra.Command {
	a := &app{cfg: config.Default(), logger: observability.DiscardLogger()}

	root := &cobra.Command{
		Use:   "pegkit",
		Short: "PEG grammar toolkit",
		Long: `pegkit compiles PEG grammars with embedded actions into parsers.

Commands:
  check     Report errors and warnings in grammars
  parse     Parse input with a grammar and print the action value
  ast       Dump the grammar AST as JSON or YAML
  fmt       Rewrite grammars in canonical layout
  rules     Tabulate the rules of a grammar
  graph     Print the rule dependency graph in DOT
  validate  Validate an AST dump against the embedded schema
  serve     Run the HTTP API
  lsp       Run the language server on stdio
  mcp       Run the MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default is ./.pegkit.yaml, then $HOME/.pegkit.yaml)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", false, "suppress output")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "write logs as JSON")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCheckCommand(a),
		newParseCommand(a),
		newASTCommand(a),
		newFmtCommand(a),
		newRulesCommand(a),
		newGraphCommand(a),
		newValidateCommand(a),
		newServeCommand(a),
		newLSPCommand(a),
		newMCPCommand(a),
		newVersionCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.flags.configPath)
	if err != nil {
		return err
	}

	a.cfg = cfg

	if a.flags.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	obs, err := a.observabilityConfig(observability.ModeCLI)
	if err != nil {
		return err
	}

	a.logger = observability.NewLogger(obs, cmd.ErrOrStderr())

	return nil
}

// observabilityConfig merges the loaded configuration, the logging flags and
// the OTEL_EXPORTER_OTLP_* environment.
func (a *app) observabilityConfig(mode observability.AppMode) (observability.Config, error) {
	level, err := observability.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case a.flags.quiet:
		level = slog.LevelError
	case a.flags.verbose:
		level = min(level, slog.LevelDebug)
	}

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.Environment = a.cfg.Telemetry.Environment
	cfg.Mode = mode
	cfg.OTLPEndpoint = a.cfg.Telemetry.OTLPEndpoint
	cfg.OTLPInsecure = a.cfg.Telemetry.OTLPInsecure || os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.SampleRatio = a.cfg.Telemetry.SampleRatio
	cfg.LogLevel = level
	cfg.LogJSON = a.flags.logJSON || a.cfg.Logging.Format == "json"

	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}

	return cfg, nil
}

// parserOptions resolves the start rule and action mode against the config
// defaults. Empty arguments fall back to the parse.start and actions.mode
// settings.
func (a *app) parserOptions(start, actions string) ([]pegkit.Option, error) {
	if start == "" {
		start = a.cfg.Parse.Start
	}

	if actions == "" {
		actions = a.cfg.Actions.Mode
	}

	eval, err := config.Evaluator(actions)
	if err != nil {
		return nil, err
	}

	limit, err := a.cfg.Parse.MaxInputBytes()
	if err != nil {
		return nil, fmt.Errorf("parse.max_input_size: %w", err)
	}

	return []pegkit.Option{
		pegkit.WithStart(start),
		pegkit.WithEvaluator(eval),
		pegkit.WithMaxInputSize(limit),
		pegkit.WithExcerptWidth(a.cfg.Parse.ExcerptWidth),
		pegkit.WithLogger(a.logger),
	}, nil
}

// newLoader builds a grammar cache bounded by the cache settings.
func (a *app) newLoader(opts ...pegkit.Option) (*pegkit.Loader, error) {
	size, err := a.cfg.Cache.MaxSizeBytes()
	if err != nil {
		return nil, fmt.Errorf("cache.max_size: %w", err)
	}

	return pegkit.NewLoader(
		pegkit.WithCacheEntries(a.cfg.Cache.MaxEntries),
		pegkit.WithCacheSize(size),
		pegkit.WithParserOptions(opts...),
	), nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pegkit %s\n", version.String())
		},
	}
}
