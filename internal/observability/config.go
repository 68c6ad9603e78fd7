// Package observability provides OpenTelemetry tracing, metrics and
// structured logging for every pegkit mode (CLI, HTTP server, LSP, MCP).
package observability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/pegkit/pkg/peg"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is one-shot command execution.
	ModeCLI AppMode = "cli"
	// ModeServe is the HTTP API server.
	ModeServe AppMode = "serve"
	// ModeLSP is the language server over stdio.
	ModeLSP AppMode = "lsp"
	// ModeMCP is the MCP server over stdio.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName        = "pegkit"
	defaultShutdownTimeoutSec = 5
)

// ErrUnknownLevel is returned by ParseLevel.
var ErrUnknownLevel = errors.New("unknown log level")

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment.
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export.
	OTLPEndpoint string

	// OTLPHeaders are extra gRPC metadata headers for the exporters.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the collector connection.
	OTLPInsecure bool

	// SampleRatio is the parent-based trace sampling ratio. Zero samples
	// everything.
	SampleRatio float64

	// Prometheus serves collected metrics through Providers.MetricsHandler.
	Prometheus bool

	// LogLevel is the minimum slog severity.
	LogLevel slog.Level

	// LogJSON selects JSON log output.
	LogJSON bool

	// LogOutput receives log records; nil means stderr.
	LogOutput io.Writer

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps trace, debug, info, warn and error to slog levels. Trace is
// peg.LevelTrace, which enables rule-by-rule parse tracing.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return peg.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
