package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pegkit/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".pegkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogFormat, cfg.Logging.Format)
	assert.Equal(t, config.DefaultExcerptWidth, cfg.Parse.ExcerptWidth)
	assert.Equal(t, config.DefaultActionsMode, cfg.Actions.Mode)
	assert.Equal(t, config.DefaultCacheMaxEntries, cfg.Cache.MaxEntries)
	assert.Equal(t, config.DefaultServerReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())

	size, err := cfg.Parse.MaxInputBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(16<<20), size)

	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, `logging:
  level: trace
  format: json
parse:
  max_input_size: 2MB
  excerpt_width: 40
  start: Document
actions:
  mode: expr
cache:
  max_entries: 4
  max_size: 1 MiB
server:
  port: 9000
  idle_timeout: 5s
telemetry:
  otlp_endpoint: localhost:4317
  sample_ratio: 0.25
`))
	require.NoError(t, err)

	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Document", cfg.Parse.Start)
	assert.Equal(t, 40, cfg.Parse.ExcerptWidth)
	assert.Equal(t, config.ActionsExpr, cfg.Actions.Mode)
	assert.Equal(t, 4, cfg.Cache.MaxEntries)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.Telemetry.SampleRatio, 1e-9)

	size, err := cfg.Parse.MaxInputBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000), size)

	size, err = cfg.Cache.MaxSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), size)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, `logging:
  level: loud
parse:
  max_input_size: lots
  excerpt_width: 0
actions:
  mode: eval
server:
  port: 70000
telemetry:
  sample_ratio: 2
`))
	require.Error(t, err)

	for _, want := range []error{
		config.ErrInvalidLogLevel,
		config.ErrInvalidSize,
		config.ErrInvalidExcerptWidth,
		config.ErrInvalidActionsMode,
		config.ErrInvalidPort,
		config.ErrInvalidSampleRatio,
	} {
		assert.ErrorIs(t, err, want)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PEGKIT_PARSE_START", "FromEnv")
	t.Setenv("PEGKIT_SERVER_PORT", "9191")

	cfg, err := config.LoadConfig(writeConfig(t, "parse:\n  start: FromFile\n"))
	require.NoError(t, err)

	assert.Equal(t, "FromEnv", cfg.Parse.Start)
	assert.Equal(t, 9191, cfg.Server.Port)
}
