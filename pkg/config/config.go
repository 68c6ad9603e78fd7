// Package config loads pegkit configuration from a YAML file, PEGKIT_
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables; PEGKIT_PARSE_START sets
// parse.start.
const EnvPrefix = "PEGKIT"

// FileName is the base name of the config file looked up when no path is
// given.
const FileName = ".pegkit"

const maxPort = 65535

// Sentinel validation errors.
var (
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrInvalidSize         = errors.New("invalid size")
	ErrInvalidExcerptWidth = errors.New("excerpt width must be positive")
	ErrInvalidActionsMode  = errors.New("invalid actions mode")
	ErrInvalidCacheEntries = errors.New("cache max entries must not be negative")
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidSampleRatio  = errors.New("sample ratio must be within [0, 1]")
)

// Config holds all pegkit configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Parse     ParseConfig     `mapstructure:"parse"`
	Actions   ActionsConfig   `mapstructure:"actions"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// ParseConfig holds parsing limits.
type ParseConfig struct {
	// MaxInputSize is a humanized byte size such as "16MiB". Zero disables
	// the limit.
	MaxInputSize string `mapstructure:"max_input_size"`
	ExcerptWidth int    `mapstructure:"excerpt_width"`
	Start        string `mapstructure:"start"`
}

// MaxInputBytes returns MaxInputSize in bytes.
func (c ParseConfig) MaxInputBytes() (int64, error) {
	return parseSize(c.MaxInputSize)
}

// ActionsConfig selects how action code is evaluated.
type ActionsConfig struct {
	Mode string `mapstructure:"mode"`
}

// CacheConfig bounds the compiled grammar cache.
type CacheConfig struct {
	MaxEntries int    `mapstructure:"max_entries"`
	MaxSize    string `mapstructure:"max_size"`
}

// MaxSizeBytes returns MaxSize in bytes.
func (c CacheConfig) MaxSizeBytes() (int64, error) {
	return parseSize(c.MaxSize)
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Environment  string  `mapstructure:"environment"`
}

// LoadConfig loads configuration. An empty configPath looks for .pegkit.yaml
// in the working and home directories; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(FileName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults always decode.
	_ = viperCfg.Unmarshal(&config)

	return &config
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("parse.max_input_size", DefaultMaxInputSize)
	viperCfg.SetDefault("parse.excerpt_width", DefaultExcerptWidth)
	viperCfg.SetDefault("parse.start", "")

	viperCfg.SetDefault("actions.mode", DefaultActionsMode)

	viperCfg.SetDefault("cache.max_entries", DefaultCacheMaxEntries)
	viperCfg.SetDefault("cache.max_size", DefaultCacheMaxSize)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("telemetry.environment", DefaultEnvironment)
}

// Validate checks every section and joins the faults found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level))
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format))
	}

	if _, err := c.Parse.MaxInputBytes(); err != nil {
		errs = append(errs, fmt.Errorf("parse.max_input_size: %w", err))
	}

	if c.Parse.ExcerptWidth <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidExcerptWidth, c.Parse.ExcerptWidth))
	}

	if !slices.Contains([]string{ActionsRegistry, ActionsExpr, ActionsChain, ActionsNone}, c.Actions.Mode) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidActionsMode, c.Actions.Mode))
	}

	if c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidCacheEntries, c.Cache.MaxEntries))
	}

	if _, err := c.Cache.MaxSizeBytes(); err != nil {
		errs = append(errs, fmt.Errorf("cache.max_size: %w", err))
	}

	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port))
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio))
	}

	return errors.Join(errs...)
}

func parseSize(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}

	if n > 1<<62 {
		return 0, fmt.Errorf("%w: %s is too large", ErrInvalidSize, s)
	}

	return int64(n), nil
}
