package config

import "time"

// Action evaluation modes.
const (
	ActionsRegistry = "registry"
	ActionsExpr     = "expr"
	ActionsChain    = "chain"
	ActionsNone     = "none"
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Parse defaults.
const (
	DefaultMaxInputSize = "16MiB"
	DefaultExcerptWidth = 80
)

// Action defaults.
const (
	DefaultActionsMode = ActionsChain
)

// Cache defaults.
const (
	DefaultCacheMaxEntries = 128
	DefaultCacheMaxSize    = "64MiB"
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
	DefaultEnvironment = "development"
)
