package commands

import (
	"context"

	"github.com/Sumatoshi-tech/pegkit/internal/observability"
)

// telemetry owns the providers of a long-running mode.
type telemetry struct {
	observability.Providers
}

func initProviders(cfg observability.Config) (*telemetry, error) {
	providers, err := observability.Init(cfg)
	if err != nil {
		return nil, err
	}

	return &telemetry{Providers: providers}, nil
}

func (t *telemetry) close() {
	shutdownErr := t.Shutdown(context.Background())
	if shutdownErr != nil {
		t.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}
