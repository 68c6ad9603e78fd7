package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusReader returns an OTel metric reader backed by a private
// Prometheus registry, and the scrape handler for that registry.
func NewPrometheusReader() (sdkmetric.Reader, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return exporter, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

// PrometheusHandler creates a MeterProvider whose instruments are served by
// the returned /metrics handler.
func PrometheusHandler() (http.Handler, *sdkmetric.MeterProvider, error) {
	reader, handler, err := NewPrometheusReader()
	if err != nil {
		return nil, nil, err
	}

	return handler, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), nil
}
