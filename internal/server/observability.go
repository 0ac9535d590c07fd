package server

import (
	"context"
	"fmt"

	"github.com/aryatravel/arya/internal/app/observability/metrics"
	"github.com/aryatravel/arya/internal/app/observability/tracer"
)

// InitObservability sets up OpenTelemetry tracing and Prometheus metrics.
// The returned shutdown function flushes and stops the providers.
func InitObservability(serviceName, metricsAddr string) (func(context.Context) error, error) {
	shutdown, err := tracer.InitOtelProviders(serviceName, metricsAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize otel providers: %w", err)
	}

	metrics.InitAppMetrics()

	return shutdown, nil
}
