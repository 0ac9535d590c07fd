package metrics

import (
	"context"
	"log"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	ChatTurnsTotal          metric.Int64Counter
	GenerationsTotal        metric.Int64Counter
	GenerationFailuresTotal metric.Int64Counter
	EnrichmentSkippedTotal  metric.Int64Counter
	LLMLatencyMs            metric.Float64Histogram
	DBQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("arya")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.ChatTurnsTotal, err = meter.Int64Counter(
			"chat_turns_total",
			metric.WithDescription("Total number of chat turns processed"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turns_total: %v", err)
		}

		m.GenerationsTotal, err = meter.Int64Counter(
			"itinerary_generations_total",
			metric.WithDescription("Total number of itineraries generated"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generations_total: %v", err)
		}

		m.GenerationFailuresTotal, err = meter.Int64Counter(
			"itinerary_generation_failures_total",
			metric.WithDescription("Total number of failed itinerary generations"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_failures_total: %v", err)
		}

		m.EnrichmentSkippedTotal, err = meter.Int64Counter(
			"itinerary_enrichment_skipped_total",
			metric.WithDescription("Itineraries shipped without real place data"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_enrichment_skipped_total: %v", err)
		}

		m.LLMLatencyMs, err = meter.Float64Histogram(
			"llm_call_latency_ms",
			metric.WithDescription("Latency of LLM calls in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_call_latency_ms: %v", err)
		}

		m.DBQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics has not run (tests).
func Get() *AppMetrics {
	return appMetrics
}

// The Record helpers below no-op when metrics are not initialized, so domain
// code can call them unconditionally.

func RecordChatTurn(ctx context.Context) {
	if m := Get(); m != nil {
		m.ChatTurnsTotal.Add(ctx, 1)
	}
}

func RecordGeneration(ctx context.Context) {
	if m := Get(); m != nil {
		m.GenerationsTotal.Add(ctx, 1)
	}
}

func RecordGenerationFailure(ctx context.Context) {
	if m := Get(); m != nil {
		m.GenerationFailuresTotal.Add(ctx, 1)
	}
}

func RecordEnrichmentSkipped(ctx context.Context) {
	if m := Get(); m != nil {
		m.EnrichmentSkippedTotal.Add(ctx, 1)
	}
}

func RecordHTTPRequest(ctx context.Context, method, path string, status int, durationSeconds float64) {
	if m := Get(); m != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.String("status", strconv.Itoa(status)),
			))
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			))
	}
}

func RecordDBQueryError(ctx context.Context, table string) {
	if m := Get(); m != nil {
		m.DBQueryErrorsTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("table", table)))
	}
}

func RecordLLMLatency(ctx context.Context, intent string, latencyMs int64) {
	if m := Get(); m != nil {
		m.LLMLatencyMs.Record(ctx, float64(latencyMs),
			metric.WithAttributes(attribute.String("intent", intent)))
	}
}
