// Package observability sets up OpenTelemetry tracing.
package observability

import (
	"context"
	"strings"
	"time"

	"github.com/jumptop/ITOP/config"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// InitOTel installs the global tracer provider when OTEL_ENABLED is set and flushes it
// on shutdown. Without it the global no-op provider stays in place.
func InitOTel(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.Otel.Enabled {
		log.Info().Msg("OpenTelemetry disabled")
		return nil
	}
	ctx := context.Background()

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.Otel.ServiceName),
	))
	if err != nil {
		log.Warn().Err(err).Msg("otel resource init failed (continuing)")
	}

	exporter, err := buildTraceExporter(ctx, cfg.Otel.Endpoint)
	if err != nil {
		log.Warn().Err(err).Msg("otel exporter init failed (continuing without export)")
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Otel.SampleRatio))),
		sdktrace.WithResource(res),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
	log.Info().Str("service", cfg.Otel.ServiceName).Str("endpoint", cfg.Otel.Endpoint).Msg("otel tracing initialized")
	return nil
}

func buildTraceExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		log.Warn().Msg("otel using stdout exporter (no OTLP endpoint configured)")
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if strings.Contains(endpoint, "://") {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	}
	return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint))
}
