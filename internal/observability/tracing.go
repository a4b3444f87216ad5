// Package observability настраивает OpenTelemetry-трассировку шлюза.
package observability

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracingConfig: параметры экспорта трейсов.
type TracingConfig struct {
	Enabled        bool
	Endpoint       string
	Insecure       bool
	SamplingRatio  float64
	ServiceName    string
	ServiceVersion string
}

// Tracing владеет TracerProvider и отвечает за его остановку.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.TracerProvider
}

// SetupTracing создаёт OTLP gRPC экспортер и регистрирует глобальный провайдер.
// При выключенной трассировке возвращается no-op провайдер.
func SetupTracing(ctx context.Context, cfg TracingConfig, logger *log.Entry) (*Tracing, error) {
	if logger == nil {
		logger = log.WithField("component", "tracing")
	}
	if !cfg.Enabled {
		logger.Info("tracing disabled, using no-op tracer provider")
		return &Tracing{tracer: noop.NewTracerProvider()}, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SamplingRatio))),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithFields(log.Fields{
		"endpoint":       cfg.Endpoint,
		"sampling_ratio": cfg.SamplingRatio,
		"service_name":   cfg.ServiceName,
	}).Info("tracing initialized")

	return &Tracing{provider: provider, tracer: provider}, nil
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(ratio)
	}
}

// TracerProvider возвращает провайдер для явной передачи в компоненты.
func (t *Tracing) TracerProvider() trace.TracerProvider {
	return t.tracer
}

// Shutdown сбрасывает буфер спанов и останавливает экспортер.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}
