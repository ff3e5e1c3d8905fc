// Package telemetry sets up the OpenTelemetry meter provider.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

const defaultExportInterval = 30 * time.Second

type Config struct {
	ServiceName    string
	ServiceVersion string
	DeploymentEnv  string
	// CollectorEndpoint is the OTLP gRPC endpoint. Empty disables export.
	CollectorEndpoint string
	ExportInterval    time.Duration
}

// Telemetry owns the meter provider installed as the global provider.
type Telemetry struct {
	MeterProvider *sdkmetric.MeterProvider
}

func (c Config) resource() *sdkresource.Resource {
	return sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(c.ServiceVersion),
		semconv.DeploymentEnvironment(c.DeploymentEnv),
	)
}

// Setup builds the meter provider and installs it globally. Without a
// collector endpoint the provider keeps instruments in process only.
func Setup(ctx context.Context, cfg Config, log *zap.Logger) (*Telemetry, error) {
	if cfg.CollectorEndpoint == "" {
		log.Warn("telemetry export disabled")
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(cfg.resource()))
		otel.SetMeterProvider(mp)
		return &Telemetry{MeterProvider: mp}, nil
	}

	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("can't initialize metric exporter: %w", err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(cfg.resource()),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp)

	log.Info("telemetry export enabled",
		zap.String("endpoint", cfg.CollectorEndpoint),
		zap.Duration("interval", interval))
	return &Telemetry{MeterProvider: mp}, nil
}

// Shutdown flushes pending metrics and stops the exporter.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.MeterProvider.Shutdown(ctx)
}
