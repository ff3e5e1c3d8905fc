package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "bankcore.transfer"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordTransferVolume(decimal.Decimal)          {}

// OTelMetrics records transfer metrics as OpenTelemetry instruments.
type OTelMetrics struct {
	duration metric.Float64Histogram
	results  metric.Int64Counter
	volume   metric.Float64Counter
}

// NewOTelMetrics creates the instruments on provider, or on the global
// provider when provider is nil.
func NewOTelMetrics(provider metric.MeterProvider) (*OTelMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	var (
		m   OTelMetrics
		err error
	)

	m.duration, err = meter.Float64Histogram(
		"bankcore.transfer.operation.duration",
		metric.WithDescription("Time taken by transfer service operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bankcore.transfer.operation.duration histogram: %w", err)
	}

	m.results, err = meter.Int64Counter(
		"bankcore.transfer.operation.results",
		metric.WithDescription("Transfer service operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bankcore.transfer.operation.results counter: %w", err)
	}

	m.volume, err = meter.Float64Counter(
		"bankcore.transfer.volume",
		metric.WithDescription("Amount moved by completed transfers"),
		metric.WithUnit("{currency}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create bankcore.transfer.volume counter: %w", err)
	}

	return &m, nil
}

func (m *OTelMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.duration.Record(context.Background(), duration.Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
}

func (m *OTelMetrics) RecordOperationResult(operation, result string) {
	m.results.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("operation", operation), attribute.String("result", result)))
}

func (m *OTelMetrics) RecordTransferVolume(amount decimal.Decimal) {
	m.volume.Add(context.Background(), amount.InexactFloat64())
}
