package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/fd1az/funding-engine"

// EngineInstruments holds the engine's metric instruments. A zero-value
// provider (no SDK configured) yields no-op instruments, so recording
// is always safe.
type EngineInstruments struct {
	requestsTotal     metric.Int64Counter
	executionDuration metric.Float64Histogram
	profitTotal       metric.Float64Counter
	activeConnections metric.Int64UpDownCounter
	decodeErrors      metric.Int64Counter
}

// NewEngineInstruments creates the engine's instruments from the global
// meter provider.
func NewEngineInstruments() (*EngineInstruments, error) {
	meter := otel.Meter(meterName)

	requestsTotal, err := meter.Int64Counter(
		"engine.requests.total",
		metric.WithDescription("Arbitrage requests processed, by status"),
	)
	if err != nil {
		return nil, err
	}

	executionDuration, err := meter.Float64Histogram(
		"engine.execution.duration",
		metric.WithDescription("Wall-clock duration of successful executions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	profitTotal, err := meter.Float64Counter(
		"engine.profit.total",
		metric.WithDescription("Cumulative simulated profit in quote units"),
	)
	if err != nil {
		return nil, err
	}

	activeConnections, err := meter.Int64UpDownCounter(
		"engine.connections.active",
		metric.WithDescription("Currently open client connections"),
	)
	if err != nil {
		return nil, err
	}

	decodeErrors, err := meter.Int64Counter(
		"engine.decode.errors",
		metric.WithDescription("Inbound payloads that failed to decode"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineInstruments{
		requestsTotal:     requestsTotal,
		executionDuration: executionDuration,
		profitTotal:       profitTotal,
		activeConnections: activeConnections,
		decodeErrors:      decodeErrors,
	}, nil
}

// RecordRequest records one processed request with its outcome status.
func (m *EngineInstruments) RecordRequest(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordExecution records the duration and profit of a successful execution.
func (m *EngineInstruments) RecordExecution(ctx context.Context, elapsed time.Duration, profit float64) {
	if m == nil {
		return
	}
	m.executionDuration.Record(ctx, elapsed.Seconds())
	m.profitTotal.Add(ctx, profit)
}

// ConnOpened increments the active connection gauge.
func (m *EngineInstruments) ConnOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeConnections.Add(ctx, 1)
}

// ConnClosed decrements the active connection gauge.
func (m *EngineInstruments) ConnClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeConnections.Add(ctx, -1)
}

// RecordDecodeError counts one malformed inbound payload.
func (m *EngineInstruments) RecordDecodeError(ctx context.Context) {
	if m == nil {
		return
	}
	m.decodeErrors.Add(ctx, 1)
}
