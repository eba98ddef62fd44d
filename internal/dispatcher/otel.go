package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/courtplan/courtplan/internal/dispatcher"

type metrics struct {
	events  metric.Int64Counter
	dropped metric.Int64Counter
}

// newMetrics registers the dispatcher instruments; depths feeds the queue
// size gauge on each collection.
func newMetrics(depths func() map[string]int) (*metrics, error) {
	m := otel.Meter(instrumentationName)

	gauge, err := m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Events waiting in a buffered command queue"))
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for cmd, n := range depths() {
			o.ObserveInt64(gauge, int64(n), metric.WithAttributes(attribute.String("command", cmd)))
		}
		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	events, err := m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Events handled, by command"))
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}
	dropped, err := m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Events dropped because a queue was full"))
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	return &metrics{events: events, dropped: dropped}, nil
}

func (m *metrics) processed(command string, buffered bool) {
	m.events.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.Bool("buffered", buffered),
	))
}

func (m *metrics) drop(command string) {
	m.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}
