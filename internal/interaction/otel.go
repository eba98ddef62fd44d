package interaction

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/courtplan/courtplan/internal/interaction"

type metrics struct {
	committed metric.Int64Counter
	rejected  metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)

	committed, err := m.Int64Counter(
		"interaction.gestures.committed",
		metric.WithDescription("Committed gestures by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating committed counter: %w", err)
	}

	rejected, err := m.Int64Counter(
		"interaction.substitutions.rejected",
		metric.WithDescription("Substitutions refused by role rules"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	return &metrics{committed: committed, rejected: rejected}, nil
}

func (m *metrics) commit(kind string) {
	m.committed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *metrics) reject() {
	m.rejected.Add(context.Background(), 1)
}
