package persist

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/courtplan/courtplan/internal/persist"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
