package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGELFHandler returns a JSON handler shipping each record to a Graylog
// input over UDP. The caller closes the returned writer on shutdown.
func NewGELFHandler(address, level string) (slog.Handler, *gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, nil, fmt.Errorf("dial graylog %s: %w", address, err)
	}
	w.Facility = "courtplan"
	return slog.NewJSONHandler(w, handlerOptions(level)), w, nil
}
