package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/courtplan/courtplan/internal/dispatcher"
	"github.com/courtplan/courtplan/internal/interaction"
	"github.com/courtplan/courtplan/internal/util"
	"github.com/courtplan/courtplan/internal/worker"
)

type scriptStats struct {
	lines  int
	failed int
}

// reply is one JSON line written for a command that produced output.
type reply struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	Error   string `json:"error,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// runScript dispatches one command per line. Blank lines and lines starting
// with # are skipped. A failing command is reported and does not stop the run.
func runScript(in io.Reader, out io.Writer, d *dispatcher.Dispatcher, logger *slog.Logger) (scriptStats, error) {
	var stats scriptStats
	enc := json.NewEncoder(out)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stats.lines++

		fields := util.SplitArgs(line)
		e := dispatcher.Event{Command: fields[0], Args: fields[1:], Timestamp: time.Now()}
		result, err := d.Dispatch(e)

		r := reply{Line: n, Command: e.Command}
		switch v := result.(type) {
		case worker.FrameResult, worker.FlushResult:
			r.Result = v
		case interaction.Outcome:
			r.Notice = v.Notice
		}
		if err != nil {
			stats.failed++
			r.Error = err.Error()
			logger.Warn("Command failed", "line", n, "command", e.Command, "error", err)
		}
		if r.Error == "" && r.Notice == "" && r.Result == nil {
			continue
		}
		if err := enc.Encode(r); err != nil {
			return stats, fmt.Errorf("failed to write reply: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("failed to read script: %w", err)
	}
	return stats, nil
}
