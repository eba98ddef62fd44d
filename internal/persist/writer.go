package persist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/courtplan/courtplan/internal/queue"
	"github.com/courtplan/courtplan/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultInterval is the quiet period before pending snapshots are written.
const DefaultInterval = 750 * time.Millisecond

// Saver is the write side of the storage collaborator.
type Saver interface {
	Save(key string, snap *core.Snapshot) error
}

// Writer saves committed snapshots once input has been quiet for the
// configured interval. Interactive code only enqueues keys and never waits
// on storage. A snapshot is written only when its revision advanced past the
// last revision written for that key.
type Writer struct {
	store    *Store
	saver    Saver
	interval time.Duration
	logger   *slog.Logger

	pending     *queue.Queue[core.Key]
	lastEnqueue atomic.Int64

	flushMu sync.Mutex
	saved   map[string]uint64

	writes metric.Int64Counter

	startOnce sync.Once
	started   atomic.Bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	done      chan struct{}
}

// NewWriter creates a writer. Call Start to run the background loop.
func NewWriter(store *Store, saver Saver, interval time.Duration, logger *slog.Logger) (*Writer, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	writes, err := meter().Int64Counter(
		"persist.writes",
		metric.WithDescription("Snapshot writes to storage by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating writes counter: %w", err)
	}
	return &Writer{
		store:    store,
		saver:    saver,
		interval: interval,
		logger:   logger,
		pending:  queue.New[core.Key](),
		saved:    make(map[string]uint64),
		writes:   writes,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Enqueue marks keys for writing.
func (w *Writer) Enqueue(keys ...core.Key) {
	if len(keys) == 0 {
		return
	}
	w.pending.Push(keys...)
	w.lastEnqueue.Store(time.Now().UnixNano())
}

// Pending returns the number of queued keys, duplicates included.
func (w *Writer) Pending() int {
	return w.pending.Len()
}

// Start runs the background write loop until Stop.
func (w *Writer) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.loop()
	})
}

// Stop ends the background loop and writes whatever is still pending. It is
// safe to call without Start.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		if w.started.Load() {
			<-w.done
		}
		w.Flush()
	})
}

func (w *Writer) loop() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			if w.pending.Empty() {
				continue
			}
			if time.Since(time.Unix(0, w.lastEnqueue.Load())) < w.interval {
				continue
			}
			w.Flush()
		}
	}
}

// Flush writes every pending key whose revision advanced and returns the
// number of snapshots written. Failures are logged and not retried; the
// next commit of the key enqueues it again.
func (w *Writer) Flush() int {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	written := 0
	for _, k := range w.pending.DrainUnique() {
		snap, ok := w.store.Peek(k)
		if !ok {
			continue
		}
		key := k.String()
		if snap.Revision <= w.saved[key] {
			continue
		}

		if err := w.saver.Save(key, snap); err != nil {
			w.logger.Error("failed to save snapshot", "key", key, "revision", snap.Revision, "error", err)
			w.writes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", "error")))
			continue
		}
		w.saved[key] = snap.Revision
		written++
		w.writes.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", "ok")))
	}
	if written > 0 {
		w.logger.Debug("snapshots written", "count", written)
	}
	return written
}
