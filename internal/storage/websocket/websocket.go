// Package websocket mirrors committed snapshots to a remote sync server.
// The server is write-only from the planner's point of view: Load always
// reports a miss, so unvisited keys fall back to defaults.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/pkg/core"
	"github.com/courtplan/courtplan/pkg/streaming"
)

// ErrNoLineup is returned by Save before OpenLineup succeeded.
var ErrNoLineup = errors.New("websocket: no lineup opened")

// Backend streams snapshots over WebSocket.
type Backend struct {
	conn *connection
	cfg  config.WebSocketConfig

	mu       sync.RWMutex
	lineupID string
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger.With("backend", "websocket")),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close tells the server the session ended and disconnects.
func (b *Backend) Close() error {
	b.mu.Lock()
	open := b.lineupID != ""
	b.lineupID = ""
	b.mu.Unlock()

	var err error
	if open {
		if data, merr := marshalEnvelope(streaming.TypeCloseLineup, nil); merr == nil {
			err = b.conn.sendAndWait(data, streaming.TypeCloseLineup, ackTimeout)
		}
	}
	return errors.Join(err, b.conn.close())
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// OpenLineup announces the lineup and waits for the server ack.
func (b *Backend) OpenLineup(l *core.Lineup) error {
	data, err := marshalEnvelope(streaming.TypeOpenLineup, streaming.OpenLineupPayload{Lineup: l})
	if err != nil {
		return err
	}

	b.conn.setReplay(data)

	if err := b.conn.sendAndWait(data, streaming.TypeOpenLineup, ackTimeout); err != nil {
		return err
	}
	b.mu.Lock()
	b.lineupID = l.ID
	b.mu.Unlock()
	return nil
}

// Load never finds anything; the sync server is not read back.
func (b *Backend) Load(string) (*core.Snapshot, error) {
	return nil, nil
}

// Save pushes the snapshot to the write loop (fire-and-forget).
func (b *Backend) Save(key string, snap *core.Snapshot) error {
	b.mu.RLock()
	lineupID := b.lineupID
	b.mu.RUnlock()
	if lineupID == "" {
		return ErrNoLineup
	}

	data, err := marshalEnvelope(streaming.TypeSaveSnapshot, streaming.SaveSnapshotPayload{
		LineupID: lineupID,
		Key:      key,
		Snapshot: snap,
	})
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}
