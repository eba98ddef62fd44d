// Package streaming defines the wire protocol used to mirror a planning
// session to a remote sync server over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/courtplan/courtplan/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeOpenLineup   = "open_lineup"
	TypeCloseLineup  = "close_lineup"
	TypeSaveSnapshot = "save_snapshot"
	TypeAck          = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// OpenLineupPayload announces the lineup subsequent snapshots belong to.
type OpenLineupPayload struct {
	Lineup *core.Lineup `json:"lineup"`
}

// SaveSnapshotPayload carries one committed snapshot.
type SaveSnapshotPayload struct {
	LineupID string         `json:"lineupId"`
	Key      string         `json:"key"`
	Snapshot *core.Snapshot `json:"snapshot"`
}
