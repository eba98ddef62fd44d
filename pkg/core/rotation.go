// pkg/core/rotation.go
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Rotations is the number of lineup rotations (and court zones).
const Rotations = 6

// ErrInvalidKey is returned when a snapshot key cannot be parsed or names an
// unknown rotation, phase or mode.
var ErrInvalidKey = errors.New("invalid snapshot key")

// Mode doubles the phase space.
type Mode string

const (
	ModeOffense Mode = "offense"
	ModeDefense Mode = "defense"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeOffense, ModeDefense}

// Phase is a tactical sub-state of a rotation with its own snapshot.
type Phase struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Receive bool   `json:"receive"` // neighbour constraints apply
}

var phases = map[Mode][]Phase{
	ModeOffense: {
		{ID: "receive1", Label: "Serve Receive", Receive: true},
		{ID: "receive2", Label: "Receive - Setter Release", Receive: true},
		{ID: "attack", Label: "First Attack"},
		{ID: "transition", Label: "Transition"},
	},
	ModeDefense: {
		{ID: "serve", Label: "Serve"},
		{ID: "base", Label: "Base Defense"},
		{ID: "block", Label: "Block & Cover"},
	},
}

// PhasesFor returns the phase list of a mode.
func PhasesFor(m Mode) []Phase {
	return phases[m]
}

// LookupPhase finds a phase of mode m by id.
func LookupPhase(m Mode, id string) (Phase, bool) {
	for _, p := range phases[m] {
		if p.ID == id {
			return p, true
		}
	}
	return Phase{}, false
}

// Key identifies one snapshot: (rotation, phase, mode).
type Key struct {
	Rotation int    `json:"rotation"`
	Phase    string `json:"phase"`
	Mode     Mode   `json:"mode"`
}

// String is the storage key, a deterministic join of the three parts.
func (k Key) String() string {
	return fmt.Sprintf("%d_%s_%s", k.Rotation, k.Phase, k.Mode)
}

// Validate checks the key against the rotation range and phase catalogue.
func (k Key) Validate() error {
	if k.Rotation < 1 || k.Rotation > Rotations {
		return fmt.Errorf("%w: rotation %d out of range", ErrInvalidKey, k.Rotation)
	}
	if _, ok := LookupPhase(k.Mode, k.Phase); !ok {
		return fmt.Errorf("%w: phase %q not in mode %q", ErrInvalidKey, k.Phase, k.Mode)
	}
	return nil
}

// Receive reports whether the key's phase enforces neighbour constraints.
func (k Key) Receive() bool {
	p, ok := LookupPhase(k.Mode, k.Phase)
	return ok && p.Receive
}

// ParseKey parses the output of Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, "_", 3)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	rot, err := strconv.Atoi(parts[0])
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	k := Key{Rotation: rot, Phase: parts[1], Mode: Mode(parts[2])}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// RotationKeys returns every snapshot key sharing the rotation number, across
// both modes.
func RotationKeys(rotation int) []Key {
	var keys []Key
	for _, m := range Modes {
		for _, p := range phases[m] {
			keys = append(keys, Key{Rotation: rotation, Phase: p.ID, Mode: m})
		}
	}
	return keys
}

// Snapshot is the saved state of one (rotation, phase, mode).
type Snapshot struct {
	Positions     Positions `json:"positions"`
	Paths         []Path    `json:"paths"`
	ActivePlayers []string  `json:"activePlayers"`
	Notes         string    `json:"notes"`

	// Revision increases on every committed change.
	Revision uint64 `json:"revision"`
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Positions:     s.Positions.Clone(),
		ActivePlayers: append([]string(nil), s.ActivePlayers...),
		Notes:         s.Notes,
		Revision:      s.Revision,
	}
	if s.Paths != nil {
		out.Paths = make([]Path, len(s.Paths))
		for i, p := range s.Paths {
			out.Paths[i] = p.Clone()
		}
	}
	return out
}

// SlotOf returns the lineup slot of a player, or -1 when benched.
func (s *Snapshot) SlotOf(playerID string) int {
	for i, id := range s.ActivePlayers {
		if id == playerID {
			return i
		}
	}
	return -1
}

// Lineup is a named roster with its starting six. Snapshots live in the
// persistence layer keyed by Key.
type Lineup struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Roster      []Player `json:"roster"`
	StartingSix []string `json:"startingSix"`
}

// Player looks up a roster entry by id.
func (l *Lineup) Player(id string) (Player, bool) {
	for _, p := range l.Roster {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// Bench returns roster ids that are not in active, in roster order.
func (l *Lineup) Bench(active []string) []string {
	on := make(map[string]bool, len(active))
	for _, id := range active {
		on[id] = true
	}
	var bench []string
	for _, p := range l.Roster {
		if !on[p.ID] {
			bench = append(bench, p.ID)
		}
	}
	return bench
}

// Validate checks that the starting six are distinct roster members.
func (l *Lineup) Validate() error {
	if len(l.StartingSix) != Rotations {
		return fmt.Errorf("lineup %q: starting six has %d players", l.Name, len(l.StartingSix))
	}
	seen := make(map[string]bool, Rotations)
	for _, id := range l.StartingSix {
		if seen[id] {
			return fmt.Errorf("lineup %q: player %q listed twice", l.Name, id)
		}
		seen[id] = true
		if _, ok := l.Player(id); !ok {
			return fmt.Errorf("lineup %q: player %q not on roster", l.Name, id)
		}
	}
	return nil
}

// Substitute puts newID into slot in place of oldID. The incoming player takes
// over the outgoing player's court position and anchored paths. The receiver's
// containers are replaced, never modified, so earlier copies stay intact.
// It reports false when slot does not hold oldID or newID is already active.
func (s *Snapshot) Substitute(slot int, oldID, newID string) bool {
	if slot < 0 || slot >= len(s.ActivePlayers) || s.ActivePlayers[slot] != oldID {
		return false
	}
	if oldID == newID || s.SlotOf(newID) >= 0 {
		return false
	}

	active := append([]string(nil), s.ActivePlayers...)
	active[slot] = newID
	s.ActivePlayers = active

	positions := s.Positions.Clone()
	if positions == nil {
		positions = make(Positions)
	}
	if pos, ok := positions[oldID]; ok {
		positions[newID] = pos
		delete(positions, oldID)
	}
	s.Positions = positions

	var paths []Path
	for i, p := range s.Paths {
		if p.Anchor != oldID {
			continue
		}
		if paths == nil {
			paths = append([]Path(nil), s.Paths...)
		}
		paths[i].Anchor = newID
	}
	if paths != nil {
		s.Paths = paths
	}
	return true
}
