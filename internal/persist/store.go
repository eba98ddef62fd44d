// Package persist keys rotation snapshots by (rotation, phase, mode), applies
// substitution propagation across a rotation's phases and writes committed
// snapshots to the storage collaborator in the background.
package persist

import (
	"log/slog"
	"sync"

	"github.com/courtplan/courtplan/internal/zone"
	"github.com/courtplan/courtplan/pkg/core"
)

// Loader is the read side of the storage collaborator. A nil snapshot with a
// nil error means the key was never saved.
type Loader interface {
	Load(key string) (*core.Snapshot, error)
}

// Store holds the snapshots of one lineup in memory. It is the session's
// source of truth; storage is only consulted for keys not yet visited.
type Store struct {
	mu        sync.RWMutex
	lineup    *core.Lineup
	loader    Loader
	logger    *slog.Logger
	snapshots map[string]*core.Snapshot
}

// NewStore creates a store for lineup. loader may be nil.
func NewStore(lineup *core.Lineup, loader Loader, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		lineup:    lineup,
		loader:    loader,
		logger:    logger,
		snapshots: make(map[string]*core.Snapshot),
	}
}

// Lineup returns the lineup the store belongs to.
func (s *Store) Lineup() *core.Lineup {
	return s.lineup
}

// Defaults synthesises the snapshot of an unvisited key: active players in
// the rotation's default layout, no paths.
func Defaults(k core.Key, active []string) *core.Snapshot {
	return &core.Snapshot{
		Positions:     zone.DefaultLayout(active, k.Rotation),
		ActivePlayers: append([]string(nil), active...),
	}
}

// Get returns a copy of the snapshot for k, loading it from storage or
// synthesising defaults from the lineup's starting six on first visit.
func (s *Store) Get(k core.Key) *core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(k, s.lineup.StartingSix).Clone()
}

// Peek returns a copy of the snapshot for k without loading or synthesising.
func (s *Store) Peek(k core.Key) (*core.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[k.String()]
	if !ok {
		return nil, false
	}
	return snap.Clone(), true
}

func (s *Store) getLocked(k core.Key, fallback []string) *core.Snapshot {
	key := k.String()
	if snap, ok := s.snapshots[key]; ok {
		return snap
	}
	if s.loader != nil {
		snap, err := s.loader.Load(key)
		switch {
		case err != nil:
			s.logger.Error("failed to load snapshot, using defaults", "key", key, "error", err)
		case snap != nil && len(snap.ActivePlayers) == core.Rotations:
			if n := dropMalformed(snap); n > 0 {
				s.logger.Warn("dropped malformed paths from stored snapshot", "key", key, "dropped", n)
			}
			s.snapshots[key] = snap
			return snap
		case snap != nil:
			s.logger.Warn("stored snapshot has no full lineup, using defaults", "key", key, "active", len(snap.ActivePlayers))
		}
	}
	snap := Defaults(k, fallback)
	s.snapshots[key] = snap
	return snap
}

func dropMalformed(snap *core.Snapshot) int {
	kept := snap.Paths[:0:0]
	for _, p := range snap.Paths {
		if p.Wellformed() {
			kept = append(kept, p)
		}
	}
	dropped := len(snap.Paths) - len(kept)
	if dropped > 0 {
		snap.Paths = kept
	}
	return dropped
}

// Commit stores snap as the state of k and returns its new revision.
func (s *Store) Commit(k core.Key, snap *core.Snapshot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := k.String()
	var rev uint64 = 1
	if prev, ok := s.snapshots[key]; ok {
		rev = prev.Revision + 1
	}
	stored := snap.Clone()
	stored.Revision = rev
	s.snapshots[key] = stored
	return rev
}

// PropagateSubstitution applies the slot substitution oldID -> newID made in
// k to every other phase of the same rotation, in both modes. Phases that
// were never visited are first synthesised from active, the active list of k
// before the swap. Snapshots whose slot no longer holds oldID are left
// alone. It returns the keys that changed.
func (s *Store) PropagateSubstitution(k core.Key, slot int, oldID, newID string, active []string) []core.Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []core.Key
	for _, other := range core.RotationKeys(k.Rotation) {
		if other == k {
			continue
		}
		snap := s.getLocked(other, active)
		next := *snap
		if !next.Substitute(slot, oldID, newID) {
			continue
		}
		next.Revision = snap.Revision + 1
		s.snapshots[other.String()] = &next
		changed = append(changed, other)
	}
	return changed
}
