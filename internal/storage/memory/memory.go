// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/pkg/core"
)

// ErrNoLineup is returned by Load and Save before OpenLineup.
var ErrNoLineup = errors.New("memory storage: no lineup opened")

var now = time.Now

// Backend keeps snapshots in memory and exports them to JSON on Close.
type Backend struct {
	cfg      config.MemoryConfig
	lineup   *core.Lineup
	openedAt time.Time

	snapshots map[string]*core.Snapshot

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:       cfg,
		snapshots: make(map[string]*core.Snapshot),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the open lineup, if any, when an output directory is set.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lineup == nil || b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// OpenLineup starts a new lineup, dropping snapshots of the previous one.
func (b *Backend) OpenLineup(l *core.Lineup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := *l
	b.lineup = &cp
	b.openedAt = now()
	b.snapshots = make(map[string]*core.Snapshot)
	return nil
}

// Load returns a copy of the snapshot under key; a miss is (nil, nil).
func (b *Backend) Load(key string) (*core.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.lineup == nil {
		return nil, ErrNoLineup
	}
	return b.snapshots[key].Clone(), nil
}

// Save stores a copy of snap under key.
func (b *Backend) Save(key string, snap *core.Snapshot) error {
	if _, err := core.ParseKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lineup == nil {
		return ErrNoLineup
	}
	b.snapshots[key] = snap.Clone()
	return nil
}

// Len reports how many snapshots are held.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.snapshots)
}

// ExportedFilePath returns the path of the last export, or "" if none.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// ExportMetadata describes the last export for upload.
func (b *Backend) ExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lineup == nil {
		return core.UploadMetadata{}
	}
	return core.UploadMetadata{
		LineupID:   b.lineup.ID,
		LineupName: b.lineup.Name,
		Snapshots:  len(b.snapshots),
		Tag:        b.cfg.Tag,
	}
}
