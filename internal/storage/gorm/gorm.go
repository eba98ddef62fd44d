// Package gormstorage implements the storage backend on any gorm dialect.
// Snapshots are upserted by (lineup, key), one row per snapshot.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/courtplan/courtplan/internal/database"
	"github.com/courtplan/courtplan/internal/model"
	"github.com/courtplan/courtplan/internal/model/convert"
	"github.com/courtplan/courtplan/pkg/core"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoLineup is returned by Load and Save before OpenLineup.
var ErrNoLineup = errors.New("gorm storage: no lineup opened")

// Backend stores lineups and snapshots through gorm.
type Backend struct {
	db     *gorm.DB
	logger *slog.Logger

	mu       sync.RWMutex
	lineupID string
}

// New wraps an open connection. Init migrates the schema.
func New(db *gorm.DB, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: db, logger: logger}
}

// DB exposes the connection to embedding backends.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return errors.New("gorm storage: no database connection")
	}
	return database.Setup(b.db)
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// OpenLineup upserts the lineup row and scopes later calls to it. A lineup
// without an id gets a fresh UUID assigned in place.
func (b *Backend) OpenLineup(l *core.Lineup) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	row, err := convert.CoreToLineup(*l)
	if err != nil {
		return err
	}
	err = b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "roster", "starting_six", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save lineup %s: %w", l.ID, err)
	}

	b.mu.Lock()
	b.lineupID = l.ID
	b.mu.Unlock()
	b.logger.Debug("Lineup opened", "lineup", l.ID, "name", l.Name)
	return nil
}

func (b *Backend) currentLineup() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lineupID == "" {
		return "", ErrNoLineup
	}
	return b.lineupID, nil
}

// Load reads the snapshot stored under key; a miss is (nil, nil).
func (b *Backend) Load(key string) (*core.Snapshot, error) {
	lineupID, err := b.currentLineup()
	if err != nil {
		return nil, err
	}

	var row model.Snapshot
	err = b.db.Where("lineup_id = ? AND snapshot_key = ?", lineupID, key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return convert.SnapshotToCore(row)
}

// Save upserts the snapshot stored under key.
func (b *Backend) Save(key string, snap *core.Snapshot) error {
	lineupID, err := b.currentLineup()
	if err != nil {
		return err
	}
	k, err := core.ParseKey(key)
	if err != nil {
		return err
	}

	row, err := convert.CoreToSnapshot(lineupID, k, snap)
	if err != nil {
		return err
	}
	err = b.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "lineup_id"}, {Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"positions", "paths", "active_players", "notes", "revision", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}
