// Package postgres implements the storage backend on PostgreSQL through gorm.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/internal/database"
	gormstorage "github.com/courtplan/courtplan/internal/storage/gorm"
	"github.com/courtplan/courtplan/pkg/core"

	"gorm.io/gorm"
)

// maxOpenConns caps the pool; the planner issues one write at a time.
const maxOpenConns = 10

// Dependencies holds what the backend needs. When DB is nil, Init connects
// using Config.
type Dependencies struct {
	DB     *gorm.DB
	Config config.DBConfig
	Logger *slog.Logger
}

// Backend stores lineups and snapshots in PostgreSQL.
type Backend struct {
	deps  Dependencies
	inner *gormstorage.Backend
}

// New creates a new PostgreSQL storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

// Init connects if needed, validates the connection and migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		db, err := database.GetPostgresDB(b.deps.Config)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to access sql interface: %w", err)
		}
		if err = sqlDB.Ping(); err != nil {
			return fmt.Errorf("failed to validate connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		b.deps.DB = db
	}

	b.inner = gormstorage.New(b.deps.DB, b.deps.Logger.With("backend", "postgres"))
	if err := b.inner.Init(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.deps.Logger.Info("Database setup complete", "dialect", b.deps.DB.Name())
	return nil
}

// Close closes the connection pool. It is a no-op before Init.
func (b *Backend) Close() error {
	if b.inner == nil {
		return nil
	}
	err := b.inner.Close()
	b.inner = nil
	return err
}

func (b *Backend) ready() (*gormstorage.Backend, error) {
	if b.inner == nil {
		return nil, fmt.Errorf("postgres: backend not initialized")
	}
	return b.inner, nil
}

// OpenLineup upserts the lineup and scopes later calls to it.
func (b *Backend) OpenLineup(l *core.Lineup) error {
	inner, err := b.ready()
	if err != nil {
		return err
	}
	return inner.OpenLineup(l)
}

// Load reads a snapshot; a miss is (nil, nil).
func (b *Backend) Load(key string) (*core.Snapshot, error) {
	inner, err := b.ready()
	if err != nil {
		return nil, err
	}
	return inner.Load(key)
}

// Save upserts a snapshot.
func (b *Backend) Save(key string, snap *core.Snapshot) error {
	inner, err := b.ready()
	if err != nil {
		return err
	}
	return inner.Save(key, snap)
}
