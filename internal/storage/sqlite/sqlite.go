// Package sqlitestorage implements the storage backend on SQLite via the pure
// Go glebarez driver. It wraps the GORM backend via composition; the only
// SQLite-specific concerns are opening the database and, for in-memory
// databases, the periodic disk dump.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/internal/database"
	gormstorage "github.com/courtplan/courtplan/internal/storage/gorm"
	"gorm.io/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      *slog.Logger
	stopChan chan struct{}
	done     chan struct{}
	looping  bool
	stopOnce sync.Once
}

// New opens the database at cfg.Path, or an in-memory one when the path is empty.
func New(cfg config.SQLiteConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	return &Backend{
		Backend:  gormstorage.New(db, logger),
		db:       db,
		cfg:      cfg,
		log:      logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (b *Backend) dumps() bool {
	return b.cfg.Path == "" && b.cfg.DumpPath != ""
}

// Init migrates the schema and starts the dump goroutine for in-memory databases.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	if b.dumps() && b.cfg.DumpInterval > 0 {
		b.looping = true
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the database.
func (b *Backend) Close() error {
	var err error
	b.stopOnce.Do(func() {
		close(b.stopChan)
		if b.looping {
			<-b.done
		}
		if b.dumps() {
			b.dump()
		}
		err = b.Backend.Close()
	})
	return err
}

func (b *Backend) dump() {
	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.Error("Error dumping to disk", "path", b.cfg.DumpPath, "error", err)
		return
	}
	b.log.Debug("Dumped to disk", "path", b.cfg.DumpPath, "duration", time.Since(start))
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.dump()
		}
	}
}
