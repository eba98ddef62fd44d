// internal/storage/factory.go
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/internal/storage/memory"
	"github.com/courtplan/courtplan/internal/storage/postgres"
	sqlitestorage "github.com/courtplan/courtplan/internal/storage/sqlite"
	"github.com/courtplan/courtplan/internal/storage/websocket"
)

// ErrUnknownBackend is returned for an unrecognised storage type.
var ErrUnknownBackend = errors.New("unknown storage type")

// NewBackend creates a storage backend based on configuration. The backend
// is not yet initialised.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(postgres.Dependencies{Config: cfg.DB, Logger: logger}), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, logger)
	case "websocket":
		return websocket.New(cfg.WebSocket, logger), nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Type)
	}
}
