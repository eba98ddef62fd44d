// internal/storage/storage.go
package storage

import "github.com/courtplan/courtplan/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Keys are core.Key strings.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// OpenLineup scopes later Load and Save calls to l. It may assign l.ID.
	OpenLineup(l *core.Lineup) error

	// Load returns the snapshot under key, or (nil, nil) when none is stored.
	Load(key string) (*core.Snapshot, error)
	Save(key string, snap *core.Snapshot) error
}

// Exportable is an optional interface for backends that write an export
// file when closed, suitable for upload to the share server.
type Exportable interface {
	ExportedFilePath() string
	ExportMetadata() core.UploadMetadata
}
