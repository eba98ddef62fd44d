// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/courtplan/courtplan/pkg/core"
)

// LineupExport is the root JSON structure of an export file.
type LineupExport struct {
	Lineup    core.Lineup      `json:"lineup"`
	Snapshots []SnapshotExport `json:"snapshots"`
}

// SnapshotExport is one stored snapshot with its key.
type SnapshotExport struct {
	Key           string         `json:"key"`
	Positions     core.Positions `json:"positions"`
	Paths         []core.Path    `json:"paths"`
	ActivePlayers []string       `json:"activePlayers"`
	Notes         string         `json:"notes"`
	Revision      uint64         `json:"revision"`
}

var fileNameReplacer = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_")

// exportJSON writes the lineup data to a JSON file, gzipped when configured.
// Callers hold b.mu.
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	name := fileNameReplacer.Replace(b.lineup.Name)
	if name == "" {
		name = b.lineup.ID
	}
	timestamp := b.openedAt.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", name, timestamp)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() LineupExport {
	export := LineupExport{
		Lineup:    *b.lineup,
		Snapshots: make([]SnapshotExport, 0, len(b.snapshots)),
	}

	keys := make([]string, 0, len(b.snapshots))
	for k := range b.snapshots {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s := b.snapshots[k]
		export.Snapshots = append(export.Snapshots, SnapshotExport{
			Key:           k,
			Positions:     s.Positions,
			Paths:         s.Paths,
			ActivePlayers: s.ActivePlayers,
			Notes:         s.Notes,
			Revision:      s.Revision,
		})
	}
	return export
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	if err := json.NewEncoder(gw).Encode(v); err != nil {
		gw.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}
