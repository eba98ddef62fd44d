// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/courtplan/courtplan/internal/model"
	"github.com/courtplan/courtplan/pkg/core"
	"gorm.io/datatypes"
)

// toJSON marshals v for a JSON column; nil slices and maps become empty
// containers so the column never stores SQL NULL.
func toJSON(v any, empty string) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return datatypes.JSON(empty), nil
	}
	return datatypes.JSON(data), nil
}

// CoreToLineup converts a core.Lineup to a GORM model.Lineup.
func CoreToLineup(l core.Lineup) (model.Lineup, error) {
	roster, err := toJSON(l.Roster, "[]")
	if err != nil {
		return model.Lineup{}, fmt.Errorf("roster: %w", err)
	}
	six, err := toJSON(l.StartingSix, "[]")
	if err != nil {
		return model.Lineup{}, fmt.Errorf("starting six: %w", err)
	}
	return model.Lineup{
		ID:          l.ID,
		Name:        l.Name,
		Roster:      roster,
		StartingSix: six,
	}, nil
}

// CoreToSnapshot converts a snapshot stored under key to a GORM row.
func CoreToSnapshot(lineupID string, key core.Key, s *core.Snapshot) (model.Snapshot, error) {
	positions, err := toJSON(s.Positions, "{}")
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("positions: %w", err)
	}
	paths, err := toJSON(s.Paths, "[]")
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("paths: %w", err)
	}
	active, err := toJSON(s.ActivePlayers, "[]")
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("active players: %w", err)
	}
	return model.Snapshot{
		LineupID:      lineupID,
		Key:           key.String(),
		Rotation:      uint8(key.Rotation),
		Phase:         key.Phase,
		Mode:          string(key.Mode),
		Positions:     positions,
		Paths:         paths,
		ActivePlayers: active,
		Notes:         s.Notes,
		Revision:      s.Revision,
	}, nil
}
