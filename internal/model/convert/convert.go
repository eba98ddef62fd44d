package convert

import (
	"encoding/json"
	"fmt"

	"github.com/courtplan/courtplan/internal/model"
	"github.com/courtplan/courtplan/pkg/core"
	"gorm.io/datatypes"
)

func fromJSON(data datatypes.JSON, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// LineupToCore converts a GORM model.Lineup to a core.Lineup.
func LineupToCore(l model.Lineup) (core.Lineup, error) {
	out := core.Lineup{ID: l.ID, Name: l.Name}
	if err := fromJSON(l.Roster, &out.Roster); err != nil {
		return core.Lineup{}, fmt.Errorf("lineup %s roster: %w", l.ID, err)
	}
	if err := fromJSON(l.StartingSix, &out.StartingSix); err != nil {
		return core.Lineup{}, fmt.Errorf("lineup %s starting six: %w", l.ID, err)
	}
	return out, nil
}

// SnapshotToCore converts a GORM row back to a core.Snapshot.
func SnapshotToCore(s model.Snapshot) (*core.Snapshot, error) {
	out := &core.Snapshot{Notes: s.Notes, Revision: s.Revision}
	if err := fromJSON(s.Positions, &out.Positions); err != nil {
		return nil, fmt.Errorf("snapshot %s positions: %w", s.Key, err)
	}
	if err := fromJSON(s.Paths, &out.Paths); err != nil {
		return nil, fmt.Errorf("snapshot %s paths: %w", s.Key, err)
	}
	if err := fromJSON(s.ActivePlayers, &out.ActivePlayers); err != nil {
		return nil, fmt.Errorf("snapshot %s active players: %w", s.Key, err)
	}
	return out, nil
}
