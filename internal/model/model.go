package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SchemaInfo{},
	&Lineup{},
	&Snapshot{},
}

// SchemaVersion is bumped whenever a migration changes stored JSON shapes.
const SchemaVersion = 1

// SchemaInfo records which schema version created the database.
type SchemaInfo struct {
	ID        uint `gorm:"primarykey"`
	Version   int
	CreatedAt time.Time
}

func (*SchemaInfo) TableName() string {
	return "schema_infos"
}

// Lineup is a roster with its starting six.
type Lineup struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	Name        string         `json:"name" gorm:"size:127"`
	Roster      datatypes.JSON `json:"roster"`
	StartingSix datatypes.JSON `json:"startingSix"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Snapshots   []Snapshot     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (*Lineup) TableName() string {
	return "lineups"
}

// Snapshot is the saved state of one (rotation, phase, mode) of a lineup.
// Rotation, Phase and Mode duplicate Key for querying.
type Snapshot struct {
	ID            uint           `json:"-" gorm:"primarykey"`
	LineupID      string         `json:"lineupId" gorm:"size:36;uniqueIndex:idx_lineup_key"`
	Key           string         `json:"key" gorm:"column:snapshot_key;size:64;uniqueIndex:idx_lineup_key"`
	Rotation      uint8          `json:"rotation" gorm:"index"`
	Phase         string         `json:"phase" gorm:"size:32"`
	Mode          string         `json:"mode" gorm:"size:16"`
	Positions     datatypes.JSON `json:"positions"`
	Paths         datatypes.JSON `json:"paths"`
	ActivePlayers datatypes.JSON `json:"activePlayers"`
	Notes         string         `json:"notes"`
	Revision      uint64         `json:"revision"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (*Snapshot) TableName() string {
	return "snapshots"
}
