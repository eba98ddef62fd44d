package memory

import (
	"testing"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Positions:     core.Positions{"s1": {X: 100, Y: 300}},
		Paths:         []core.Path{{Type: core.PathLine, Color: "#111", Points: []core.Point{{X: 1, Y: 1}, {X: 9, Y: 9}}}},
		ActivePlayers: []string{"s1", "p2", "p3", "p4", "p5", "p6"},
		Revision:      2,
	}
}

func TestRequiresLineup(t *testing.T) {
	b := New(config.MemoryConfig{})

	_, err := b.Load("1_serve_defense")
	assert.ErrorIs(t, err, ErrNoLineup)
	assert.ErrorIs(t, b.Save("1_serve_defense", testSnapshot()), ErrNoLineup)
}

func TestSaveLoad_CopiesSnapshot(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.OpenLineup(&core.Lineup{ID: "l1"}))

	snap := testSnapshot()
	require.NoError(t, b.Save("3_attack_offense", snap))
	snap.Positions["s1"] = core.Point{X: 0, Y: 0}

	got, err := b.Load("3_attack_offense")
	require.NoError(t, err)
	assert.Equal(t, core.Point{X: 100, Y: 300}, got.Positions["s1"])

	got.Paths[0].Points[0] = core.Point{X: 50, Y: 50}
	again, err := b.Load("3_attack_offense")
	require.NoError(t, err)
	assert.Equal(t, core.Point{X: 1, Y: 1}, again.Paths[0].Points[0])
}

func TestLoad_Miss(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.OpenLineup(&core.Lineup{ID: "l1"}))

	got, err := b.Load("4_block_defense")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSave_InvalidKey(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.OpenLineup(&core.Lineup{ID: "l1"}))

	assert.ErrorIs(t, b.Save("7_serve_defense", testSnapshot()), core.ErrInvalidKey)
	assert.ErrorIs(t, b.Save("nope", testSnapshot()), core.ErrInvalidKey)
	assert.Equal(t, 0, b.Len())
}

func TestOpenLineup_Resets(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.OpenLineup(&core.Lineup{ID: "l1"}))
	require.NoError(t, b.Save("1_serve_defense", testSnapshot()))
	require.Equal(t, 1, b.Len())

	require.NoError(t, b.OpenLineup(&core.Lineup{ID: "l2"}))
	assert.Equal(t, 0, b.Len())
}

func TestClose_NoOutputDir(t *testing.T) {
	b := New(config.MemoryConfig{})
	require.NoError(t, b.OpenLineup(&core.Lineup{ID: "l1"}))
	require.NoError(t, b.Close())
	assert.Empty(t, b.ExportedFilePath())
}
