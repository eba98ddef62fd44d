package zone

import (
	"math/rand"
	"testing"

	"github.com/courtplan/courtplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var six = []string{"p1", "p2", "p3", "p4", "p5", "p6"}

func TestZoneOf_RotationOne(t *testing.T) {
	want := []int{1, 2, 3, 4, 5, 6}
	for slot, z := range want {
		assert.Equal(t, z, ZoneOf(slot, 1), "slot %d", slot)
	}
}

func TestZoneOf_EachRotationIsPermutation(t *testing.T) {
	for r := 1; r <= core.Rotations; r++ {
		seen := map[int]bool{}
		for slot := 0; slot < core.Rotations; slot++ {
			z := ZoneOf(slot, r)
			require.GreaterOrEqual(t, z, 1)
			require.LessOrEqual(t, z, 6)
			seen[z] = true
		}
		assert.Len(t, seen, 6, "rotation %d", r)
	}
}

// following returns the zone after z in the rotation cycle.
func following(z int) int {
	for i, s := range sequence {
		if s == z {
			return sequence[(i+1)%len(sequence)]
		}
	}
	return 0
}

func TestZoneOf_RotatingShiftsEveryPlayerOneStep(t *testing.T) {
	for r := 1; r <= core.Rotations; r++ {
		next := r%core.Rotations + 1
		for slot := 0; slot < core.Rotations; slot++ {
			assert.Equal(t, following(ZoneOf(slot, r)), ZoneOf(slot, next), "slot %d rotation %d", slot, r)
		}
	}
}

func TestZoneOf_ServerMovesToZoneSix(t *testing.T) {
	assert.Equal(t, 1, ZoneOf(0, 1))
	assert.Equal(t, 6, ZoneOf(0, 2))
	assert.Equal(t, 5, ZoneOf(0, 3))
	assert.Equal(t, 2, ZoneOf(1, 6+1)) // rotation 7 wraps to 1
}

func TestSlotForZone_InvertsZoneOf(t *testing.T) {
	for r := 1; r <= core.Rotations; r++ {
		for slot := 0; slot < core.Rotations; slot++ {
			assert.Equal(t, slot, SlotForZone(ZoneOf(slot, r), r))
		}
	}
	assert.Equal(t, -1, SlotForZone(7, 1))
}

func TestIsFrontRow(t *testing.T) {
	for z := 1; z <= 6; z++ {
		assert.Equal(t, z == 2 || z == 3 || z == 4, IsFrontRow(z), "zone %d", z)
	}
}

func TestDefaultLayout(t *testing.T) {
	pos := DefaultLayout(six, 1)
	require.Len(t, pos, 6)
	assert.Equal(t, core.Point{X: 80, Y: 75}, pos["p1"])
	assert.Equal(t, core.Point{X: 50, Y: 25}, pos["p3"])

	pos = DefaultLayout(six, 2)
	assert.Equal(t, DefaultPosition(6), pos["p1"])
}

func board(r int, pos core.Positions) Board {
	return Board{Rotation: r, ActivePlayers: six, Positions: pos}
}

func TestConstraintsFor_MiddleFrontDefaultLayout(t *testing.T) {
	b := ConstraintsFor("p3", board(1, DefaultLayout(six, 1)))

	assert.Equal(t, Bounds{MinX: 22, MaxX: 78, MinY: 0, MaxY: 73}, b)
}

func TestConstraintsFor_BackRowUsesFrontNeighbour(t *testing.T) {
	b := ConstraintsFor("p6", board(1, DefaultLayout(six, 1)))

	// zone 6: left zone 5, right zone 1, front zone 3
	assert.Equal(t, 22.0, b.MinX)
	assert.Equal(t, 78.0, b.MaxX)
	assert.Equal(t, 27.0, b.MinY)
	assert.Equal(t, 100.0, b.MaxY)
}

func TestConstraintsFor_IgnoresOffCourtNeighbour(t *testing.T) {
	pos := DefaultLayout(six, 1)
	pos["p4"] = core.Point{X: -10, Y: 25}

	b := ConstraintsFor("p3", board(1, pos))
	assert.Equal(t, 0.0, b.MinX)
	assert.Equal(t, 78.0, b.MaxX)
}

func TestConstraintsFor_TopEdgePinRelaxesY(t *testing.T) {
	pos := DefaultLayout(six, 1)
	pos["p6"] = core.Point{X: 50, Y: 2}

	b := ConstraintsFor("p3", board(1, pos))
	assert.Equal(t, 0.0, b.MinY)
	assert.Equal(t, 100.0, b.MaxY)
}

func TestConstraintsFor_InvertedXRelaxes(t *testing.T) {
	pos := DefaultLayout(six, 1)
	pos["p4"] = core.Point{X: 60, Y: 25}
	pos["p2"] = core.Point{X: 40, Y: 25}

	b := ConstraintsFor("p3", board(1, pos))
	assert.Equal(t, 0.0, b.MinX)
	assert.Equal(t, 100.0, b.MaxX)
}

func TestConstraintsFor_BenchPlayerGetsFullCourt(t *testing.T) {
	assert.Equal(t, Full(), ConstraintsFor("sub", board(1, DefaultLayout(six, 1))))
}

func TestConstraintsFor_AllCoincident(t *testing.T) {
	pos := core.Positions{}
	for _, id := range six {
		pos[id] = core.Point{X: 50, Y: 50}
	}
	for r := 1; r <= core.Rotations; r++ {
		for _, id := range six {
			b := ConstraintsFor(id, board(r, pos))
			assert.LessOrEqual(t, b.MinX, b.MaxX)
			assert.LessOrEqual(t, b.MinY, b.MaxY)
		}
	}
}

func TestConstraintsFor_AlwaysWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		pos := core.Positions{}
		for _, id := range six {
			pos[id] = core.Point{X: rng.Float64()*140 - 20, Y: rng.Float64()*140 - 20}
		}
		r := rng.Intn(core.Rotations) + 1
		for _, id := range six {
			b := ConstraintsFor(id, board(r, pos))
			require.LessOrEqual(t, b.MinX, b.MaxX)
			require.LessOrEqual(t, b.MinY, b.MaxY)
			require.GreaterOrEqual(t, b.MinX, 0.0)
			require.LessOrEqual(t, b.MaxY, 100.0)
		}
	}
}

func TestBounds_Clamp(t *testing.T) {
	b := Bounds{MinX: 10, MaxX: 20, MinY: 30, MaxY: 40}
	assert.Equal(t, core.Point{X: 10, Y: 40}, b.Clamp(core.Point{X: 0, Y: 90}))
	assert.Equal(t, core.Point{X: 15, Y: 35}, b.Clamp(core.Point{X: 15, Y: 35}))
}
