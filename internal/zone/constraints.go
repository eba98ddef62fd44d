package zone

import "github.com/courtplan/courtplan/pkg/core"

// Padding keeps a dragged player this far from a constraining neighbour.
const Padding = 2.0

// topEdgeLock is the maxY at or below which a player counts as pinned to the net.
const topEdgeLock = 1.0

// Bounds is the rectangle a player may be dragged within.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

// Full returns the whole court.
func Full() Bounds {
	return Bounds{MinX: core.CourtMin, MaxX: core.CourtMax, MinY: core.CourtMin, MaxY: core.CourtMax}
}

// Clamp moves p inside b.
func (b Bounds) Clamp(p core.Point) core.Point {
	if p.X < b.MinX {
		p.X = b.MinX
	}
	if p.X > b.MaxX {
		p.X = b.MaxX
	}
	if p.Y < b.MinY {
		p.Y = b.MinY
	}
	if p.Y > b.MaxY {
		p.Y = b.MaxY
	}
	return p
}

// neighbours of a zone; zero means none in that direction. Front is toward the net.
type neighbours struct {
	left, right, front, back int
}

var adjacency = map[int]neighbours{
	4: {right: 3, back: 5},
	3: {left: 4, right: 2, back: 6},
	2: {left: 3, back: 1},
	5: {right: 6, front: 4},
	6: {left: 5, right: 1, front: 3},
	1: {left: 6, front: 2},
}

// Board is the slice of state ConstraintsFor reads.
type Board struct {
	Rotation      int
	ActivePlayers []string
	Positions     core.Positions
}

func (b Board) anchor(z int) (core.Point, bool) {
	if z == 0 {
		return core.Point{}, false
	}
	slot := SlotForZone(z, b.Rotation)
	if slot < 0 || slot >= len(b.ActivePlayers) {
		return core.Point{}, false
	}
	p, ok := b.Positions[b.ActivePlayers[slot]]
	if !ok || !p.OnCourt() {
		return core.Point{}, false
	}
	return p, true
}

// ConstraintsFor returns the drag bounds of playerID given its zone
// neighbours' current positions. Benched players get the full court.
//
// An axis whose bounds come out inverted, or whose maxY pins the player
// against the net, is relaxed to the full range so a player can never end up
// undraggable.
func ConstraintsFor(playerID string, b Board) Bounds {
	out := Full()
	slot := -1
	for i, id := range b.ActivePlayers {
		if id == playerID {
			slot = i
			break
		}
	}
	if slot < 0 {
		return out
	}

	n := adjacency[ZoneOf(slot, b.Rotation)]
	if p, ok := b.anchor(n.left); ok {
		out.MinX = p.X + Padding
	}
	if p, ok := b.anchor(n.right); ok {
		out.MaxX = p.X - Padding
	}
	if p, ok := b.anchor(n.front); ok {
		out.MinY = p.Y + Padding
	}
	if p, ok := b.anchor(n.back); ok {
		out.MaxY = p.Y - Padding
	}

	out.MinX = clampAxis(out.MinX)
	out.MaxX = clampAxis(out.MaxX)
	out.MinY = clampAxis(out.MinY)
	out.MaxY = clampAxis(out.MaxY)

	if out.MinX > out.MaxX {
		out.MinX, out.MaxX = core.CourtMin, core.CourtMax
	}
	if out.MinY > out.MaxY || out.MaxY <= topEdgeLock {
		out.MinY, out.MaxY = core.CourtMin, core.CourtMax
	}
	return out
}

func clampAxis(v float64) float64 {
	if v < core.CourtMin {
		return core.CourtMin
	}
	if v > core.CourtMax {
		return core.CourtMax
	}
	return v
}
