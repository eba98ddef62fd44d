package interaction

import (
	"github.com/courtplan/courtplan/internal/drawing"
	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/internal/hittest"
	"github.com/courtplan/courtplan/pkg/core"
)

// RenderedPath is a committed or in-progress path in absolute court space.
type RenderedPath struct {
	Index  int           `json:"index"` // -1 for the path under construction
	Type   core.PathType `json:"type"`
	Color  string        `json:"color"`
	Points []core.Point  `json:"points"`
	Anchor string        `json:"anchorId,omitempty"`
}

// Arrow is the head of an arrow path, in pixels.
type Arrow struct {
	Index int               `json:"index"`
	Head  drawing.ArrowHead `json:"head"`
}

// BenchToken is a bench player being dragged over the court.
type BenchToken struct {
	PlayerID string     `json:"playerId"`
	Position core.Point `json:"position"`
}

// Frame is everything the render collaborator draws.
type Frame struct {
	Key                string            `json:"key"`
	Tool               drawing.Tool      `json:"tool"`
	Viewport           geo.Viewport      `json:"viewport"`
	Paths              []RenderedPath    `json:"paths"`
	CurrentPath        *RenderedPath     `json:"currentPath,omitempty"`
	PlayerPositions    core.Positions    `json:"playerPositions"`
	ActivePlayers      []string          `json:"activePlayers"`
	Bench              []string          `json:"bench"`
	Dragging           *BenchToken       `json:"dragging,omitempty"`
	HoveredElement     *hittest.Hit      `json:"hoveredElement,omitempty"`
	Controls           *hittest.Controls `json:"controls,omitempty"`
	SelectedShapeIndex int               `json:"selectedShapeIndex"`
	ArrowHeads         []Arrow           `json:"arrowHeads,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	CanUndo            bool              `json:"canUndo"`
	CanRedo            bool              `json:"canRedo"`
}

func (c *Controller) render(i int, p core.Path) (RenderedPath, bool) {
	pts, ok := p.Resolve(c.positions)
	if !ok || len(pts) == 0 {
		return RenderedPath{}, false
	}
	return RenderedPath{
		Index:  i,
		Type:   p.Type,
		Color:  p.Color,
		Points: append([]core.Point(nil), pts...),
		Anchor: p.Anchor,
	}, true
}

func (c *Controller) arrowHead(rp RenderedPath) (Arrow, bool) {
	if rp.Type != core.PathArrow {
		return Arrow{}, false
	}
	h, ok := drawing.HeadFor(c.viewport.AllToPixels(rp.Points), drawing.HeadLookback*c.viewport.Scale())
	if !ok {
		return Arrow{}, false
	}
	return Arrow{Index: rp.Index, Head: h}, true
}

// Frame derives the render state. Anchored paths are resolved against the
// live player positions; paths whose anchor has no position are omitted.
func (c *Controller) Frame() Frame {
	f := Frame{
		Key:                c.key.String(),
		Tool:               c.machine.Tool(),
		Viewport:           c.viewport,
		Paths:              make([]RenderedPath, 0, len(c.machine.Paths())),
		PlayerPositions:    c.positions.Clone(),
		ActivePlayers:      append([]string(nil), c.active...),
		HoveredElement:     c.state.Element,
		SelectedShapeIndex: c.state.Selected,
		Notes:              c.notes,
	}
	if lineup := c.store.Lineup(); lineup != nil {
		f.Bench = lineup.Bench(c.active)
	}
	undo, redo := c.history.Depth()
	f.CanUndo, f.CanRedo = undo > 0, redo > 0

	for i, p := range c.machine.Paths() {
		rp, ok := c.render(i, p)
		if !ok {
			continue
		}
		f.Paths = append(f.Paths, rp)
		if a, ok := c.arrowHead(rp); ok {
			f.ArrowHeads = append(f.ArrowHeads, a)
		}
	}

	if cur, ok := c.machine.Current(); ok {
		var origin core.Point
		if cur.Anchored() {
			origin = c.positions[cur.Anchor]
		}
		rp := RenderedPath{Index: -1, Type: cur.Type, Color: cur.Color, Anchor: cur.Anchor}
		for _, pt := range cur.Points {
			rp.Points = append(rp.Points, origin.Add(pt))
		}
		f.CurrentPath = &rp
		if a, ok := c.arrowHead(rp); ok {
			f.ArrowHeads = append(f.ArrowHeads, a)
		}
	}

	if c.state.Drag == DragBench {
		f.Dragging = &BenchToken{PlayerID: c.state.PlayerID, Position: c.state.BenchPos}
	}

	if h := c.state.Hovered; h >= 0 && h < len(c.machine.Paths()) {
		if ctl, ok := hittest.ControlsFor(c.machine.Paths()[h], c.positions, c.viewport); ok {
			f.Controls = &ctl
		}
	}
	return f
}
