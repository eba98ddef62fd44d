// Package drawing holds the in-progress shape and the committed shape list,
// advancing them per pointer event according to the active tool.
package drawing

import (
	"github.com/courtplan/courtplan/pkg/core"
)

const (
	// OffCourtMargin is how far outside the court a stroke may wander
	// (touch overscroll) before samples are dropped.
	OffCourtMargin = 20.0
	// CloseRadius is the distance to the first vertex that closes a polygon.
	CloseRadius = 3.0
	// CollapseDistance merges consecutive polygon vertices closer than this.
	CollapseDistance = 0.5
	// MinStrokePoints is the fewest samples a freehand stroke or arrow commits with.
	MinStrokePoints = 2

	DefaultColor = "#ffffff"
)

// Machine is the drawing state machine: idle, or active with a current path.
// Polygons and triangles stay active across clicks until closed.
type Machine struct {
	tool  Tool
	color string

	current *core.Path
	origin  core.Point // anchor position when current was started from a player

	paths []core.Path
}

// New returns an idle machine with the move tool selected.
func New() *Machine {
	return &Machine{tool: ToolMove, color: DefaultColor}
}

// Tool returns the active tool.
func (m *Machine) Tool() Tool {
	return m.tool
}

// Color returns the stroke color applied to new shapes.
func (m *Machine) Color() string {
	return m.color
}

// SetColor changes the stroke color of shapes started from now on.
func (m *Machine) SetColor(c string) {
	if c != "" {
		m.color = c
	}
}

// SetTool switches tools. A polygon under construction is closed when it
// already has more than two points and discarded otherwise; the closed path
// is returned when that happens.
func (m *Machine) SetTool(t Tool) (core.Path, bool) {
	var (
		committed core.Path
		ok        bool
	)
	if m.current != nil {
		if m.tool.ClickBased() && len(m.current.Points) > 2 {
			committed, ok = m.close()
		} else {
			m.current = nil
		}
	}
	m.tool = t
	return committed, ok
}

// Active reports whether a shape is under construction.
func (m *Machine) Active() bool {
	return m.current != nil
}

// Building reports whether a multi-click shape is under construction.
func (m *Machine) Building() bool {
	return m.current != nil && m.tool.ClickBased()
}

// Current returns a copy of the in-progress path.
func (m *Machine) Current() (core.Path, bool) {
	if m.current == nil {
		return core.Path{}, false
	}
	return m.current.Clone(), true
}

// Paths returns the committed shapes. The slice must not be modified.
func (m *Machine) Paths() []core.Path {
	return m.paths
}

// SetPaths replaces the committed shapes, e.g. on undo or snapshot load.
func (m *Machine) SetPaths(paths []core.Path) {
	m.paths = paths
}

// Replace swaps the committed path at i.
func (m *Machine) Replace(i int, p core.Path) bool {
	if i < 0 || i >= len(m.paths) {
		return false
	}
	next := make([]core.Path, len(m.paths))
	copy(next, m.paths)
	next[i] = p
	m.paths = next
	return true
}

// Remove deletes the committed path at i.
func (m *Machine) Remove(i int) bool {
	if i < 0 || i >= len(m.paths) {
		return false
	}
	next := make([]core.Path, 0, len(m.paths)-1)
	next = append(next, m.paths[:i]...)
	next = append(next, m.paths[i+1:]...)
	m.paths = next
	return true
}

// Cancel drops the in-progress shape.
func (m *Machine) Cancel() {
	m.current = nil
}

func withinMargin(p core.Point) bool {
	return p.Finite() &&
		p.X >= core.CourtMin-OffCourtMargin && p.X <= core.CourtMax+OffCourtMargin &&
		p.Y >= core.CourtMin-OffCourtMargin && p.Y <= core.CourtMax+OffCourtMargin
}

// Begin starts a press-drag-release shape at p. It reports false when the
// active tool does not draw by dragging.
func (m *Machine) Begin(p core.Point) bool {
	t, ok := m.tool.PathType()
	if !ok || !m.tool.Drags() || !withinMargin(p) {
		return false
	}
	m.origin = core.Point{}
	path := core.Path{Type: t, Color: m.color}
	switch t {
	case core.PathLine, core.PathRect:
		path.Points = []core.Point{p, p}
	default:
		path.Points = []core.Point{p}
	}
	m.current = &path
	return true
}

// BeginAnchored starts an arrow bound to playerID, whose position is origin.
// Points are stored as offsets from origin so the arrow follows the player.
func (m *Machine) BeginAnchored(p core.Point, playerID string, origin core.Point) bool {
	if m.tool != ToolArrow || playerID == "" || !withinMargin(p) {
		return false
	}
	m.origin = origin
	m.current = &core.Path{
		Type:   core.PathArrow,
		Color:  m.color,
		Anchor: playerID,
		Points: []core.Point{p.Sub(origin)},
	}
	return true
}

// Move advances the in-progress shape to p: strokes append, lines and
// rectangles move their second corner, polygons move their rubber band.
func (m *Machine) Move(p core.Point) {
	if m.current == nil || !withinMargin(p) {
		return
	}
	pts := m.current.Points
	switch m.current.Type {
	case core.PathDraw, core.PathArrow:
		m.current.Points = append(pts, p.Sub(m.origin))
	default:
		pts[len(pts)-1] = p
	}
}

// End finishes a drag gesture and commits the shape when it is large enough.
func (m *Machine) End() (core.Path, bool) {
	if m.current == nil || m.tool.ClickBased() {
		return core.Path{}, false
	}
	path := *m.current
	m.current = nil

	switch path.Type {
	case core.PathDraw, core.PathArrow:
		if len(path.Points) < MinStrokePoints {
			return core.Path{}, false
		}
	case core.PathLine, core.PathRect:
		if path.Points[0] == path.Points[1] {
			return core.Path{}, false
		}
	}
	return m.commit(path), true
}

// Click handles one click of a polygon or triangle. The first click seeds
// the shape with a rubber-band point; later clicks pin the rubber band and
// add a new one. Clicking near the first vertex with three or more vertices
// placed closes a polygon; a triangle closes on its third vertex.
func (m *Machine) Click(p core.Point) (core.Path, bool) {
	t, ok := m.tool.PathType()
	if !ok || !m.tool.ClickBased() || !withinMargin(p) {
		return core.Path{}, false
	}
	if m.current == nil {
		m.origin = core.Point{}
		m.current = &core.Path{Type: t, Color: m.color, Points: []core.Point{p, p}}
		return core.Path{}, false
	}

	pts := m.current.Points
	placed := len(pts) - 1
	if placed >= 3 && p.Dist(pts[0]) <= CloseRadius {
		return m.close()
	}
	pts[len(pts)-1] = p
	m.current.Points = append(pts, p)

	if t == core.PathTriangle && len(m.current.Points)-1 >= 3 {
		return m.close()
	}
	return core.Path{}, false
}

// DoubleClick closes the polygon under construction.
func (m *Machine) DoubleClick() (core.Path, bool) {
	if !m.Building() {
		return core.Path{}, false
	}
	return m.close()
}

// close drops the rubber-band point, collapses near-duplicate vertices and
// commits the result when it still has at least two vertices.
func (m *Machine) close() (core.Path, bool) {
	path := *m.current
	m.current = nil

	pts := Collapse(path.Points[:len(path.Points)-1])
	if len(pts) < 2 {
		return core.Path{}, false
	}
	path.Points = pts
	return m.commit(path), true
}

// Collapse removes consecutive points closer than CollapseDistance, and a
// final point that duplicates the first.
func Collapse(pts []core.Point) []core.Point {
	out := make([]core.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Dist(p) < CollapseDistance {
			continue
		}
		out = append(out, p)
	}
	if n := len(out); n > 2 && out[n-1].Dist(out[0]) < CollapseDistance {
		out = out[:n-1]
	}
	return out
}

func (m *Machine) commit(p core.Path) core.Path {
	next := make([]core.Path, len(m.paths), len(m.paths)+1)
	copy(next, m.paths)
	m.paths = append(next, p)
	return p
}
