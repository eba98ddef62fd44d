// Package interaction turns raw pointer and keyboard input into player drags,
// substitutions, shape edits and drawing gestures, and commits the results to
// history and persistence.
package interaction

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/courtplan/courtplan/internal/drawing"
	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/internal/history"
	"github.com/courtplan/courtplan/internal/hittest"
	"github.com/courtplan/courtplan/internal/persist"
	"github.com/courtplan/courtplan/internal/zone"
	"github.com/courtplan/courtplan/pkg/core"
)

const (
	// SubstitutionRadius is how close (court units) a bench token must be
	// dropped to an on-court token to replace it.
	SubstitutionRadius = 15.0
	// TokenRadius is the hit radius of a player token as a fraction of the
	// rendered court width.
	TokenRadius = 0.04
)

var (
	ErrLiberoFrontRow = errors.New("a libero cannot replace a front-row player")
	ErrNotOnCourt     = errors.New("player is not on court")
	ErrAlreadyOnCourt = errors.New("player is already on court")
	ErrNotOnRoster    = errors.New("player is not on the roster")
)

// Roster resolves player ids to roster entries.
type Roster interface {
	Player(id string) (core.Player, bool)
}

// Enqueuer accepts snapshot keys for a background write.
type Enqueuer interface {
	Enqueue(keys ...core.Key)
}

// Pointer is a pointer event in container-relative pixels. PlayerID names the
// token under the pointer when the render collaborator knows it; Bench marks
// a bench token.
type Pointer struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"playerId,omitempty"`
	Bench    bool    `json:"bench,omitempty"`
}

func (p Pointer) px() core.Point {
	return core.Point{X: p.X, Y: p.Y}
}

// KeyEvent is a keyboard event. InInput is set while focus is in a text field.
type KeyEvent struct {
	Key     string
	Ctrl    bool
	Shift   bool
	Meta    bool
	InInput bool
}

// Outcome reports what an input did. Notice carries a user-facing message
// for rejected actions.
type Outcome struct {
	Committed bool   `json:"committed"`
	Notice    string `json:"notice,omitempty"`
}

// Dependencies holds the collaborators of a Controller.
type Dependencies struct {
	Store    *persist.Store
	Writer   Enqueuer
	Roster   Roster
	History  *history.Manager
	Viewport geo.Viewport
	Logger   *slog.Logger
}

// Controller owns the live state of the snapshot being edited. It is driven
// from a single event loop and is not safe for concurrent use.
type Controller struct {
	store   *persist.Store
	writer  Enqueuer
	roster  Roster
	history *history.Manager
	logger  *slog.Logger
	metrics *metrics

	viewport geo.Viewport
	machine  *drawing.Machine

	key       core.Key
	positions core.Positions
	active    []string
	notes     string

	state InteractionState
}

// New creates a controller. Call Enter before sending input.
func New(deps Dependencies) (*Controller, error) {
	if deps.Store == nil {
		return nil, errors.New("interaction: store is required")
	}
	if err := deps.Viewport.Validate(); err != nil {
		return nil, fmt.Errorf("interaction: %w", err)
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	c := &Controller{
		store:    deps.Store,
		writer:   deps.Writer,
		roster:   deps.Roster,
		history:  deps.History,
		logger:   deps.Logger,
		metrics:  m,
		viewport: deps.Viewport,
		machine:  drawing.New(),
		state:    newState(),
	}
	if c.roster == nil {
		c.roster = deps.Store.Lineup()
	}
	if c.history == nil {
		c.history = history.New(history.DefaultCapacity)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Enter switches to the snapshot of k, loading or synthesising it. History
// is per snapshot and starts empty.
func (c *Controller) Enter(k core.Key) error {
	if err := k.Validate(); err != nil {
		return err
	}
	c.machine.Cancel()
	snap := c.store.Get(k)
	c.key = k
	c.positions = snap.Positions
	if c.positions == nil {
		c.positions = make(core.Positions)
	}
	c.active = snap.ActivePlayers
	c.notes = snap.Notes
	c.machine.SetPaths(snap.Paths)
	c.history.Reset()
	c.state = newState()
	c.logger.Debug("entered snapshot", "key", k.String(), "revision", snap.Revision)
	return nil
}

// Key returns the snapshot key being edited.
func (c *Controller) Key() core.Key {
	return c.key
}

// State returns a copy of the interaction state.
func (c *Controller) State() InteractionState {
	return c.state
}

// Snapshot returns the live state as a snapshot value. Containers are
// shared with the controller and must not be modified.
func (c *Controller) Snapshot() core.Snapshot {
	return core.Snapshot{
		Positions:     c.positions,
		Paths:         c.machine.Paths(),
		ActivePlayers: c.active,
		Notes:         c.notes,
	}
}

// Tool returns the active tool.
func (c *Controller) Tool() drawing.Tool {
	return c.machine.Tool()
}

// Viewport returns the rendered court size.
func (c *Controller) Viewport() geo.Viewport {
	return c.viewport
}

// Resize records the rendered court size. Shape data is not touched; only
// the pixel mapping used by hit tests changes.
func (c *Controller) Resize(vp geo.Viewport) error {
	if err := vp.Validate(); err != nil {
		return err
	}
	c.viewport = vp
	return nil
}

// SetColor sets the stroke color of new shapes.
func (c *Controller) SetColor(color string) {
	c.machine.SetColor(color)
}

// SetTool switches tools. A polygon under construction is closed or
// discarded by the drawing machine.
func (c *Controller) SetTool(t drawing.Tool) Outcome {
	pre := c.state.pre
	path, closed := c.machine.SetTool(t)
	if c.state.Drag == DragDrawing || c.state.Drag == DragNone {
		c.state.endGesture()
	}
	if t != drawing.ToolMove {
		c.state.clearSelection()
	}
	if !closed {
		return Outcome{}
	}
	return c.commitWith(pre, string(path.Type))
}

// SetNotes replaces the snapshot notes. Notes are persisted but not part of
// undo history.
func (c *Controller) SetNotes(text string) Outcome {
	if text == c.notes {
		return Outcome{}
	}
	c.notes = text
	c.persist("notes")
	return Outcome{Committed: true}
}

func (c *Controller) capture() *history.Entry {
	e := history.Capture(c.positions, c.machine.Paths(), c.active)
	return &e
}

func (c *Controller) scene() hittest.Scene {
	return hittest.Scene{Paths: c.machine.Paths(), Positions: c.positions, Viewport: c.viewport}
}

// tokenAt finds the nearest on-court token within TokenRadius of px.
func (c *Controller) tokenAt(px core.Point) string {
	best, bestDist := "", TokenRadius*c.viewport.Width
	for _, id := range c.active {
		pos, ok := c.positions[id]
		if !ok || !pos.OnCourt() {
			continue
		}
		if d := c.viewport.ToPixels(pos).Dist(px); d <= bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

func (c *Controller) onCourt(id string) bool {
	for _, a := range c.active {
		if a == id {
			return true
		}
	}
	return false
}

func (c *Controller) valid(p Pointer, event string) bool {
	if !p.px().Finite() {
		c.logger.Debug("dropped pointer event with invalid coordinates", "event", event, "x", p.X, "y", p.Y)
		return false
	}
	return true
}

// PointerDown starts a gesture. Priority: a polygon under construction takes
// the click; with the move tool, shape controls, vertices and bodies come
// next; then a player token; then the active drawing tool.
func (c *Controller) PointerDown(p Pointer) Outcome {
	if !c.valid(p, "down") || c.state.Drag != DragNone {
		return Outcome{}
	}
	px := p.px()
	court := c.viewport.ToCourt(px)

	if c.machine.Building() {
		return c.click(court)
	}

	if c.machine.Tool() == drawing.ToolMove {
		if hit, ok := hittest.Test(px, c.scene(), c.state.Hovered); ok {
			return c.shapeDown(hit, court)
		}
	}

	id := p.PlayerID
	if id == "" {
		id = c.tokenAt(px)
	}
	if id != "" {
		if p.Bench && !c.onCourt(id) {
			c.state.Drag = DragBench
			c.state.PlayerID = id
			c.state.BenchPos = court.Clamp()
			return Outcome{}
		}
		if c.onCourt(id) {
			return c.playerDown(id, court)
		}
	}

	switch t := c.machine.Tool(); {
	case t.ClickBased():
		return c.click(court)
	case t.Drags():
		pre := c.capture()
		if c.machine.Begin(court) {
			c.state.Drag = DragDrawing
			c.state.pre = pre
		}
	default:
		c.state.clearSelection()
	}
	return Outcome{}
}

func (c *Controller) shapeDown(hit hittest.Hit, court core.Point) Outcome {
	switch hit.Kind {
	case hittest.KindDelete:
		return c.removeShape(hit.Index)
	case hittest.KindVertex:
		c.state.Drag = DragVertex
		c.state.Vertex = hit.Vertex
	default:
		c.state.Drag = DragShape
		c.state.Last = court.Clamp()
	}
	c.state.Selected = hit.Index
	c.state.Hovered = hit.Index
	c.state.Element = &hit
	c.state.pre = c.capture()
	return Outcome{}
}

func (c *Controller) playerDown(id string, court core.Point) Outcome {
	pre := c.capture()
	if c.machine.Tool() == drawing.ToolArrow {
		if c.machine.BeginAnchored(court, id, c.positions[id]) {
			c.state.Drag = DragDrawing
			c.state.pre = pre
		}
		return Outcome{}
	}
	c.state.Drag = DragPlayer
	c.state.PlayerID = id
	c.state.pre = pre
	// the live map is never shared with a history entry
	c.positions = c.positions.Clone()
	return Outcome{}
}

// click feeds a polygon or triangle click to the drawing machine.
func (c *Controller) click(court core.Point) Outcome {
	if !c.machine.Building() {
		c.state.pre = c.capture()
	}
	path, closed := c.machine.Click(court)
	if !closed {
		return Outcome{}
	}
	pre := c.state.pre
	c.state.endGesture()
	return c.commitWith(pre, string(path.Type))
}

// PointerMove advances the active gesture, or updates hover when idle.
func (c *Controller) PointerMove(p Pointer) Outcome {
	if !c.valid(p, "move") {
		return Outcome{}
	}
	px := p.px()
	court := c.viewport.ToCourt(px)

	switch c.state.Drag {
	case DragPlayer:
		c.movePlayer(court)
	case DragBench:
		c.state.BenchPos = court.Clamp()
	case DragVertex:
		c.moveVertex(court.Clamp())
	case DragShape:
		c.moveShape(court.Clamp())
	case DragDrawing:
		c.machine.Move(court)
	default:
		if c.machine.Building() {
			c.machine.Move(court)
			return Outcome{}
		}
		if c.machine.Tool() == drawing.ToolMove {
			c.hover(px)
		}
	}
	return Outcome{}
}

func (c *Controller) hover(px core.Point) {
	hit, ok := hittest.Test(px, c.scene(), c.state.Hovered)
	if !ok {
		c.state.Hovered = -1
		c.state.Element = nil
		return
	}
	c.state.Hovered = hit.Index
	c.state.Element = &hit
}

func (c *Controller) movePlayer(court core.Point) {
	id := c.state.PlayerID
	target := court.Clamp()
	if c.key.Receive() {
		b := zone.ConstraintsFor(id, zone.Board{
			Rotation:      c.key.Rotation,
			ActivePlayers: c.active,
			Positions:     c.positions,
		})
		target = b.Clamp(target)
	}
	if cur, ok := c.positions[id]; ok && cur == target {
		return
	}
	c.positions[id] = target
	c.state.Changed = true
}

func (c *Controller) selectedPath() (core.Path, bool) {
	paths := c.machine.Paths()
	i := c.state.Selected
	if i < 0 || i >= len(paths) {
		return core.Path{}, false
	}
	return paths[i], true
}

func (c *Controller) moveVertex(court core.Point) {
	path, ok := c.selectedPath()
	if !ok {
		return
	}
	abs, ok := path.Resolve(c.positions)
	if !ok || c.state.Vertex < 0 || c.state.Vertex >= len(abs) {
		return
	}
	if abs[c.state.Vertex] == court {
		return
	}
	next := append([]core.Point(nil), abs...)
	next[c.state.Vertex] = court
	c.machine.Replace(c.state.Selected, path.WithAbsolutePoints(next, c.positions))
	c.state.Changed = true
}

func (c *Controller) moveShape(court core.Point) {
	path, ok := c.selectedPath()
	if !ok {
		return
	}
	d := court.Sub(c.state.Last)
	c.state.Last = court
	if d == (core.Point{}) {
		return
	}
	c.machine.Replace(c.state.Selected, path.Translate(d))
	c.state.Changed = true
}

// PointerUp ends the active gesture and commits it.
func (c *Controller) PointerUp(p Pointer) Outcome {
	if c.state.Drag == DragNone {
		return Outcome{}
	}
	// strokes end at their last move sample so a tap cannot leave a dot
	if c.state.Drag != DragDrawing && c.valid(p, "up") {
		c.PointerMove(p)
	}

	pre := c.state.pre
	drag, changed, id := c.state.Drag, c.state.Changed, c.state.PlayerID
	benchPos := c.state.BenchPos
	c.state.endGesture()

	switch drag {
	case DragPlayer:
		if changed {
			return c.commitWith(pre, "player")
		}
	case DragBench:
		if target := c.nearestOnCourt(benchPos); target != "" {
			return c.Substitute(id, target)
		}
	case DragVertex, DragShape:
		if changed {
			return c.commitWith(pre, "shape")
		}
	case DragDrawing:
		if path, ok := c.machine.End(); ok {
			return c.commitWith(pre, string(path.Type))
		}
	}
	return Outcome{}
}

func (c *Controller) nearestOnCourt(at core.Point) string {
	best, bestDist := "", SubstitutionRadius
	for _, id := range c.active {
		pos, ok := c.positions[id]
		if !ok || !pos.OnCourt() {
			continue
		}
		if d := pos.Dist(at); d <= bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

// DoubleClick closes a polygon under construction.
func (c *Controller) DoubleClick(p Pointer) Outcome {
	if !c.valid(p, "dblclick") || !c.machine.Building() {
		return Outcome{}
	}
	pre := c.state.pre
	path, ok := c.machine.DoubleClick()
	c.state.endGesture()
	if !ok {
		return Outcome{}
	}
	return c.commitWith(pre, string(path.Type))
}

// Substitute puts bench player benchID on court in place of courtID. A
// libero may not replace a player standing in a front-row zone. The swap is
// propagated to the other phases of the rotation.
func (c *Controller) Substitute(benchID, courtID string) Outcome {
	slot := -1
	for i, id := range c.active {
		if id == courtID {
			slot = i
		}
	}
	if slot < 0 {
		return Outcome{Notice: ErrNotOnCourt.Error()}
	}
	if c.onCourt(benchID) {
		return Outcome{Notice: ErrAlreadyOnCourt.Error()}
	}
	player, ok := c.roster.Player(benchID)
	if !ok {
		c.metrics.reject()
		c.logger.Warn("substitution rejected", "in", benchID, "out", courtID, "error", ErrNotOnRoster)
		return Outcome{Notice: ErrNotOnRoster.Error()}
	}
	if player.IsLibero() {
		if z := zone.ZoneOf(slot, c.key.Rotation); zone.IsFrontRow(z) {
			c.metrics.reject()
			c.logger.Warn("substitution rejected", "in", benchID, "out", courtID, "zone", z, "error", ErrLiberoFrontRow)
			return Outcome{Notice: ErrLiberoFrontRow.Error()}
		}
	}

	pre := c.capture()
	before := c.active
	snap := c.Snapshot()
	if !snap.Substitute(slot, courtID, benchID) {
		return Outcome{}
	}
	c.positions = snap.Positions
	c.active = snap.ActivePlayers
	c.machine.SetPaths(snap.Paths)

	out := c.commitWith(pre, "substitution")
	changed := c.store.PropagateSubstitution(c.key, slot, courtID, benchID, before)
	c.enqueue(changed...)
	c.logger.Info("substitution", "key", c.key.String(), "in", benchID, "out", courtID, "propagated", len(changed))
	return out
}

// HandleKey applies a keyboard shortcut.
func (c *Controller) HandleKey(e KeyEvent) Outcome {
	if e.InInput {
		return Outcome{}
	}
	mod := e.Ctrl || e.Meta
	switch k := strings.ToLower(e.Key); {
	case k == "escape":
		c.cancel()
	case k == "delete" || k == "backspace":
		i := c.state.Selected
		if i < 0 {
			i = c.state.Hovered
		}
		if i >= 0 {
			return c.removeShape(i)
		}
	case mod && k == "z" && e.Shift:
		return c.Redo()
	case mod && k == "z":
		return c.Undo()
	case mod && k == "y":
		return c.Redo()
	}
	return Outcome{}
}

func (c *Controller) cancel() {
	c.machine.Cancel()
	if c.state.Drag == DragPlayer && c.state.pre != nil {
		c.positions = c.state.pre.Positions.Clone()
	}
	if (c.state.Drag == DragShape || c.state.Drag == DragVertex) && c.state.pre != nil {
		c.machine.SetPaths(c.state.pre.Paths)
	}
	c.state.endGesture()
	c.state.clearSelection()
}

func (c *Controller) removeShape(i int) Outcome {
	pre := c.capture()
	if !c.machine.Remove(i) {
		return Outcome{}
	}
	c.state.endGesture()
	c.state.clearSelection()
	return c.commitWith(pre, "delete")
}

// Undo restores the state before the last committed gesture.
func (c *Controller) Undo() Outcome {
	if c.state.Drag != DragNone || c.machine.Active() {
		c.cancel()
	}
	prev, ok := c.history.Undo(*c.capture())
	if !ok {
		return Outcome{}
	}
	c.restore(prev)
	c.persist("undo")
	return Outcome{Committed: true}
}

// Redo re-applies the last undone gesture.
func (c *Controller) Redo() Outcome {
	if c.state.Drag != DragNone || c.machine.Active() {
		c.cancel()
	}
	next, ok := c.history.Redo(*c.capture())
	if !ok {
		return Outcome{}
	}
	c.restore(next)
	c.persist("redo")
	return Outcome{Committed: true}
}

func (c *Controller) restore(e history.Entry) {
	c.positions = e.Positions.Clone()
	if c.positions == nil {
		c.positions = make(core.Positions)
	}
	c.active = e.ActivePlayers
	c.machine.SetPaths(e.Paths)
	c.state.clearSelection()
}

// commitWith pushes the pre-gesture state and persists the live state.
func (c *Controller) commitWith(pre *history.Entry, kind string) Outcome {
	if pre != nil {
		c.history.Push(*pre)
	}
	c.persist(kind)
	// a polygon still under construction undoes back to this commit
	if c.machine.Building() {
		c.state.pre = c.capture()
	}
	return Outcome{Committed: true}
}

func (c *Controller) persist(kind string) {
	snap := c.Snapshot()
	rev := c.store.Commit(c.key, &snap)
	c.enqueue(c.key)
	c.metrics.commit(kind)
	c.logger.Debug("committed", "key", c.key.String(), "kind", kind, "revision", rev)
}

func (c *Controller) enqueue(keys ...core.Key) {
	if c.writer != nil && len(keys) > 0 {
		c.writer.Enqueue(keys...)
	}
}
