package interaction

import (
	"github.com/courtplan/courtplan/internal/history"
	"github.com/courtplan/courtplan/internal/hittest"
	"github.com/courtplan/courtplan/pkg/core"
)

// DragKind is the gesture a pressed pointer is driving. At most one is active.
type DragKind int

const (
	DragNone DragKind = iota
	DragPlayer
	DragBench
	DragVertex
	DragShape
	DragDrawing
)

func (k DragKind) String() string {
	switch k {
	case DragPlayer:
		return "player"
	case DragBench:
		return "bench"
	case DragVertex:
		return "vertex"
	case DragShape:
		return "shape"
	case DragDrawing:
		return "drawing"
	}
	return "none"
}

// InteractionState is the hover, selection and drag target of the court.
type InteractionState struct {
	Hovered  int          // shape whose controls are showing, -1 for none
	Element  *hittest.Hit // last hover classification
	Selected int          // shape selected for translation or deletion, -1 for none

	Drag     DragKind
	PlayerID string     // DragPlayer, DragBench
	Vertex   int        // DragVertex
	Last     core.Point // previous clamped pointer position, DragShape
	BenchPos core.Point // floating bench token, DragBench
	Changed  bool       // the gesture has mutated state

	// pre is the state before the current gesture began. It is pushed to
	// history only if the gesture commits.
	pre *history.Entry
}

func newState() InteractionState {
	return InteractionState{Hovered: -1, Selected: -1, Vertex: -1}
}

// endGesture clears the drag target but keeps hover and selection.
func (s *InteractionState) endGesture() {
	s.Drag = DragNone
	s.PlayerID = ""
	s.Vertex = -1
	s.Changed = false
	s.pre = nil
}

func (s *InteractionState) clearSelection() {
	s.Hovered = -1
	s.Element = nil
	s.Selected = -1
}
