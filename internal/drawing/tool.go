package drawing

import (
	"fmt"

	"github.com/courtplan/courtplan/pkg/core"
)

// Tool is the active pointer tool.
type Tool string

const (
	ToolMove     Tool = "move"
	ToolDraw     Tool = "draw"
	ToolLine     Tool = "line"
	ToolArrow    Tool = "arrow"
	ToolPolygon  Tool = "polygon"
	ToolRect     Tool = "rect"
	ToolTriangle Tool = "triangle"
)

// ParseTool validates a tool name.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolMove, ToolDraw, ToolLine, ToolArrow, ToolPolygon, ToolRect, ToolTriangle:
		return t, nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// PathType returns the construct a drawing tool produces. ok is false for ToolMove.
func (t Tool) PathType() (core.PathType, bool) {
	switch t {
	case ToolDraw:
		return core.PathDraw, true
	case ToolLine:
		return core.PathLine, true
	case ToolArrow:
		return core.PathArrow, true
	case ToolPolygon:
		return core.PathPolygon, true
	case ToolRect:
		return core.PathRect, true
	case ToolTriangle:
		return core.PathTriangle, true
	}
	return "", false
}

// ClickBased reports whether the tool builds its shape over several clicks.
func (t Tool) ClickBased() bool {
	return t == ToolPolygon || t == ToolTriangle
}

// Drags reports whether the tool draws within a single press-drag-release gesture.
func (t Tool) Drags() bool {
	switch t {
	case ToolDraw, ToolLine, ToolArrow, ToolRect:
		return true
	}
	return false
}
