package hittest

import (
	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/pkg/core"
)

// Control sizes at a 500px court; they scale with the rendered width.
const (
	ButtonRadius    = 12.0
	ButtonSpacing   = 24.0
	ProximityRadius = 50.0
)

// ShapeCenter returns the point the shape's controls are placed around:
// the midpoint of a line, the middle sample of a stroke, else the centroid.
func ShapeCenter(t core.PathType, pts []core.Point) core.Point {
	if len(pts) == 0 {
		return core.Point{}
	}
	switch t {
	case core.PathLine:
		if len(pts) >= 2 {
			return core.Point{X: (pts[0].X + pts[1].X) / 2, Y: (pts[0].Y + pts[1].Y) / 2}
		}
	case core.PathDraw, core.PathArrow:
		return pts[len(pts)/2]
	}
	return geo.Centroid(pts)
}

// Controls is the pixel layout of the buttons shown on a hovered shape.
type Controls struct {
	Center core.Point `json:"center"`
	Delete core.Point `json:"delete"`
	Move   core.Point `json:"move"`
	Radius float64    `json:"radius"`
	Reach  float64    `json:"reach"`
}

// ControlsFor lays out the controls of path in pixel space. ok is false when
// the path cannot be resolved (anchored to a player without a position).
func ControlsFor(path core.Path, positions core.Positions, vp geo.Viewport) (Controls, bool) {
	pts, ok := path.Resolve(positions)
	if !ok || len(pts) == 0 {
		return Controls{}, false
	}
	center := vp.ToPixels(ShapeCenter(path.Type, pts))
	s := vp.Scale()
	return Controls{
		Center: center,
		Delete: core.Point{X: center.X + ButtonSpacing*s, Y: center.Y},
		Move:   core.Point{X: center.X - ButtonSpacing*s, Y: center.Y},
		Radius: ButtonRadius * s,
		Reach:  ProximityRadius * s,
	}, true
}
