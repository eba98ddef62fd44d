package geo

import (
	"errors"

	"github.com/courtplan/courtplan/pkg/core"
)

// COURT SPACE vs PIXEL SPACE
// Shapes and players are stored in court percentages so they survive resizes.
// Hit tests run in pixels of the rendered court, converted with the live
// viewport, because control sizes and tolerances are defined in pixels.

// ErrInvalidViewport is returned when the rendered court has no area.
var ErrInvalidViewport = errors.New("viewport must have positive width and height")

// Viewport is the rendered court size in container pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate checks that the viewport can convert coordinates.
func (v Viewport) Validate() error {
	if !(v.Width > 0) || !(v.Height > 0) {
		return ErrInvalidViewport
	}
	return nil
}

// ToPixels converts a court point to pixel space.
func (v Viewport) ToPixels(p core.Point) core.Point {
	return core.Point{X: p.X / core.CourtMax * v.Width, Y: p.Y / core.CourtMax * v.Height}
}

// ToCourt converts a pixel point to court space.
func (v Viewport) ToCourt(px core.Point) core.Point {
	return core.Point{X: px.X / v.Width * core.CourtMax, Y: px.Y / v.Height * core.CourtMax}
}

// AllToPixels converts a slice of court points.
func (v Viewport) AllToPixels(pts []core.Point) []core.Point {
	out := make([]core.Point, len(pts))
	for i, p := range pts {
		out[i] = v.ToPixels(p)
	}
	return out
}

// Scale is the control scale factor relative to a 500px wide court.
func (v Viewport) Scale() float64 {
	const reference = 500.0
	s := v.Width / reference
	if s < 0.6 {
		return 0.6
	}
	return s
}

// Centroid returns the mean of pts.
func Centroid(pts []core.Point) core.Point {
	if len(pts) == 0 {
		return core.Point{}
	}
	var c core.Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return core.Point{X: c.X / n, Y: c.Y / n}
}

// InBox reports whether p lies in the axis-aligned box spanned by corners a and b.
func InBox(a, b, p core.Point) bool {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}
