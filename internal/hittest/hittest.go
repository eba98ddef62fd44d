// Package hittest classifies a pointer position against drawn shapes, their
// vertices and the controls of the hovered shape. All tests run in pixels.
package hittest

import (
	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/pkg/core"
)

// Kind classifies a hit.
type Kind string

const (
	KindDelete    Kind = "delete"
	KindMove      Kind = "move"
	KindProximity Kind = "ui-proximity"
	KindVertex    Kind = "vertex"
	KindBody      Kind = "shape"
)

// Unscaled pixel tolerances.
const (
	VertexRadius  = 10.0
	LineTolerance = 15.0
)

// Hit is the result of a successful test. Vertex is -1 unless Kind is KindVertex.
type Hit struct {
	Kind   Kind `json:"type"`
	Index  int  `json:"index"`
	Vertex int  `json:"vertexIndex"`
}

// Scene is everything a hit test reads.
type Scene struct {
	Paths     []core.Path
	Positions core.Positions
	Viewport  geo.Viewport
}

// resolved returns a path's pixel-space points.
func (s Scene) resolved(i int) ([]core.Point, bool) {
	pts, ok := s.Paths[i].Resolve(s.Positions)
	if !ok || len(pts) == 0 {
		return nil, false
	}
	return s.Viewport.AllToPixels(pts), true
}

// Test classifies px (container pixels) against the scene. hovered is the
// index of the shape whose controls are showing, or -1. Priority is controls,
// then vertices, then bodies; later shapes win over earlier ones.
func Test(px core.Point, s Scene, hovered int) (Hit, bool) {
	if s.Viewport.Validate() != nil || !px.Finite() {
		return Hit{}, false
	}
	if hovered >= 0 && hovered < len(s.Paths) {
		if h, ok := testControls(px, s, hovered); ok {
			return h, true
		}
	}
	if h, ok := testVertices(px, s); ok {
		return h, true
	}
	return testBodies(px, s)
}

func testControls(px core.Point, s Scene, i int) (Hit, bool) {
	c, ok := ControlsFor(s.Paths[i], s.Positions, s.Viewport)
	if !ok {
		return Hit{}, false
	}
	switch {
	case px.Dist(c.Delete) <= c.Radius:
		return Hit{Kind: KindDelete, Index: i, Vertex: -1}, true
	case px.Dist(c.Move) <= c.Radius:
		return Hit{Kind: KindMove, Index: i, Vertex: -1}, true
	case px.Dist(c.Center) <= c.Reach:
		return Hit{Kind: KindProximity, Index: i, Vertex: -1}, true
	}
	return Hit{}, false
}

func testVertices(px core.Point, s Scene) (Hit, bool) {
	for i := len(s.Paths) - 1; i >= 0; i-- {
		if !s.Paths[i].Type.HasVertices() {
			continue
		}
		pts, ok := s.resolved(i)
		if !ok {
			continue
		}
		for v, p := range pts {
			if px.Dist(p) <= VertexRadius {
				return Hit{Kind: KindVertex, Index: i, Vertex: v}, true
			}
		}
	}
	return Hit{}, false
}

func testBodies(px core.Point, s Scene) (Hit, bool) {
	for i := len(s.Paths) - 1; i >= 0; i-- {
		pts, ok := s.resolved(i)
		if !ok {
			continue
		}
		if bodyContains(s.Paths[i].Type, pts, px) {
			return Hit{Kind: KindBody, Index: i, Vertex: -1}, true
		}
	}
	return Hit{}, false
}

func bodyContains(t core.PathType, pts []core.Point, px core.Point) bool {
	switch t {
	case core.PathPolygon, core.PathTriangle:
		if len(pts) >= 3 {
			return geo.ContainsPoint(pts, px)
		}
		return geo.DistanceToPolyline(pts, px) <= LineTolerance
	case core.PathRect:
		if len(pts) < 2 {
			return false
		}
		return geo.InBox(pts[0], pts[1], px)
	default:
		return geo.DistanceToPolyline(pts, px) <= LineTolerance
	}
}
