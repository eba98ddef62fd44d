package geo

import (
	"math"

	"github.com/courtplan/courtplan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

func toPoint(p core.Point) (geom.Point, error) {
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}, Type: geom.DimXY})
}

func toSequence(pts []core.Point, closed bool) geom.Sequence {
	flat := make([]float64, 0, len(pts)*2+2)
	for _, p := range pts {
		flat = append(flat, p.X, p.Y)
	}
	if closed && len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		flat = append(flat, pts[0].X, pts[0].Y)
	}
	return geom.NewSequence(flat, geom.DimXY)
}

// ContainsPoint reports whether p is inside (or on the boundary of) the polygon
// whose vertices are ring. The ring is closed implicitly.
//
// Hand-drawn rings may cross themselves, so ring validation is skipped and
// containment follows the even-odd rule.
func ContainsPoint(ring []core.Point, p core.Point) bool {
	if len(ring) < 3 {
		return false
	}
	pt, err := toPoint(p)
	if err != nil {
		return false
	}
	shell, err := geom.NewLineString(toSequence(ring, true), geom.DisableAllValidations)
	if err != nil {
		return false
	}
	poly, err := geom.NewPolygon([]geom.LineString{shell}, geom.DisableAllValidations)
	if err != nil {
		return false
	}
	return geom.Intersects(poly.AsGeometry(), pt.AsGeometry())
}

// DistanceToPolyline returns the shortest distance from p to the open
// polyline through pts. A single point degenerates to point distance.
func DistanceToPolyline(pts []core.Point, p core.Point) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return pts[0].Dist(p)
	}
	pt, err := toPoint(p)
	if err != nil {
		return math.Inf(1)
	}
	// a stroke sampled at rest repeats its points
	ls, err := geom.NewLineString(toSequence(pts, false), geom.DisableAllValidations)
	if err != nil {
		return math.Inf(1)
	}
	d, ok := geom.Distance(ls.AsGeometry(), pt.AsGeometry())
	if !ok {
		return math.Inf(1)
	}
	return d
}
