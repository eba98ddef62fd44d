package core

// PathType is the drawing construct a Path was made with.
type PathType string

const (
	PathDraw     PathType = "draw"
	PathLine     PathType = "line"
	PathArrow    PathType = "arrow"
	PathPolygon  PathType = "polygon"
	PathRect     PathType = "rect"
	PathTriangle PathType = "triangle"
)

// Valid reports whether t is a known construct.
func (t PathType) Valid() bool {
	switch t {
	case PathDraw, PathLine, PathArrow, PathPolygon, PathRect, PathTriangle:
		return true
	}
	return false
}

// HasVertices reports whether individual points of the construct are editable handles.
func (t PathType) HasVertices() bool {
	return t == PathPolygon || t == PathLine || t == PathTriangle
}

// MinPoints is the smallest point count a committed path of this type may have.
func (t PathType) MinPoints() int {
	switch t {
	case PathLine, PathRect, PathPolygon, PathTriangle, PathArrow:
		return 2
	}
	return 1
}

// Path is a committed vector shape.
//
// A path is either absolute (Anchor empty, Points are court coordinates) or
// anchored (Anchor names a player, Points are offsets from that player's live
// position). Points slices are never mutated in place once a path is
// committed; edits build a new slice so history entries can share them.
type Path struct {
	Points      []Point  `json:"points"`
	Color       string   `json:"color"`
	Type        PathType `json:"type"`
	Anchor      string   `json:"anchorId,omitempty"`
	Modifiers   []string `json:"modifiers,omitempty"`
	WidthFactor float64  `json:"widthFactor,omitempty"`
}

// Anchored reports whether the path tracks a player.
func (p Path) Anchored() bool {
	return p.Anchor != ""
}

// Resolve returns the absolute points of the path. An anchored path whose
// anchor has no position resolves to nothing and ok is false.
func (p Path) Resolve(positions Positions) (pts []Point, ok bool) {
	if !p.Anchored() {
		return p.Points, true
	}
	origin, found := positions[p.Anchor]
	if !found {
		return nil, false
	}
	pts = make([]Point, len(p.Points))
	for i, rel := range p.Points {
		pts[i] = origin.Add(rel)
	}
	return pts, true
}

// WithAbsolutePoints returns a copy of p whose geometry is abs, converted back
// to anchor offsets when the path is anchored.
func (p Path) WithAbsolutePoints(abs []Point, positions Positions) Path {
	out := p
	out.Points = make([]Point, len(abs))
	var origin Point
	if p.Anchored() {
		origin = positions[p.Anchor]
	}
	for i, pt := range abs {
		out.Points[i] = pt.Sub(origin)
	}
	return out
}

// Translate returns a copy of p moved by d. Anchored paths move their offsets.
func (p Path) Translate(d Point) Path {
	out := p
	out.Points = make([]Point, len(p.Points))
	for i, pt := range p.Points {
		out.Points[i] = pt.Add(d)
	}
	return out
}

// Clone returns a copy of p that shares no slices with it.
func (p Path) Clone() Path {
	out := p
	out.Points = append([]Point(nil), p.Points...)
	if p.Modifiers != nil {
		out.Modifiers = append([]string(nil), p.Modifiers...)
	}
	return out
}

// Wellformed checks the point-count invariants of the construct.
func (p Path) Wellformed() bool {
	if !p.Type.Valid() || len(p.Points) < p.Type.MinPoints() {
		return false
	}
	if p.Type == PathLine || p.Type == PathRect {
		return len(p.Points) == 2
	}
	return true
}
