// pkg/core/types.go
package core

import "math"

// CourtMin and CourtMax bound the percentage coordinate space of the court.
const (
	CourtMin = 0.0
	CourtMax = 100.0
)

// Point is a position in court percentage space, (0,0) top-left, net at the top.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// OnCourt reports whether p lies inside the court square, edges included.
func (p Point) OnCourt() bool {
	return p.Finite() &&
		p.X >= CourtMin && p.X <= CourtMax &&
		p.Y >= CourtMin && p.Y <= CourtMax
}

// Clamp hard-clamps p into the court square.
func (p Point) Clamp() Point {
	return Point{X: clamp(p.X, CourtMin, CourtMax), Y: clamp(p.Y, CourtMin, CourtMax)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Positions maps player id to court position.
type Positions map[string]Point

// Clone returns an independent copy of the map.
func (p Positions) Clone() Positions {
	if p == nil {
		return nil
	}
	out := make(Positions, len(p))
	for id, pt := range p {
		out[id] = pt
	}
	return out
}

// Role is a roster role. Only RoleLibero carries rules in the planner.
type Role string

const (
	RoleSetter              Role = "Setter"
	RoleOutsideHitter       Role = "Outside Hitter"
	RoleMiddleBlocker       Role = "Middle Blocker"
	RoleOpposite            Role = "Opposite"
	RoleLibero              Role = "Libero"
	RoleDefensiveSpecialist Role = "Defensive Specialist"
)

// Player is a roster entry supplied by the roster collaborator.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Role   Role   `json:"role"`
}

// IsLibero reports whether the player is restricted to back-row zones.
func (p Player) IsLibero() bool {
	return p.Role == RoleLibero
}
