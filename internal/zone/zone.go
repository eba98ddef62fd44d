// Package zone maps lineup slots to court zones and derives the movement
// bounds volleyball overlap rules place on a player during serve receive.
package zone

import "github.com/courtplan/courtplan/pkg/core"

// sequence is the order in which a slot travels through the zones as the
// team rotates.
var sequence = [core.Rotations]int{1, 6, 5, 4, 3, 2}

// defaults is the stock court position of each zone. The net is at y=0.
var defaults = map[int]core.Point{
	1: {X: 80, Y: 75},
	2: {X: 80, Y: 25},
	3: {X: 50, Y: 25},
	4: {X: 20, Y: 25},
	5: {X: 20, Y: 75},
	6: {X: 50, Y: 75},
}

func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// ZoneOf returns the zone (1-6) occupied by lineup slot (0-5) in rotation (1-6).
func ZoneOf(slot, rotation int) int {
	start := mod(rotation-1, core.Rotations)
	return sequence[mod(start-slot, core.Rotations)]
}

// SlotForZone is the inverse of ZoneOf. It returns -1 for an unknown zone.
func SlotForZone(zone, rotation int) int {
	for slot := 0; slot < core.Rotations; slot++ {
		if ZoneOf(slot, rotation) == zone {
			return slot
		}
	}
	return -1
}

// IsFrontRow reports whether z is a front-row zone (2, 3 or 4).
func IsFrontRow(z int) bool {
	return z == 2 || z == 3 || z == 4
}

// DefaultPosition returns the stock position of a zone.
func DefaultPosition(z int) core.Point {
	return defaults[z]
}

// DefaultLayout places each active player at the stock position of the zone
// their slot occupies in rotation.
func DefaultLayout(active []string, rotation int) core.Positions {
	pos := make(core.Positions, len(active))
	for slot, id := range active {
		if id == "" {
			continue
		}
		pos[id] = DefaultPosition(ZoneOf(slot, rotation))
	}
	return pos
}
