package cache

import (
	"sync"

	"github.com/courtplan/courtplan/pkg/core"
)

// RosterCache holds the roster of the loaded lineup. Role lookups happen on
// every substitution attempt, so they never touch storage.
type RosterCache struct {
	m       sync.RWMutex
	players map[string]core.Player
}

func NewRosterCache() *RosterCache {
	return &RosterCache{players: make(map[string]core.Player)}
}

// Load replaces the cached roster with the lineup's players.
func (c *RosterCache) Load(l *core.Lineup) {
	c.m.Lock()
	defer c.m.Unlock()
	c.players = make(map[string]core.Player, len(l.Roster))
	for _, p := range l.Roster {
		c.players[p.ID] = p
	}
}

// Player implements interaction.Roster.
func (c *RosterCache) Player(id string) (core.Player, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	p, ok := c.players[id]
	return p, ok
}

func (c *RosterCache) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.players)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

// Inc increments the counter and returns the new value.
func (c *SafeCounter) Inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v++
	return c.v
}
