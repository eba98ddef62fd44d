package session

import (
	"log/slog"
	"sync"

	"github.com/courtplan/courtplan/pkg/core"
)

// Context holds the lineup being planned and the snapshot key in focus.
type Context struct {
	mu     sync.RWMutex
	Lineup *core.Lineup
	Key    core.Key
	active bool
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Lineup: &core.Lineup{Name: "No lineup loaded"},
	}
}

// GetLineup returns the current lineup
func (c *Context) GetLineup() *core.Lineup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Lineup
}

// SetLineup swaps the lineup and forgets the focused key.
func (c *Context) SetLineup(l *core.Lineup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lineup = l
	c.Key = core.Key{}
	c.active = false
}

// GetKey returns the focused snapshot key and whether one was entered yet.
func (c *Context) GetKey() (core.Key, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Key, c.active
}

func (c *Context) SetKey(k core.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Key = k
	c.active = true
}

// LogAttrs is a logging.AttrSource.
func (c *Context) LogAttrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	attrs := []slog.Attr{slog.String("lineup", c.Lineup.Name)}
	if c.active {
		attrs = append(attrs, slog.String("snapshot", c.Key.String()))
	}
	return attrs
}
