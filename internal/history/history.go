// Package history keeps a bounded undo/redo stack of planner state.
package history

import (
	"sync"

	"github.com/courtplan/courtplan/pkg/core"
)

// DefaultCapacity is the number of undo steps retained.
const DefaultCapacity = 20

// Entry is one restorable state. Entries share Points slices with the live
// state; committed paths are never mutated in place, so sharing is safe.
type Entry struct {
	Positions     core.Positions
	Paths         []core.Path
	ActivePlayers []string
}

// Capture copies the containers of the given state so later replacement of
// map entries or path slots does not leak into the entry.
func Capture(positions core.Positions, paths []core.Path, active []string) Entry {
	e := Entry{
		Positions:     positions.Clone(),
		ActivePlayers: append([]string(nil), active...),
	}
	if paths != nil {
		e.Paths = append(make([]core.Path, 0, len(paths)), paths...)
	}
	return e
}

// Manager is the undo (past) and redo (future) stack pair.
type Manager struct {
	mu       sync.Mutex
	capacity int
	past     []Entry
	future   []Entry
}

// New returns a manager keeping at most capacity undo entries.
// A non-positive capacity uses DefaultCapacity.
func New(capacity int) *Manager {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Manager{capacity: capacity}
}

// Push records e as the state before a committed action and clears the redo
// stack. The oldest entry is dropped when the stack is full.
func (m *Manager) Push(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.past = append(m.past, e)
	if over := len(m.past) - m.capacity; over > 0 {
		m.past = append([]Entry(nil), m.past[over:]...)
	}
	m.future = nil
}

// Undo pops the last pushed entry and returns it, saving current onto the
// redo stack. ok is false when there is nothing to undo.
func (m *Manager) Undo(current Entry) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return Entry{}, false
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, current)
	return prev, true
}

// Redo is the mirror of Undo.
func (m *Manager) Redo(current Entry) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return Entry{}, false
	}
	next := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.past = append(m.past, current)
	if over := len(m.past) - m.capacity; over > 0 {
		m.past = append([]Entry(nil), m.past[over:]...)
	}
	return next, true
}

// Reset empties both stacks, e.g. when switching to another snapshot.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.past = nil
	m.future = nil
}

// Depth returns the number of undo and redo entries.
func (m *Manager) Depth() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past), len(m.future)
}
