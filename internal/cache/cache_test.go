package cache

import (
	"sync"
	"testing"

	"github.com/courtplan/courtplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLineup() *core.Lineup {
	return &core.Lineup{
		ID:   "l1",
		Name: "Varsity",
		Roster: []core.Player{
			{ID: "s", Name: "Setter", Role: core.RoleSetter},
			{ID: "lib", Name: "Libero", Role: core.RoleLibero},
		},
	}
}

func TestRosterCache_Load(t *testing.T) {
	c := NewRosterCache()
	c.Load(testLineup())

	assert.Equal(t, 2, c.Len())
	p, ok := c.Player("lib")
	require.True(t, ok)
	assert.True(t, p.IsLibero())

	_, ok = c.Player("ghost")
	assert.False(t, ok)
}

func TestRosterCache_LoadReplaces(t *testing.T) {
	c := NewRosterCache()
	c.Load(&core.Lineup{Roster: []core.Player{{ID: "old", Role: core.RoleDefensiveSpecialist}}})
	c.Load(testLineup())

	_, ok := c.Player("old")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestRosterCache_Empty(t *testing.T) {
	c := NewRosterCache()
	assert.Zero(t, c.Len())

	_, ok := c.Player("s")
	assert.False(t, ok)
}

func TestRosterCache_Concurrent(t *testing.T) {
	c := NewRosterCache()
	c.Load(testLineup())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Player("s")
		}()
		go func() {
			defer wg.Done()
			c.Load(testLineup())
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, c.Len())
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter
	assert.Equal(t, 0, c.Value())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Value())
	assert.Equal(t, 101, c.Inc())
}
