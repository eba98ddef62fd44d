package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/courtplan/courtplan/pkg/core"
	"github.com/google/uuid"
)

// loadLineup reads a lineup JSON file. A lineup without an id gets a fresh
// UUID so every storage backend scopes it the same way.
func loadLineup(path string) (*core.Lineup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lineup: %w", err)
	}
	var l core.Lineup
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to decode lineup %s: %w", path, err)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lineup %s: %w", path, err)
	}
	return &l, nil
}
