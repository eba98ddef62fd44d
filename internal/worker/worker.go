package worker

import (
	"errors"

	"github.com/courtplan/courtplan/internal/cache"
	"github.com/courtplan/courtplan/internal/interaction"
	"github.com/courtplan/courtplan/internal/logging"
	"github.com/courtplan/courtplan/internal/parser"
	"github.com/courtplan/courtplan/internal/session"
)

// ErrNotEntered is returned when input arrives before any snapshot was entered.
var ErrNotEntered = errors.New("no snapshot entered")

// Flusher forces pending snapshot writes.
type Flusher interface {
	Flush() int
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Controller    *interaction.Controller
	Writer        Flusher
	Session       *session.Context
	LogManager    *logging.SlogManager
	ParserService *parser.Parser
}

// Manager turns dispatched commands into controller calls.
type Manager struct {
	deps   Dependencies
	frames cache.SafeCounter
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Session == nil {
		deps.Session = session.NewContext()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.ParserService == nil {
		deps.ParserService = parser.NewParser(deps.LogManager.Logger())
	}
	return &Manager{deps: deps}
}

// FramesRendered returns how many frames were produced.
func (m *Manager) FramesRendered() int {
	return m.frames.Value()
}

// FrameResult is a render frame with its sequence number.
type FrameResult struct {
	Seq int `json:"seq"`
	interaction.Frame
}

// FlushResult reports a forced write.
type FlushResult struct {
	Written int `json:"written"`
}
