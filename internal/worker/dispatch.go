package worker

import (
	"fmt"
	"strings"

	"github.com/courtplan/courtplan/internal/dispatcher"
	"github.com/courtplan/courtplan/internal/drawing"
)

// RegisterHandlers registers all command handlers with the dispatcher.
// Handlers that touch the controller run synchronously on the caller's
// goroutine; the controller is not safe for concurrent use.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Session - sync
	d.Register(":RESIZE:", m.handleResize, dispatcher.Logged())
	d.Register(":ENTER:", m.handleEnter, dispatcher.Logged())
	d.Register(":TOOL:", m.handleTool, dispatcher.Logged())
	d.Register(":COLOR:", m.handleColor, dispatcher.Logged())

	// Pointer and keyboard input - sync
	d.Register(":DOWN:", m.handleDown)
	d.Register(":MOVE:", m.handleMove)
	d.Register(":UP:", m.handleUp)
	d.Register(":DBLCLICK:", m.handleDoubleClick)
	d.Register(":KEY:", m.handleKey, dispatcher.Logged())

	// Edits - sync
	d.Register(":NOTES:", m.handleNotes, dispatcher.Logged())
	d.Register(":SUB:", m.handleSubstitution, dispatcher.Logged())
	d.Register(":UNDO:", m.handleUndo, dispatcher.Logged())
	d.Register(":REDO:", m.handleRedo, dispatcher.Logged())

	// Output - sync
	d.Register(":FRAME:", m.handleFrame)
	d.Register(":FLUSH:", m.handleFlush, dispatcher.Logged())

	// Script logging - buffered
	d.Register(":LOG:", m.handleLog, dispatcher.Buffered(1000), dispatcher.Blocking())
}

func (m *Manager) args(e dispatcher.Event) []string {
	return m.deps.ParserService.Clean(e.Args)
}

func (m *Manager) requireEntered() error {
	if _, ok := m.deps.Session.GetKey(); !ok {
		return ErrNotEntered
	}
	return nil
}

func (m *Manager) handleResize(e dispatcher.Event) (any, error) {
	vp, err := m.deps.ParserService.ParseViewport(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewport: %w", err)
	}
	if err := m.deps.Controller.Resize(vp); err != nil {
		return nil, err
	}
	return vp, nil
}

func (m *Manager) handleEnter(e dispatcher.Event) (any, error) {
	k, err := m.deps.ParserService.ParseKey(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot key: %w", err)
	}
	if err := m.deps.Controller.Enter(k); err != nil {
		return nil, err
	}
	m.deps.Session.SetKey(k)
	return k.String(), nil
}

func (m *Manager) handleTool(e dispatcher.Event) (any, error) {
	args := m.args(e)
	if len(args) != 1 {
		return nil, fmt.Errorf("tool: expected 1 arg, got %d", len(args))
	}
	t, err := drawing.ParseTool(args[0])
	if err != nil {
		return nil, err
	}
	return m.deps.Controller.SetTool(t), nil
}

func (m *Manager) handleColor(e dispatcher.Event) (any, error) {
	args := m.args(e)
	if len(args) != 1 || args[0] == "" {
		return nil, fmt.Errorf("color: expected 1 arg, got %d", len(args))
	}
	m.deps.Controller.SetColor(args[0])
	return nil, nil
}

func (m *Manager) handleDown(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	p, err := m.deps.ParserService.ParsePointer(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pointer: %w", err)
	}
	return m.deps.Controller.PointerDown(p), nil
}

func (m *Manager) handleMove(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	p, err := m.deps.ParserService.ParsePointer(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pointer: %w", err)
	}
	return m.deps.Controller.PointerMove(p), nil
}

func (m *Manager) handleUp(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	p, err := m.deps.ParserService.ParsePointer(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pointer: %w", err)
	}
	return m.deps.Controller.PointerUp(p), nil
}

func (m *Manager) handleDoubleClick(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	p, err := m.deps.ParserService.ParsePointer(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pointer: %w", err)
	}
	return m.deps.Controller.DoubleClick(p), nil
}

func (m *Manager) handleKey(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	ke, err := m.deps.ParserService.ParseKeyEvent(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse key event: %w", err)
	}
	return m.deps.Controller.HandleKey(ke), nil
}

func (m *Manager) handleNotes(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	return m.deps.Controller.SetNotes(strings.Join(m.args(e), " ")), nil
}

func (m *Manager) handleSubstitution(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	benchID, courtID, err := m.deps.ParserService.ParseSubstitution(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse substitution: %w", err)
	}
	return m.deps.Controller.Substitute(benchID, courtID), nil
}

func (m *Manager) handleUndo(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	return m.deps.Controller.Undo(), nil
}

func (m *Manager) handleRedo(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	return m.deps.Controller.Redo(), nil
}

func (m *Manager) handleFrame(e dispatcher.Event) (any, error) {
	if err := m.requireEntered(); err != nil {
		return nil, err
	}
	return FrameResult{Seq: m.frames.Inc(), Frame: m.deps.Controller.Frame()}, nil
}

func (m *Manager) handleFlush(e dispatcher.Event) (any, error) {
	if m.deps.Writer == nil {
		return FlushResult{}, nil
	}
	return FlushResult{Written: m.deps.Writer.Flush()}, nil
}

func (m *Manager) handleLog(e dispatcher.Event) (any, error) {
	level, text, err := m.deps.ParserService.ParseLog(m.args(e))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log: %w", err)
	}
	m.deps.LogManager.WriteLog(e.Command, text, level)
	return nil, nil
}
