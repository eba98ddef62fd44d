package dispatcher

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	// ErrUnknownCommand is returned by Dispatch when no handler is registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a non-blocking buffered handler drops an event.
	ErrQueueFull = errors.New("queue full")
	// ErrClosed is returned for buffered commands dispatched after Close.
	ErrClosed = errors.New("dispatcher closed")
)

// Queued is the result of a buffered dispatch.
const Queued = "queued"

// Event is one planner command read from a script line or a client.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

type HandlerFunc func(Event) (any, error)

// Logger is the trace sink for Logged handlers and buffered failures.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*route)

// Buffered runs the handler on its own goroutine behind a queue of size
// events. Dispatch returns Queued without waiting for the result.
func Buffered(size int) Option {
	return func(r *route) { r.size = size }
}

// Blocking makes a full buffered queue wait for room instead of dropping.
func Blocking() Option {
	return func(r *route) { r.blocking = true }
}

// Logged traces every call at debug level and failures at error level.
func Logged() Option {
	return func(r *route) { r.logged = true }
}

type route struct {
	command  string
	fn       HandlerFunc
	size     int
	blocking bool
	logged   bool
	queue    chan Event
}

// Dispatcher routes events to registered handlers. Handlers are registered
// up front; Dispatch may then be called from any goroutine.
type Dispatcher struct {
	logger  Logger
	metrics *metrics

	mu      sync.RWMutex
	routes  map[string]*route
	closed  bool
	drained sync.WaitGroup
}

// New uses the global OTel meter, a no-op until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger: logger,
		routes: make(map[string]*route),
	}
	m, err := newMetrics(d.queueDepths)
	if err != nil {
		return nil, err
	}
	d.metrics = m
	return d, nil
}

// Register binds command to h, replacing an earlier registration.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	r := &route{command: command, fn: h}
	for _, opt := range opts {
		opt(r)
	}
	if r.logged {
		r.fn = d.traced(command, r.fn)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if r.size > 0 {
		r.queue = make(chan Event, r.size)
		d.drained.Add(1)
		go d.consume(r)
	}
	d.routes[command] = r
}

func (d *Dispatcher) lookup(command string) (*route, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.routes[command]
	return r, ok
}

// Dispatch runs the handler for e.Command. Events without a timestamp are
// stamped with the current time.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	r, ok := d.lookup(e.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if r.queue == nil {
		res, err := r.fn(e)
		d.metrics.processed(e.Command, false)
		return res, err
	}
	return d.enqueue(r, e)
}

func (d *Dispatcher) enqueue(r *route, e Event) (any, error) {
	// The read lock keeps Close from closing the queue mid-send.
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, fmt.Errorf("%w: %s", ErrClosed, r.command)
	}
	if r.blocking {
		r.queue <- e
		return Queued, nil
	}
	select {
	case r.queue <- e:
		return Queued, nil
	default:
		d.metrics.drop(r.command)
		return nil, fmt.Errorf("%w: %s", ErrQueueFull, r.command)
	}
}

func (d *Dispatcher) consume(r *route) {
	defer d.drained.Done()
	for e := range r.queue {
		if _, err := r.fn(e); err != nil {
			d.logger.Error("buffered event failed", "command", r.command, "error", err)
		}
		d.metrics.processed(r.command, true)
	}
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.lookup(command)
	return ok
}

// Commands lists the registered commands in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.routes))
	for c := range d.routes {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Close stops accepting buffered events and waits until every queue has
// drained. Synchronous handlers keep working. Close is idempotent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, r := range d.routes {
		if r.queue != nil {
			close(r.queue)
		}
	}
	d.mu.Unlock()
	d.drained.Wait()
}

func (d *Dispatcher) queueDepths() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	depths := make(map[string]int)
	for c, r := range d.routes {
		if r.queue != nil {
			depths[c] = len(r.queue)
		}
	}
	return depths
}

func (d *Dispatcher) traced(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))
		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		return result, nil
	}
}
