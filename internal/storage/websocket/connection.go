package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/courtplan/courtplan/pkg/streaming"
	ws "github.com/gorilla/websocket"
)

const (
	outboxSize   = 1024
	maxReconnect = 10
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// initialBackoff is a var so tests can shorten reconnect waits.
var initialBackoff = time.Second

// link is one live socket. dead closes exactly once, when either loop
// gives up on it or the connection shuts down.
type link struct {
	conn *ws.Conn
	dead chan struct{}
	once sync.Once
}

func (l *link) kill() {
	l.once.Do(func() {
		close(l.dead)
		_ = l.conn.Close()
	})
}

// connection keeps one socket to the sync server alive. A single pump
// goroutine per link writes the outbox; a listener routes acks to waiters.
// After a drop the last open_lineup message is replayed on the new socket.
type connection struct {
	url    string
	logger *slog.Logger
	outbox chan []byte
	done   chan struct{}

	mu      sync.Mutex
	live    *link
	closed  bool
	replay  []byte
	waiters map[string][]chan struct{}
}

func newConnection(logger *slog.Logger) *connection {
	return &connection{
		logger:  logger,
		outbox:  make(chan []byte, outboxSize),
		done:    make(chan struct{}),
		waiters: make(map[string][]chan struct{}),
	}
}

// withSecret adds the shared secret as a query parameter.
func withSecret(rawURL, secret string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *connection) dial(rawURL, secret string) error {
	u, err := withSecret(rawURL, secret)
	if err != nil {
		return err
	}
	c.url = u
	conn, err := c.open()
	if err != nil {
		return err
	}
	c.attach(conn)
	return nil
}

func (c *connection) open() (*ws.Conn, error) {
	conn, _, err := ws.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return conn, nil
}

func write(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// attach makes conn the live link and starts its loops. It reports false
// when the connection was closed in the meantime.
func (c *connection) attach(conn *ws.Conn) bool {
	l := &link{conn: conn, dead: make(chan struct{})}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return false
	}
	c.live = l
	c.mu.Unlock()

	go c.pump(l)
	go c.listen(l)
	return true
}

func (c *connection) pump(l *link) {
	for {
		select {
		case <-c.done:
			return
		case <-l.dead:
			return
		case data := <-c.outbox:
			if err := write(l.conn, data); err != nil {
				c.logger.Warn("WebSocket write error", "error", err)
				c.send(data)
				c.fail(l)
				return
			}
		}
	}
}

func (c *connection) listen(l *link) {
	for {
		_, message, err := l.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case <-l.dead:
			default:
				c.logger.Warn("WebSocket read error", "error", err)
				c.fail(l)
			}
			return
		}

		var ack streaming.AckMessage
		if err := json.Unmarshal(message, &ack); err != nil || ack.Type != streaming.TypeAck {
			c.logger.Debug("Non-ack message received", "raw", string(message))
			continue
		}
		c.resolve(ack.For)
	}
}

// fail retires l. Only the first caller for the live link starts a
// reconnect.
func (c *connection) fail(l *link) {
	c.mu.Lock()
	first := !c.closed && c.live == l
	if first {
		c.live = nil
	}
	c.mu.Unlock()

	l.kill()
	if first {
		go c.reconnect()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	return min(2*d, maxBackoff)
}

func (c *connection) reconnect() {
	wait := initialBackoff
	for attempt := 1; attempt <= maxReconnect; attempt, wait = attempt+1, nextBackoff(wait) {
		select {
		case <-c.done:
			return
		case <-time.After(wait):
		}

		c.logger.Info("Reconnecting to WebSocket", "attempt", attempt, "backoff", wait)
		conn, err := c.open()
		if err != nil {
			c.logger.Warn("Reconnect dial failed", "attempt", attempt, "error", err)
			continue
		}

		// The server scopes snapshots by the last lineup it was told about.
		c.mu.Lock()
		replay := c.replay
		c.mu.Unlock()
		if replay != nil {
			if err := write(conn, replay); err != nil {
				c.logger.Warn("Failed to replay open_lineup after reconnect", "error", err)
				_ = conn.Close()
				continue
			}
		}

		if c.attach(conn) {
			c.logger.Info("WebSocket reconnected", "attempt", attempt)
		}
		return
	}
	c.logger.Error("WebSocket reconnect failed after max attempts", "maxAttempts", maxReconnect)
}

// setReplay stores the message re-sent first on every new socket.
func (c *connection) setReplay(data []byte) {
	c.mu.Lock()
	c.replay = data
	c.mu.Unlock()
}

// send queues data for the pump without blocking. A full outbox drops it.
func (c *connection) send(data []byte) {
	select {
	case c.outbox <- data:
	default:
		c.logger.Warn("WebSocket outbox full, dropping message")
	}
}

func (c *connection) resolve(ackFor string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.waiters[ackFor]
	if len(queue) == 0 {
		return
	}
	queue[0] <- struct{}{}
	c.waiters[ackFor] = queue[1:]
}

func (c *connection) forget(ackFor string, ch chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.waiters[ackFor] = slices.DeleteFunc(c.waiters[ackFor], func(w chan struct{}) bool { return w == ch })
}

// sendAndWait queues data and blocks until the server acks ackFor or the
// timeout expires.
func (c *connection) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.waiters[ackFor] = append(c.waiters[ackFor], ch)
	c.mu.Unlock()
	defer c.forget(ackFor, ch)

	c.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return nil
	case <-timer.C:
		return fmt.Errorf("timeout waiting for ack of %q", ackFor)
	case <-c.done:
		return fmt.Errorf("connection closed while waiting for ack of %q", ackFor)
	}
}

// close sends a close frame on the live socket and stops every goroutine.
func (c *connection) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	l := c.live
	c.live = nil
	c.replay = nil
	c.mu.Unlock()

	if l == nil {
		return nil
	}
	err := l.conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	l.kill()
	if err != nil && err != ws.ErrCloseSent {
		return fmt.Errorf("websocket close: %w", err)
	}
	return nil
}
