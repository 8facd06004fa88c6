// Package feed implements the websocket client for the in-game telemetry
// plugin. The plugin pushes self-contained JSON frames; only the newest one
// matters, so the client keeps a single-slot latest state instead of a queue.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"dysonfactory/internal/core/domain"
)

const (
	handshakeTimeout = 10 * time.Second

	// Heartbeat: ping every 10s, a pong must arrive within 5s.
	pingInterval = 10 * time.Second
	pongTimeout  = 5 * time.Second

	// CurrentState polls the latest-state slot at this interval, up to the
	// wait budget.
	pollInterval     = 100 * time.Millisecond
	defaultWaitLimit = 5 * time.Second
)

// Client maintains the feed connection. States are Disconnected, Connecting,
// Connected; there is no reconnecting state - reconnection happens when a
// caller invokes CurrentState again.
type Client struct {
	url string

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	stopChan  chan struct{}

	// Written only by the receive loop, read by any caller.
	latest atomic.Pointer[domain.FactoryState]

	waitLimit time.Duration
}

// NewClient creates a disconnected client for the given websocket URL,
// e.g. "ws://localhost:8470".
func NewClient(url string) *Client {
	return &Client{
		url:       url,
		waitLimit: defaultWaitLimit,
	}
}

// Connect opens the feed connection and starts the receive and heartbeat
// loops. Already being connected is not an error. A dial failure leaves the
// client disconnected and is reported as ErrConnectionUnavailable.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		slog.Warn("Could not connect to factory feed", "url", c.url, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrConnectionUnavailable, err)
	}

	conn.SetReadDeadline(time.Now().Add(pingInterval + pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pingInterval + pongTimeout))
	})

	c.conn = conn
	c.connected = true
	c.stopChan = make(chan struct{})

	go c.receiveLoop(conn, c.stopChan)
	go c.heartbeat(conn, c.stopChan)

	slog.Info("Connected to factory feed", "url", c.url)
	return nil
}

// IsConnected is true only when the connection is open and at least one
// state has been received; a fresh connection with zero frames is not yet
// usable.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.latest.Load() != nil
}

// Latest returns the last delivered state without connecting or waiting.
func (c *Client) Latest() *domain.FactoryState {
	return c.latest.Load()
}

// CurrentState returns the latest known state. A disconnected client gets
// exactly one connect attempt; after that the latest-state slot is polled up
// to the wait budget.
func (c *Client) CurrentState(ctx context.Context) (*domain.FactoryState, error) {
	if !c.IsConnected() {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	deadline := time.Now().Add(c.waitLimit)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if state := c.latest.Load(); state != nil {
			return state, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w within %s", domain.ErrTimeout, c.waitLimit)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close cancels the receive loop and closes the connection. Idempotent, safe
// to call from any goroutine, and leaves the last delivered state readable.
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	if c.stopChan != nil {
		select {
		case <-c.stopChan:
		default:
			close(c.stopChan)
		}
	}
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
		slog.Info("Factory feed connection closed")
	}
}

// receiveLoop decodes every inbound frame into a fresh FactoryState and
// atomically replaces the latest-state slot. Any transport or decode error
// transitions the client to disconnected and stops the loop.
func (c *Client) receiveLoop(conn *websocket.Conn, stop chan struct{}) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-stop:
				// Closed by Close; already logged there.
			default:
				slog.Info("Factory feed connection lost", "error", err)
			}
			c.markDisconnected(conn, stop)
			return
		}

		var frame domain.RawFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			slog.Error("Failed to decode feed frame", "error", err, "bytes", len(message))
			c.markDisconnected(conn, stop)
			return
		}

		c.latest.Store(domain.FromRealtimeData(frame))
		slog.Debug("Received state update", "bytes", len(message))
	}
}

// heartbeat pings the plugin on a fixed interval. A failed write counts as a
// transport failure; a missing pong trips the read deadline in receiveLoop.
func (c *Client) heartbeat(conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pongTimeout)); err != nil {
				slog.Warn("Feed heartbeat failed", "error", err)
				c.markDisconnected(conn, stop)
				return
			}
		}
	}
}

// markDisconnected transitions to disconnected for the given connection
// generation. A stale call from a superseded connection is a no-op.
func (c *Client) markDisconnected(conn *websocket.Conn, stop chan struct{}) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.connected = false
	}
	select {
	case <-stop:
	default:
		close(stop)
	}
	c.mu.Unlock()

	conn.Close()
}
