package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/kodexlabs/chat-widget/internal/domain"
	"github.com/kodexlabs/chat-widget/internal/protocol"
)

const dialTimeout = 10 * time.Second
const writeTimeout = 5 * time.Second

// ReconnectPolicy governs re-establishment of a dropped connection.
type ReconnectPolicy struct {
	// Delay is the fixed wait before a reconnect attempt.
	Delay time.Duration
	// MaxAttempts bounds consecutive failed attempts; 0 means unlimited.
	// The counter resets whenever a connection opens.
	MaxAttempts int
}

// Conn owns the single permitted transport connection for a widget instance:
// handshake, send gating, receive dispatch, and the guarded reconnect loop.
//
// State machine: Disconnected -> Connecting -> Open -> Closed, with Closed
// re-entering Connecting after the policy delay. The reconnect timer is the
// single source of truth for retrying; it is guarded at fire time by the
// cancellation flag and by checking that no live handle exists, so at most
// one attempt is ever in flight per dropped connection.
type Conn struct {
	url          string
	userID       string
	policy       ReconnectPolicy
	pingInterval time.Duration
	onFrame      func(*protocol.Frame)
	onState      func(connected bool)

	mu        sync.Mutex
	ws        *websocket.Conn
	state     domain.ConnState
	attempts  int
	cancelled bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewConn creates an unconnected manager. onFrame receives every decoded
// inbound frame; onState receives connected-indicator toggles. Both run on
// the connection's read goroutine.
func NewConn(url, userID string, policy ReconnectPolicy, pingInterval time.Duration,
	onFrame func(*protocol.Frame), onState func(connected bool)) *Conn {
	return &Conn{
		url:          url,
		userID:       userID,
		policy:       policy,
		pingInterval: pingInterval,
		onFrame:      onFrame,
		onState:      onState,
		state:        domain.Disconnected,
	}
}

// Connect opens the one permitted connection and sends the login handshake.
// It is a no-op if a connection exists, an attempt is already in flight, or
// the manager has been torn down. A failed dial follows the close path, so
// retry scheduling stays in one place.
func (c *Conn) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.cancelled || c.ws != nil || c.state == domain.Connecting {
		c.mu.Unlock()
		return
	}
	if c.ctx == nil {
		c.ctx, c.cancel = context.WithCancel(ctx)
	}
	c.state = domain.Connecting
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(c.ctx, dialTimeout)
	ws, _, err := websocket.Dial(dialCtx, c.url, nil)
	cancel()
	if err != nil {
		slog.Warn("Failed to connect", "url", c.url, "error", err)
		c.handleClose()
		return
	}

	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		_ = ws.Close(websocket.StatusNormalClosure, "widget closed")
		return
	}
	c.ws = ws
	c.state = domain.Open
	c.attempts = 0
	connCtx, connCancel := context.WithCancel(c.ctx)
	c.mu.Unlock()

	slog.Info("Connected", "url", c.url, "user_id", c.userID)
	c.notifyState(true)

	// The login handshake goes out before anything else on the wire.
	if err := c.write(ws, protocol.NewLogin(c.userID)); err != nil {
		slog.Warn("Failed to send login handshake", "error", err)
	}

	go c.readLoop(connCtx, connCancel, ws)
	if c.pingInterval > 0 {
		go c.pingLoop(connCtx)
	}
}

// Send transmits a JSON-encodable envelope if and only if the connection is
// open; otherwise it is a silent no-op.
func (c *Conn) Send(v interface{}) {
	c.mu.Lock()
	ws := c.ws
	open := c.state == domain.Open
	c.mu.Unlock()

	if !open || ws == nil {
		return
	}
	if err := c.write(ws, v); err != nil {
		slog.Debug("Websocket write error", "error", err)
	}
}

// State returns the current connection state.
func (c *Conn) State() domain.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether sends are currently permitted.
func (c *Conn) Connected() bool {
	return c.State() == domain.Open
}

// Teardown closes the connection and guarantees no reconnect fires
// afterwards: the cancellation flag is checked both here and when any
// pending reconnect timer fires.
func (c *Conn) Teardown() {
	c.mu.Lock()
	alreadyCancelled := c.cancelled
	c.cancelled = true
	ws := c.ws
	c.ws = nil
	c.state = domain.Disconnected
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		_ = ws.Close(websocket.StatusNormalClosure, "widget closed")
		c.notifyState(false)
	}
	if !alreadyCancelled {
		slog.Info("Connection torn down", "user_id", c.userID)
	}
}

func (c *Conn) readLoop(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn) {
	defer cancel()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("Connection closed by server")
			} else {
				slog.Warn("Connection read error", "error", err)
			}
			c.handleClose()
			return
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			slog.Warn("Dropping malformed frame", "error", err)
			continue
		}
		c.onFrame(frame)
	}
}

// pingLoop keeps the connection warm while it is open.
func (c *Conn) pingLoop(ctx context.Context) {
	t := time.NewTicker(c.pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Send(protocol.NewPing())
		}
	}
}

// handleClose marks the connection down, clears the handle, and schedules
// the guarded reconnect. It is the single authority for scheduling retries.
func (c *Conn) handleClose() {
	c.mu.Lock()
	c.ws = nil
	if c.cancelled {
		c.state = domain.Disconnected
		c.mu.Unlock()
		return
	}
	c.state = domain.Closed
	c.mu.Unlock()

	c.notifyState(false)
	c.scheduleReconnect()
}

func (c *Conn) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelled {
		return
	}
	if c.policy.MaxAttempts > 0 && c.attempts >= c.policy.MaxAttempts {
		slog.Warn("Reconnect attempts exhausted", "attempts", c.attempts)
		return
	}
	c.attempts++

	time.AfterFunc(c.policy.Delay, func() {
		c.mu.Lock()
		// Guarded at fire time: teardown may have happened meanwhile, or a
		// live connection may already exist.
		if c.cancelled || c.ws != nil || c.state == domain.Connecting {
			c.mu.Unlock()
			return
		}
		ctx := c.ctx
		c.mu.Unlock()

		slog.Info("Attempting reconnect", "url", c.url)
		c.Connect(ctx)
	})
}

func (c *Conn) write(ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}

func (c *Conn) notifyState(connected bool) {
	if c.onState != nil {
		c.onState(connected)
	}
}
