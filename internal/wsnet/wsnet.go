// Package wsnet implements the duplex client transport of spec.md §6:
// each client holds one persistent connection carrying JSON envelopes
// (internal/protocol.Inbound/Outbound) in both directions. Grounded on
// lox-pokerforbots' internal/server/connection.go (read/write pump pair,
// ping/pong keepalive, bounded outbound queue), adapted from gorilla/
// websocket's *websocket.Conn to internal/protocol's envelope types.
package wsnet

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vctt94/pokertable/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
	sendBufferSize = 256
)

// Conn wraps one client's websocket connection: a readPump delivering
// decoded Inbound messages to Handler, and a writePump draining Send.
// Both pumps stop when ctx is cancelled or the socket errors; Close is
// idempotent.
type Conn struct {
	ws   *websocket.Conn
	send chan protocol.Outbound

	// Handler is invoked from the read goroutine for every successfully
	// decoded Inbound message. It must not block for long: a slow Handler
	// delays reading (and therefore pong deadlines) on this connection
	// only, never other connections.
	Handler func(protocol.Inbound)

	// OnClose, if set, is invoked once when the connection's pumps have
	// both stopped, so the caller (typically a session/table binding) can
	// clean up without polling Done.
	OnClose func()

	closeOnce sync.Once
	done      chan struct{}
}

// NewConn wraps an already-upgraded *websocket.Conn.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws, send: make(chan protocol.Outbound, sendBufferSize), done: make(chan struct{})}
}

// Run starts the read and write pumps and blocks until both exit (ctx
// cancellation, a read/write error, or Close). Call it in its own
// goroutine per connection.
func (c *Conn) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.readPump(ctx, cancel) }()
	go func() { defer wg.Done(); c.writePump(ctx) }()
	wg.Wait()
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.OnClose != nil {
			c.OnClose()
		}
	})
}

// Send enqueues msg for delivery, dropping it if the outbound buffer is
// already full rather than blocking the caller (the caller is typically a
// table's single executor goroutine via internal/broadcast, which must
// never stall on a slow client).
func (c *Conn) Send(msg protocol.Outbound) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the connection's pumps and closes the underlying socket.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// Done is closed once both pumps have exited and cleanup has run.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		var msg protocol.Inbound
		if err := c.ws.ReadJSON(&msg); err != nil {
			return
		}
		if c.Handler != nil {
			c.Handler(msg)
		}
	}
}

func (c *Conn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Upgrader is the shared server-side websocket upgrader. CheckOrigin
// always allows: origin policy is left to a reverse proxy in front of
// cmd/pokersrv, matching the teacher's deployment model.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
