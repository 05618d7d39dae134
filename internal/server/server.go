// Package server is the connection-level composition root: it binds one
// client's persistent duplex connection (internal/wsnet) to the Session
// Registry (C7) and Table Registry (C9), dispatching each decoded
// internal/protocol.Inbound message to the owning table and pumping that
// table's internal/broadcast.Hub back out to the connection (C8), per
// spec.md §6's message catalogue and §4.9's routing description.
//
// Grounded on the teacher's pkg/server/{server,handlers}.go request/event
// dispatch shape (there adapted from grpc handler methods; here from
// gorilla/websocket JSON frames), and on decred/slog for subsystem
// logging throughout.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/vctt94/pokertable/internal/betting"
	"github.com/vctt94/pokertable/internal/broadcast"
	"github.com/vctt94/pokertable/internal/clock"
	"github.com/vctt94/pokertable/internal/logging"
	"github.com/vctt94/pokertable/internal/protocol"
	"github.com/vctt94/pokertable/internal/registry"
	"github.com/vctt94/pokertable/internal/session"
	"github.com/vctt94/pokertable/internal/store"
	"github.com/vctt94/pokertable/internal/table"
	"github.com/vctt94/pokertable/internal/wsnet"
)

// Config bundles the server-wide defaults createTable has no fields to
// carry (spec.md §6's createTable message is empty: "Allocate table;
// return tableId").
type Config struct {
	NumSeats      int
	TableConfig   table.Config
	DefaultBuyIn  int64
	SubBufferSize int // per-subscriber broadcast channel depth
}

// Server owns every live connection's session binding and fans inbound
// messages out to the Table Registry. A single Server instance backs an
// entire process; cmd/pokersrv constructs exactly one.
type Server struct {
	cfg      Config
	registry *registry.Registry
	sessions *session.Registry
	identity store.IdentityVerifier
	balance  store.BalanceStore
	recovery store.RecoveryStore
	reconcil store.Reconciler
	clk      clock.Clock
	logs     *logging.Backend
	level    slog.Level
	log      slog.Logger

	mu    sync.Mutex
	hubs  map[string]*broadcast.Hub // tableId -> its broadcast hub
	conns map[session.ID]*wsnet.Conn
}

// New builds a Server with its own Session Registry (C7), wired so that
// Register's replace-and-signal-close semantics (spec.md §4.7) actually
// close the superseded socket. Any of identity, balance, recovery,
// reconcil may be nil: identity nil means register trusts the
// client-supplied playerId (an offline/test mode); balance/recovery/
// reconcil nil mean those collaborators are simply not exercised
// (spec.md §6 names them as external collaborators, not core
// requirements).
func New(reg *registry.Registry, identity store.IdentityVerifier,
	balance store.BalanceStore, recovery store.RecoveryStore, reconcil store.Reconciler,
	clk clock.Clock, logs *logging.Backend, level slog.Level, cfg Config) *Server {
	if cfg.NumSeats <= 0 {
		cfg.NumSeats = table.MaxSeats
	}
	if cfg.SubBufferSize <= 0 {
		cfg.SubBufferSize = 32
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	s := &Server{
		cfg: cfg, registry: reg, identity: identity,
		balance: balance, recovery: recovery, reconcil: reconcil, clk: clk,
		logs: logs, level: level,
		hubs:  make(map[string]*broadcast.Hub),
		conns: make(map[session.ID]*wsnet.Conn),
	}
	s.sessions = session.New(s.onSessionEvicted)
	if logs != nil {
		s.log = logs.Logger(logging.SubsystemServer, level)
	}
	return s
}

// Sessions returns the Server's Session Registry, e.g. for wiring the
// same registry into admin tooling.
func (s *Server) Sessions() *session.Registry { return s.sessions }

// Registry returns the Server's Table Registry.
func (s *Server) Registry() *registry.Registry { return s.registry }

// ResumeTables reloads every persisted table snapshot and rejoins it to
// the Table Registry, per spec.md §6's recovery requirement. Call once at
// startup, before accepting connections. A table id that fails to load is
// logged and skipped rather than aborting the rest of the boot sequence.
func (s *Server) ResumeTables(ctx context.Context) error {
	if s.recovery == nil {
		return nil
	}
	ids, err := s.recovery.AllTableIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		snap, ok, err := s.recovery.LoadSnapshot(ctx, id)
		if err != nil {
			if s.log != nil {
				s.log.Warnf("resume table %s: load snapshot failed: %v", id, err)
			}
			continue
		}
		if !ok {
			continue
		}
		hub := broadcast.New(s.cfg.SubBufferSize)
		deps := table.Deps{
			Clock: s.clk, Hub: hub, Sessions: s.sessions,
			Balance: s.balance, Recovery: s.recovery, Reconciler: s.reconcil,
			Log: s.tableLog(), NumSeats: s.cfg.NumSeats,
		}
		tbl := table.Resume(s.cfg.TableConfig, deps, snap)
		if err := s.registry.Resume(tbl); err != nil {
			if s.log != nil {
				s.log.Warnf("resume table %s: %v", id, err)
			}
			continue
		}
		s.mu.Lock()
		s.hubs[id] = hub
		s.mu.Unlock()
		if s.log != nil {
			s.log.Infof("resumed table %s (phase=%s)", id, snap.Phase)
		}
	}
	return nil
}

// HandleConn wraps an upgraded websocket connection and drives it until
// the client disconnects or ctx is cancelled. Call this once per accepted
// HTTP upgrade, in its own goroutine.
func (s *Server) HandleConn(ctx context.Context, ws *websocket.Conn) {
	sid := session.ID(newSessionID())
	conn := wsnet.NewConn(ws)

	s.mu.Lock()
	s.conns[sid] = conn
	s.mu.Unlock()

	c := &client{srv: s, sessionID: sid, conn: conn, subs: make(map[string]context.CancelFunc)}
	conn.Handler = c.handle
	conn.OnClose = c.onClose
	if s.log != nil {
		s.log.Debugf("connection opened session=%s", sid)
	}
	conn.Run(ctx)
	if s.log != nil {
		s.log.Debugf("connection closed session=%s", sid)
	}
}

func newSessionID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

// onSessionEvicted is the session.Registry onEvict callback (spec.md
// §4.7: "signals the prior session to close"): it closes whatever
// connection currently owns the superseded session id, if still live.
func (s *Server) onSessionEvicted(playerID string, evicted session.ID) {
	s.mu.Lock()
	conn, ok := s.conns[evicted]
	s.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

func (s *Server) tableLog() slog.Logger {
	if s.logs == nil {
		return nil
	}
	return s.logs.Logger(logging.SubsystemTable, s.level)
}

func (s *Server) hubFor(tableID string) (*broadcast.Hub, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[tableID]
	return h, ok
}

// client holds the per-connection state: which player this socket has
// authenticated as, and which tables it is currently subscribed to.
type client struct {
	srv       *Server
	sessionID session.ID
	conn      *wsnet.Conn

	mu       sync.Mutex
	playerID string
	bound    bool
	subs     map[string]context.CancelFunc
}

func (c *client) handle(msg protocol.Inbound) {
	switch msg.Type {
	case protocol.InRegister:
		c.onRegister(msg)
	case protocol.InCreateTable:
		c.onCreateTable(msg)
	case protocol.InJoinTable:
		c.onJoinTable(msg)
	case protocol.InStartTable:
		c.onStartTable(msg)
	case protocol.InAction:
		c.onAction(msg)
	case protocol.InLeaveTable:
		c.onLeaveTable(msg)
	case protocol.InRequestState:
		c.onRequestState(msg)
	case protocol.InReconnect:
		c.onReconnect(msg)
	case protocol.InChat:
		// Chat moderation is an out-of-core collaborator (spec.md §1);
		// accepted and silently dropped rather than relayed unmoderated.
	default:
		c.sendError(msg.TableID, &table.Error{Kind: table.KindProtocol, Code: "unknown_message_type", Message: string(msg.Type)})
	}
}

func (c *client) onClose() {
	c.mu.Lock()
	playerID := c.playerID
	tableIDs := make([]string, 0, len(c.subs))
	for id, cancel := range c.subs {
		cancel()
		tableIDs = append(tableIDs, id)
	}
	c.subs = map[string]context.CancelFunc{}
	c.mu.Unlock()

	for _, id := range tableIDs {
		if h, ok := c.srv.hubFor(id); ok {
			h.Unsubscribe(string(c.sessionID))
		}
		if tbl, ok := c.srv.registry.Find(id); ok && playerID != "" {
			_ = tbl.SubmitDisconnect(playerID)
		}
	}
	if playerID != "" {
		c.srv.sessions.Deregister(playerID, c.sessionID)
	}
	c.srv.mu.Lock()
	delete(c.srv.conns, c.sessionID)
	c.srv.mu.Unlock()
}

func (c *client) requirePlayer() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.bound {
		return "", false
	}
	return c.playerID, true
}

func (c *client) onRegister(msg protocol.Inbound) {
	playerID := msg.PlayerID
	if c.srv.identity != nil {
		var err error
		playerID, err = c.srv.identity.Verify(context.Background(), msg.AuthToken)
		if err != nil {
			c.sendError("", &table.Error{Kind: table.KindProtocol, Code: "auth_failed", Message: err.Error()})
			return
		}
	}
	if playerID == "" {
		c.sendError("", &table.Error{Kind: table.KindProtocol, Code: "auth_failed", Message: "no playerId"})
		return
	}
	c.srv.sessions.Register(playerID, c.sessionID)
	c.mu.Lock()
	c.playerID = playerID
	c.bound = true
	c.mu.Unlock()
}

func (c *client) onCreateTable(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		c.sendError("", &table.Error{Kind: table.KindProtocol, Code: "not_registered", Message: "register before createTable"})
		return
	}
	hub := broadcast.New(c.srv.cfg.SubBufferSize)
	deps := table.Deps{
		Clock: c.srv.clk, Hub: hub, Sessions: c.srv.sessions,
		Balance: c.srv.balance, Recovery: c.srv.recovery, Reconciler: c.srv.reconcil,
		Log: c.srv.tableLog(), NumSeats: c.srv.cfg.NumSeats,
	}
	tbl, err := c.srv.registry.Create(playerID, c.srv.cfg.TableConfig, deps)
	if err != nil {
		c.sendError("", &table.Error{Kind: table.KindResource, Code: "create_failed", Message: err.Error()})
		return
	}
	c.srv.mu.Lock()
	c.srv.hubs[tbl.ID()] = hub
	c.srv.mu.Unlock()

	c.subscribe(tbl.ID(), hub)
	view, _ := tbl.Describe()
	c.conn.Send(protocol.Outbound{Type: protocol.OutTableState, TableID: tbl.ID(), Payload: view})
}

func (c *client) onJoinTable(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindProtocol, Code: "not_registered", Message: "register before joinTable"})
		return
	}
	tbl, hub, ok := c.lookupTable(msg.TableID)
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: table.CodeUnknownTable, Message: "no such table"})
		return
	}
	name := msg.Name
	if name == "" {
		name = playerID
	}
	buyIn := msg.BuyIn
	if buyIn <= 0 {
		buyIn = c.srv.cfg.DefaultBuyIn
	}
	c.subscribe(msg.TableID, hub)
	if err := tbl.SubmitJoin(playerID, name, buyIn); err != nil {
		c.unsubscribe(msg.TableID)
		c.sendError(msg.TableID, err)
	}
}

func (c *client) onStartTable(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindProtocol, Code: "not_registered", Message: "register before startTable"})
		return
	}
	tbl, _, ok := c.lookupTable(msg.TableID)
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: table.CodeUnknownTable, Message: "no such table"})
		return
	}
	if err := tbl.SubmitStart(playerID); err != nil {
		c.sendError(msg.TableID, err)
	}
}

func (c *client) onAction(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindProtocol, Code: "not_registered", Message: "register before action"})
		return
	}
	tbl, _, ok := c.lookupTable(msg.TableID)
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: table.CodeUnknownTable, Message: "no such table"})
		return
	}
	kind, err := betting.ParseKind(msg.ActionKind)
	if err != nil {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: "bad_action_kind", Message: err.Error()})
		return
	}
	if err := tbl.SubmitAction(playerID, kind, msg.Amount); err != nil {
		c.sendError(msg.TableID, err)
	}
}

func (c *client) onLeaveTable(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		return
	}
	tbl, _, ok := c.lookupTable(msg.TableID)
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: table.CodeUnknownTable, Message: "no such table"})
		return
	}
	if err := tbl.SubmitLeave(playerID); err != nil {
		c.sendError(msg.TableID, err)
		return
	}
	c.unsubscribe(msg.TableID)
}

func (c *client) onRequestState(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindProtocol, Code: "not_registered", Message: "register before requestState"})
		return
	}
	tbl, hub, ok := c.lookupTable(msg.TableID)
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: table.CodeUnknownTable, Message: "no such table"})
		return
	}
	c.subscribe(msg.TableID, hub)
	if err := tbl.SubmitRequestState(playerID); err != nil {
		c.sendError(msg.TableID, err)
	}
}

func (c *client) onReconnect(msg protocol.Inbound) {
	playerID, ok := c.requirePlayer()
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindProtocol, Code: "not_registered", Message: "register before reconnect"})
		return
	}
	tbl, hub, ok := c.lookupTable(msg.TableID)
	if !ok {
		c.sendError(msg.TableID, &table.Error{Kind: table.KindInput, Code: table.CodeUnknownTable, Message: "no such table"})
		return
	}
	c.subscribe(msg.TableID, hub)
	if err := tbl.SubmitReconnect(playerID, c.sessionID); err != nil {
		c.sendError(msg.TableID, err)
	}
}

func (c *client) lookupTable(tableID string) (*table.Table, *broadcast.Hub, bool) {
	tbl, ok := c.srv.registry.Find(tableID)
	if !ok {
		return nil, nil, false
	}
	hub, ok := c.srv.hubFor(tableID)
	if !ok {
		return nil, nil, false
	}
	return tbl, hub, true
}

func (c *client) subscribe(tableID string, hub *broadcast.Hub) {
	c.mu.Lock()
	if _, already := c.subs[tableID]; already {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.subs[tableID] = cancel
	c.mu.Unlock()

	sub := hub.Subscribe(string(c.sessionID))
	go c.pump(ctx, tableID, sub)
}

func (c *client) unsubscribe(tableID string) {
	c.mu.Lock()
	cancel, ok := c.subs[tableID]
	if ok {
		delete(c.subs, tableID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	cancel()
	if h, ok := c.srv.hubFor(tableID); ok {
		h.Unsubscribe(string(c.sessionID))
	}
}

// pump forwards one table's public+private broadcast.Hub events to this
// connection's outbound queue until ctx is cancelled (unsubscribe) or the
// hub closes both channels (table teardown).
func (c *client) pump(ctx context.Context, tableID string, sub *broadcast.Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Public():
			if !ok {
				return
			}
			c.conn.Send(protocol.Outbound{Seq: msg.Seq, Type: protocol.OutboundType(msg.Type), TableID: tableID, Payload: msg.Payload})
		case msg, ok := <-sub.Private():
			if !ok {
				return
			}
			c.conn.Send(protocol.Outbound{Seq: msg.Seq, Type: protocol.OutboundType(msg.Type), TableID: tableID, Payload: msg.Payload})
		}
	}
}

func (c *client) sendError(tableID string, err error) {
	kind, code, msg := "input", "error", err.Error()
	if te, ok := err.(*table.Error); ok {
		kind, code, msg = te.Kind.String(), te.Code, te.Message
	}
	c.conn.Send(protocol.Outbound{Type: protocol.OutError, TableID: tableID, Payload: protocol.ErrorView{Kind: kind, Code: code, Message: msg}})
}
