package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/swamyhotfoods/shopfront/internal/adapter/metrics"
	"github.com/swamyhotfoods/shopfront/internal/domain"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
	commandBuffer  = 256
)

var (
	ErrStopped        = errors.New("broadcaster stopped")
	ErrTooManyClients = errors.New("max connections reached")
)

// Update sources, used as metric labels.
const (
	SourceWebSocket = "websocket"
	SourceAPI       = "api"
	SourceClock     = "clock"
)

// StatusStore is the state the broadcaster mutates and fans out.
type StatusStore interface {
	Snapshot() domain.StatusState
	Apply(update domain.StatusUpdate) domain.StatusState
	Refresh() (domain.StatusState, bool)
}

// ConnState is the lifecycle of one client connection.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateConnected
	StateDisconnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

type client struct {
	id     string
	state  ConnState
	writer *clientWriter
}

// transition moves the client forward. DISCONNECTED is terminal.
func (c *client) transition(next ConnState) bool {
	if c.state == StateDisconnected || next <= c.state {
		return false
	}
	c.state = next
	return true
}

// broadcasterCmd is the command interface for the Broadcaster actor.
type broadcasterCmd interface{ isBroadcasterCmd() }

type baseBroadcasterCmd struct{}

func (baseBroadcasterCmd) isBroadcasterCmd() {}

type registerCmd struct {
	baseBroadcasterCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseBroadcasterCmd
	connection *websocket.Conn
}

type submitCmd struct {
	baseBroadcasterCmd
	connection *websocket.Conn
	payload    []byte
}

type publishCmd struct {
	baseBroadcasterCmd
	update       domain.StatusUpdate
	replyChannel chan domain.StatusState
}

type getClientCountCmd struct {
	baseBroadcasterCmd
	replyChannel chan int
}

type stopCmd struct {
	baseBroadcasterCmd
}

// Broadcaster owns every storefront connection and the write path into the status store.
// A single goroutine handles commands in arrival order, so each update is applied and
// fanned out before the next one is looked at.
type Broadcaster struct {
	cmdCh           chan broadcasterCmd
	clock           clockwork.Clock
	store           StatusStore
	clients         map[*websocket.Conn]*client
	done            chan struct{}
	stopTimeout     time.Duration
	maxClients      int
	refreshInterval time.Duration
	wsMetrics       *metrics.WebSocketMetrics
	statusMetrics   *metrics.StatusMetrics
}

// NewBroadcaster creates and starts a broadcaster.
// maxClients caps concurrent connections (0 means unlimited).
// refreshInterval controls how often the derived message is re-evaluated against the clock.
// Metrics may be nil.
func NewBroadcaster(store StatusStore, clock clockwork.Clock, maxClients int, refreshInterval time.Duration, wsMetrics *metrics.WebSocketMetrics, statusMetrics *metrics.StatusMetrics) *Broadcaster {
	b := &Broadcaster{
		cmdCh:           make(chan broadcasterCmd, commandBuffer),
		clock:           clock,
		store:           store,
		clients:         make(map[*websocket.Conn]*client),
		done:            make(chan struct{}),
		stopTimeout:     stopTimeout,
		maxClients:      maxClients,
		refreshInterval: refreshInterval,
		wsMetrics:       wsMetrics,
		statusMetrics:   statusMetrics,
	}
	go b.run()
	return b
}

// Register adds a connection and queues the current snapshot on it.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	if !b.send(registerCmd{connection: conn, errorChannel: errCh}) {
		return ErrStopped
	}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-b.done:
		return ErrStopped
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a connection. Unknown connections are ignored.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	b.send(unregisterCmd{connection: conn})
}

// Submit hands a raw client message to the broadcaster. Malformed payloads are dropped.
func (b *Broadcaster) Submit(conn *websocket.Conn, payload []byte) {
	b.send(submitCmd{connection: conn, payload: payload})
}

// Publish applies an update from a server-side source and returns the resulting snapshot.
// An empty update changes nothing and broadcasts nothing.
func (b *Broadcaster) Publish(update domain.StatusUpdate) (domain.StatusState, error) {
	replyCh := make(chan domain.StatusState, 1)
	if !b.send(publishCmd{update: update, replyChannel: replyCh}) {
		return domain.StatusState{}, ErrStopped
	}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case snap := <-replyCh:
		return snap, nil
	case <-b.done:
		return domain.StatusState{}, ErrStopped
	case <-timer.Chan():
		return domain.StatusState{}, fmt.Errorf("publish command timed out after %v", commandTimeout)
	}
}

// Snapshot returns the current status without going through the actor.
func (b *Broadcaster) Snapshot() domain.StatusState {
	return b.store.Snapshot()
}

// GetClientCount returns the number of connected clients, or -1 on timeout.
func (b *Broadcaster) GetClientCount() int {
	replyCh := make(chan int, 1)
	if !b.send(getClientCountCmd{replyChannel: replyCh}) {
		return 0
	}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-b.done:
		return 0
	case <-timer.Chan():
		slog.Warn("GetClientCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop closes every client with a close frame and waits for the actor to exit.
func (b *Broadcaster) Stop() {
	if !b.send(stopCmd{}) {
		return
	}

	timeout := b.clock.NewTimer(b.stopTimeout)
	defer timeout.Stop()

	select {
	case <-b.done:
		slog.Info("Broadcaster stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Broadcaster stop timeout exceeded", "timeout", b.stopTimeout)
	}
}

// send enqueues a command unless the actor has already exited.
func (b *Broadcaster) send(cmd broadcasterCmd) bool {
	select {
	case <-b.done:
		return false
	default:
	}

	select {
	case b.cmdCh <- cmd:
		return true
	case <-b.done:
		return false
	}
}

func (b *Broadcaster) run() {
	defer close(b.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Broadcaster panic recovered", "panic", r)
			b.closeAllClients("Server error")
		}
	}()

	ticker := b.clock.NewTicker(b.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-b.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				b.handleRegister(c)
			case unregisterCmd:
				b.handleUnregister(c.connection)
			case submitCmd:
				b.handleSubmit(c)
			case publishCmd:
				c.replyChannel <- b.handlePublish(c.update)
			case getClientCountCmd:
				c.replyChannel <- len(b.clients)
			case stopCmd:
				b.handleStop()
				return
			default:
				slog.Warn("Broadcaster received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		case <-ticker.Chan():
			b.handleTick()
		}
	}
}

// handleRegister leaves rejected connections open so the caller can send a close frame.
func (b *Broadcaster) handleRegister(c registerCmd) {
	if _, exists := b.clients[c.connection]; exists {
		c.errorChannel <- nil
		return
	}

	if b.maxClients > 0 && len(b.clients) >= b.maxClients {
		slog.Warn("Rejecting client: max connections reached", "max_clients", b.maxClients)
		c.errorChannel <- ErrTooManyClients
		return
	}

	cl := &client{id: uuid.NewString(), state: StateConnecting}

	data, err := json.Marshal(b.store.Snapshot())
	if err != nil {
		slog.Error("Failed to marshal snapshot", "error", err)
		c.errorChannel <- fmt.Errorf("marshal snapshot: %w", err)
		return
	}

	// The buffer is empty, so the initial snapshot always fits and precedes any broadcast.
	cl.writer = newClientWriter(cl.id, c.connection, b.clock, b.wsMetrics)
	cl.writer.enqueue(data)
	cl.transition(StateConnected)
	b.clients[c.connection] = cl

	if b.wsMetrics != nil {
		b.wsMetrics.ActiveConnections.Inc()
	}

	slog.Debug("Client registered", "client_id", cl.id, "total_clients", len(b.clients))
	c.errorChannel <- nil
}

func (b *Broadcaster) handleUnregister(conn *websocket.Conn) {
	cl, exists := b.clients[conn]
	if !exists {
		return
	}

	cl.transition(StateDisconnected)
	cl.writer.stop()
	delete(b.clients, conn)

	if b.wsMetrics != nil {
		b.wsMetrics.ActiveConnections.Dec()
	}

	slog.Debug("Client unregistered", "client_id", cl.id, "remaining_clients", len(b.clients))
}

func (b *Broadcaster) handleSubmit(c submitCmd) {
	cl, exists := b.clients[c.connection]
	if !exists || cl.state != StateConnected {
		return
	}
	cl.writer.recordActivity()

	update, err := DecodeUpdate(c.payload)
	if err != nil {
		slog.Warn("Dropping malformed status update", "client_id", cl.id, "error", err)
		b.recordRejected(rejectReason(err))
		return
	}

	b.applyAndBroadcast(update, SourceWebSocket)
}

func (b *Broadcaster) handlePublish(update domain.StatusUpdate) domain.StatusState {
	if update.IsEmpty() {
		return b.store.Snapshot()
	}
	return b.applyAndBroadcast(update, SourceAPI)
}

func (b *Broadcaster) handleTick() {
	snap, changed := b.store.Refresh()
	if !changed {
		return
	}

	slog.Debug("Derived message changed", "message", snap.DerivedMessage)
	if b.statusMetrics != nil {
		b.statusMetrics.UpdatesApplied.WithLabelValues(SourceClock).Inc()
	}
	b.broadcast(snap)
}

func (b *Broadcaster) applyAndBroadcast(update domain.StatusUpdate, source string) domain.StatusState {
	start := b.clock.Now()

	snap := b.store.Apply(update)
	b.broadcast(snap)

	if b.statusMetrics != nil {
		b.statusMetrics.UpdatesApplied.WithLabelValues(source).Inc()
		b.statusMetrics.ApplyDuration.Observe(b.clock.Since(start).Seconds())
	}
	return snap
}

// broadcast fans the snapshot out to every connected client, including the sender.
// Clients that cannot take the message are evicted; the rest still receive it.
func (b *Broadcaster) broadcast(snap domain.StatusState) {
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "error", err)
		return
	}

	var slow []*websocket.Conn
	for conn, cl := range b.clients {
		if cl.state != StateConnected {
			continue
		}
		if !cl.writer.enqueue(data) {
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Disconnecting slow client", "client_id", b.clients[conn].id)
		if b.wsMetrics != nil {
			b.wsMetrics.SlowClientsEvicted.Inc()
		}
		b.handleUnregister(conn)
	}
}

func (b *Broadcaster) handleStop() {
	slog.Info("Broadcaster shutting down", "total_clients", len(b.clients))
	b.closeAllClients("Server shutting down")
}

// closeAllClients closes all client connections with the given reason.
func (b *Broadcaster) closeAllClients(reason string) {
	for conn, cl := range b.clients {
		cl.transition(StateDisconnected)
		cl.writer.stopGraceful(reason)
		delete(b.clients, conn)
	}
	if b.wsMetrics != nil {
		b.wsMetrics.ActiveConnections.Set(0)
	}
}

func (b *Broadcaster) recordRejected(reason string) {
	if b.statusMetrics != nil {
		b.statusMetrics.UpdatesRejected.WithLabelValues(reason).Inc()
	}
}
