package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pausememo/pausememo/internal/id"
)

const (
	queueSize         = 256
	clientBufferSize  = 64
	heartbeatInterval = 30 * time.Second
)

// Client is one connected event stream.
type Client struct {
	ID          string
	Filter      Filter
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
}

// Manager fans events out to connected clients. Emit never blocks: a full
// queue or a slow client loses the event.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	// emitMu guards closed and the close of queue against concurrent Emit.
	emitMu sync.RWMutex
	closed bool
	queue  chan Event

	running   sync.WaitGroup
	heartbeat time.Duration
}

// NewManager creates a Manager. Call Start to begin delivery.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		logger:    logger,
		clients:   make(map[string]*Client),
		queue:     make(chan Event, queueSize),
		heartbeat: heartbeatInterval,
	}
}

// Start delivers queued events and periodic heartbeats until ctx is done or
// Shutdown closes the queue. It blocks; run it in its own goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.running.Add(1)
	defer m.running.Done()

	m.logger.Info("event stream started")

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-m.queue:
			if !ok {
				m.closeAll()
				return
			}
			m.deliver(ev)
		case <-ticker.C:
			m.deliver(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("event stream stopping")
			m.closeAll()
			return
		}
	}
}

// Shutdown refuses further events, delivers what is already queued within
// ctx, and disconnects every client. Repeated calls are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.emitMu.Lock()
	if m.closed {
		m.emitMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.emitMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range m.queue {
			m.deliver(ev)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("event drain timed out, pending events lost")
	}

	m.running.Wait()
	m.closeAll()
	m.logger.Info("event stream shut down")
	return nil
}

// Emit queues ev for delivery. Events emitted after Shutdown are dropped.
func (m *Manager) Emit(ev Event) {
	m.emitMu.RLock()
	defer m.emitMu.RUnlock()

	if m.closed {
		return
	}
	select {
	case m.queue <- ev:
	default:
		m.logger.Error("event queue full, dropping event", slog.String("event_type", string(ev.Type)))
	}
}

func (m *Manager) deliver(ev Event) {
	var sent, skipped, dropped int

	m.mu.RLock()
	for _, c := range m.clients {
		if !c.Filter.Match(ev) {
			skipped++
			continue
		}
		select {
		case c.EventChan <- ev:
			sent++
		default:
			dropped++
			m.logger.Warn("client too slow, event dropped",
				slog.String("client_id", c.ID),
				slog.String("event_type", string(ev.Type)))
		}
	}
	m.mu.RUnlock()

	if ev.Type != EventHeartbeat {
		m.logger.Debug("event delivered",
			slog.String("event_type", string(ev.Type)),
			slog.Int("sent", sent),
			slog.Int("filtered", skipped),
			slog.Int("dropped", dropped))
	}
}

// Connect registers a client receiving the events that match f.
func (m *Manager) Connect(f Filter) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		Filter:      f,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.clients[c.ID] = c
	n := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("event client connected",
		slog.String("client_id", c.ID),
		slog.Int("clients", n))
	return c, nil
}

// Disconnect removes a client and closes its channels. Unknown ids are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	n := len(m.clients)
	m.mu.Unlock()

	if !ok {
		return
	}
	close(c.Done)
	close(c.EventChan)

	m.logger.Info("event client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("connected_for", time.Since(c.ConnectedAt)),
		slog.Int("clients", n))
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		close(c.Done)
		close(c.EventChan)
	}
	clear(m.clients)
}
