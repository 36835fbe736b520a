// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/models"
)

// Peer is one live websocket connection. Outbound events are buffered in
// OutChan and drained by the connection's write pump.
type Peer struct {
	ID         string
	RemoteAddr string
	OutChan    chan models.Event
	Cancel     context.CancelFunc

	shuttingDown atomic.Bool
}

// Hub maps connection ids to peers and implements game.Outbox.
type Hub struct {
	mu     sync.RWMutex
	peers  map[string]*Peer
	logger *logrus.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		peers:  make(map[string]*Peer),
		logger: logger,
	}
}

// Add registers a peer under its id.
func (h *Hub) Add(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.ID] = p
}

// Remove unregisters the peer and stops its pumps. Later sends to the id are dropped.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	p, ok := h.peers[connID]
	delete(h.peers, connID)
	h.mu.Unlock()
	if ok && p.Cancel != nil {
		p.Cancel()
	}
}

// CloseAll stops every peer's pumps with a shutdown close code.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.peers {
		p.shuttingDown.Store(true)
		if p.Cancel != nil {
			p.Cancel()
		}
	}
}

// Len returns the number of live peers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Send queues ev for connID without blocking. A full buffer drops the event.
func (h *Hub) Send(connID string, ev models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.peers[connID]
	if !ok {
		return
	}
	select {
	case p.OutChan <- ev:
	default:
		h.logger.Warnf("OutChan for connection %s full. Dropped message type '%s'.", connID, ev.Type)
	}
}

// SendError is a convenience to send an error event.
func (h *Hub) SendError(connID, msg string) {
	h.Send(connID, models.Event{Type: models.EventError, Payload: models.ErrorPayload{Message: msg}})
}
