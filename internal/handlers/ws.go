// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/game"
	"github.com/sirco-master/chess-online/internal/middleware"
	"github.com/sirco-master/chess-online/internal/models"
)

const (
	readLimit    = 64 << 10
	writeTimeout = 5 * time.Second
	pingTimeout  = 15 * time.Second
)

// WSConfig tunes the match socket.
type WSConfig struct {
	OriginPatterns []string
	OutboxSize     int
	PingInterval   time.Duration
}

// MatchWSHandler upgrades the request and relays protocol events between the
// socket and the match server until the peer goes away.
func MatchWSHandler(logger *logrus.Logger, srv *game.Server, hub *Hub, cfg WSConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: cfg.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")
		c.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		peer := &Peer{
			ID:         uuid.NewString(),
			RemoteAddr: r.RemoteAddr,
			OutChan:    make(chan models.Event, cfg.OutboxSize),
			Cancel:     cancel,
		}
		hub.Add(peer)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		go writePump(ctx, c, peer, logger, cfg.PingInterval)

		readErr := readPump(ctx, c, peer, srv, hub, logger)

		// Game teardown must see the session, so disconnect before dropping the peer.
		srv.Disconnect(peer.ID)
		hub.Remove(peer.ID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readPump decodes inbound frames and hands them to the match server in
// arrival order. Returns the error that ended the connection, nil on a clean close.
func readPump(ctx context.Context, c *websocket.Conn, peer *Peer, srv *game.Server, hub *Hub, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from %s. Ignoring.", typ, peer.ID)
			continue
		}

		var env models.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			logger.Debugf("Invalid json from %s: %v", peer.ID, err)
			hub.SendError(peer.ID, "invalid JSON format")
			continue
		}
		srv.Dispatch(peer.ID, env)
	}
}

// writePump drains the peer's outbound buffer onto the socket and keeps the
// connection alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, peer *Peer, logger *logrus.Logger, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if peer.shuttingDown.Load() {
				_ = c.Close(StatusServerShutdown, "server shutting down")
			}
			return
		case ev := <-peer.OutChan:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("Failed to marshal outgoing %s for %s: %v", ev.Type, peer.ID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to websocket for %s: %v", peer.ID, err)
				peer.Cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Failed to send ping to %s: %v. Assuming disconnect.", peer.ID, err)
				peer.Cancel()
				return
			}
		}
	}
}
