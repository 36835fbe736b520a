// internal/handlers/router.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/game"
	"github.com/sirco-master/chess-online/internal/middleware"
)

// StatsResponse is served on /stats.
type StatsResponse struct {
	game.Stats
	Connections int `json:"connections"`
}

// NewRouter mounts the match socket and the operational endpoints.
func NewRouter(logger *logrus.Logger, srv *game.Server, hub *Hub, cfg WSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LogMiddleware(logger))

	r.Get("/healthz", HealthHandler)
	r.Get("/stats", StatsHandler(srv, hub))
	r.Get("/ws", MatchWSHandler(logger, srv, hub, cfg))

	return r
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatsHandler reports current session, queue, lobby, game and timer counts.
func StatsHandler(srv *game.Server, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatsResponse{
			Stats:       srv.Stats(),
			Connections: hub.Len(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
