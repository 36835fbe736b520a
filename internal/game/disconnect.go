// internal/game/disconnect.go
package game

import (
	"github.com/sirco-master/chess-online/internal/models"
)

// Disconnect tears down everything connID took part in. Queued entries and
// lobbies go immediately; games stay alive for the grace window so the
// opponent sees the disconnect before the game is dropped. The session is
// released last because the steps above still read it.
func (s *Server) Disconnect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions.Lookup(connID); ok {
		sess.Connected = false
	}

	s.queue.Remove(connID)

	for _, l := range s.lobbies.ByOccupant(connID) {
		s.closeLobby(l, connID)
	}

	for _, g := range s.games.ByPlayer(connID) {
		s.send(g.Opponent(connID), models.EventOpponentDisconnected, models.GameRefPayload{
			GameID: g.ID.String(),
		})
		s.armAbandonTimer(g)
	}

	s.sessions.Release(connID)
	s.log.Infof("Player %s disconnected", connID)
}

// armAbandonTimer schedules deletion of g after the grace window unless one is
// already pending. The game is re-checked when the timer fires.
// Assumes lock is held.
func (s *Server) armAbandonTimer(g *Game) {
	key := gameTaskKey(g.ID.String())
	if s.sched.Pending(key) {
		return
	}
	s.sched.Schedule(key, s.graceWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		current, ok := s.games.GetGame(g.ID)
		if !ok || current != g {
			return
		}
		s.log.Infof("Game %s abandoned after %s", g.ID, s.graceWindow)
		s.record(g, "", actionGameAbandoned, nil)
		s.games.DeleteGame(g.ID)
	})
}
