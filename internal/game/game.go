// internal/game/game.go
package game

import (
	"github.com/google/uuid"

	"github.com/sirco-master/chess-online/internal/models"
)

// createGame builds and stores a fresh game at the starting position.
// Assumes lock is held.
func (s *Server) createGame(whiteID, blackID string, tc models.TimeControl) *Game {
	g := &Game{
		ID:          uuid.New(),
		WhiteID:     whiteID,
		BlackID:     blackID,
		Position:    StartingPosition,
		History:     []string{},
		Clocks:      models.NewClocks(tc),
		TimeControl: tc,
		CreatedAt:   s.clock.Now(),
	}
	s.games.AddGame(g)
	return g
}

// startGame creates the game and tells each player their color and opponent.
// Assumes lock is held.
func (s *Server) startGame(whiteID, blackID string, tc models.TimeControl) *Game {
	g := s.createGame(whiteID, blackID, tc)
	s.log.Infof("Game %s started: %s (white) vs %s (black), %s", g.ID, whiteID, blackID, tc)

	s.announceGame(g, whiteID, models.White)
	s.announceGame(g, blackID, models.Black)

	s.record(g, "", actionGameStart, map[string]any{
		"white":       whiteID,
		"black":       blackID,
		"timeControl": string(tc),
	})
	return g
}

// announceGame sends game:start to one seat.
// Assumes lock is held.
func (s *Server) announceGame(g *Game, connID string, color models.Color) {
	var opponent models.PlayerInfo
	if sess, ok := s.sessions.Lookup(g.Opponent(connID)); ok {
		opponent = sess.Info()
	}
	s.send(connID, models.EventGameStart, models.GameStartPayload{
		GameID:      g.ID.String(),
		Color:       color,
		Opponent:    opponent,
		TimeControl: g.TimeControl,
		Clocks:      g.Clocks,
	})
}
