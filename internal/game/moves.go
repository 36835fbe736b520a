// internal/game/moves.go
package game

import (
	"encoding/json"

	"github.com/sirco-master/chess-online/internal/models"
)

// SubmitMove applies a move reported by connID and relays it to the opponent.
// The move is accepted only if the mover was on move in the stored position and
// the reported position hands the turn to the other side. Nothing about the
// move itself is checked; a rejected move leaves the game untouched.
func (s *Server) SubmitMove(connID string, p models.MovePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games.lookupGame(p.GameID)
	if !ok {
		return ErrGameNotFound
	}
	color, ok := g.ColorOf(connID)
	if !ok {
		return ErrNotParticipant
	}
	onMove, err := SideToMove(g.Position)
	if err != nil {
		return err
	}
	if onMove != color {
		return ErrWrongTurn
	}
	toMove, err := SideToMove(p.Position)
	if err != nil {
		return err
	}
	if toMove == color {
		return ErrWrongTurn
	}

	g.Position = p.Position
	g.LastMove = p.Move
	g.History = append(g.History, p.Move)
	if p.Clocks != nil {
		g.Clocks = *p.Clocks
	}
	clocks := g.Clocks

	s.send(g.Opponent(connID), models.EventGameMove, models.MovePayload{
		GameID:   p.GameID,
		Move:     p.Move,
		Position: p.Position,
		Clocks:   &clocks,
	})
	s.record(g, connID, actionGameMove, map[string]any{
		"move":     p.Move,
		"position": p.Position,
		"clocks":   clocks,
	})
	return nil
}

// Resign forfeits the game for connID. The opponent is told they won and the
// game is removed.
func (s *Server) Resign(gameID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games.lookupGame(gameID)
	if !ok {
		return ErrGameNotFound
	}
	color, ok := g.ColorOf(connID)
	if !ok {
		return ErrNotParticipant
	}
	winner := color.Opposite()

	s.log.Infof("Player %s resigned game %s", connID, g.ID)
	s.send(g.Opponent(connID), models.EventOpponentResigned, models.ResignedPayload{
		GameID: g.ID.String(),
		Winner: winner,
	})
	s.record(g, connID, actionGameResign, map[string]any{"winner": string(winner)})
	s.endGame(g)
	return nil
}

// ReportGameOver relays a client-decided result (mate, draw, flag) to both
// players and removes the game. The result is never inspected.
func (s *Server) ReportGameOver(gameID, connID string, result json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games.lookupGame(gameID)
	if !ok {
		return ErrGameNotFound
	}
	if _, ok := g.ColorOf(connID); !ok {
		return ErrNotParticipant
	}

	s.log.Infof("Game %s over, reported by %s", g.ID, connID)
	payload := models.GameOverPayload{GameID: g.ID.String(), Result: result}
	s.send(g.WhiteID, models.EventGameOver, payload)
	s.send(g.BlackID, models.EventGameOver, payload)
	s.record(g, connID, actionGameOver, map[string]any{"result": result})
	s.endGame(g)
	return nil
}

// endGame removes the game and disarms its abandonment timer.
// Assumes lock is held.
func (s *Server) endGame(g *Game) {
	s.games.DeleteGame(g.ID)
	s.sched.Cancel(gameTaskKey(g.ID.String()))
}
