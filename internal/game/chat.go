// internal/game/chat.go
package game

import (
	"github.com/sirco-master/chess-online/internal/models"
)

// SendChatMessage forwards a chat line to connID's opponent with the sender's
// identity and a server timestamp. The sender is not echoed.
func (s *Server) SendChatMessage(gameID, connID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games.lookupGame(gameID)
	if !ok {
		return ErrGameNotFound
	}
	if _, ok := g.ColorOf(connID); !ok {
		return ErrNotParticipant
	}

	var from models.PlayerInfo
	if sess, ok := s.sessions.Lookup(connID); ok {
		from = sess.Info()
	}
	s.send(g.Opponent(connID), models.EventChatMessage, models.ChatOutPayload{
		GameID: g.ID.String(),
		From:   from,
		Text:   text,
		Ts:     s.clock.Now().UnixMilli(),
	})
	s.record(g, connID, actionChatMessage, map[string]any{"text": text})
	return nil
}
