// internal/game/record.go
package game

import (
	"context"
	"time"

	"github.com/sirco-master/chess-online/internal/models"
)

// Recorder archives game actions outside the relay, e.g. onto a Redis list
// drained by the historian. Failures never affect the live game.
type Recorder interface {
	Record(ctx context.Context, action models.GameAction) error
}

const (
	recordTimeout = 2 * time.Second
	recordBuffer  = 256
)

// Archived action types.
const (
	actionGameStart     = "game_start"
	actionGameMove      = "game_move"
	actionGameResign    = "game_resign"
	actionGameOver      = "game_over"
	actionGameAbandoned = "game_abandoned"
	actionChatMessage   = "chat_message"
)

// record stamps an action and queues it for the recorder goroutine. Actions
// reach the Recorder in the order they were taken; when the buffer is full the
// action is dropped rather than stalling the relay.
// Assumes lock is held.
func (s *Server) record(g *Game, actorID, actionType string, payload map[string]any) {
	if s.recorder == nil || s.closed {
		return
	}
	action := models.GameAction{
		GameID:      g.ID,
		ActionIndex: g.nextActionIndex(),
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   s.clock.Now().UnixMilli(),
	}
	select {
	case s.actions <- action:
	default:
		s.log.Warnf("record buffer full, dropping %s for game %s", action.ActionType, action.GameID)
	}
}

// runRecorder ships queued actions one at a time until the channel is closed.
func (s *Server) runRecorder() {
	defer close(s.recordDone)
	for action := range s.actions {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := s.recorder.Record(ctx, action); err != nil {
			s.log.Warnf("failed to record %s for game %s: %v", action.ActionType, action.GameID, err)
		}
		cancel()
	}
}
