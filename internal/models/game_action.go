package models

import "github.com/google/uuid"

// GameAction is one archived step of a game, in the order the relay applied it.
type GameAction struct {
	GameID      uuid.UUID      `json:"game_id"`
	ActionIndex int            `json:"action_index"`
	ActorID     string         `json:"actor_id,omitempty"`
	ActionType  string         `json:"action_type"`
	Payload     map[string]any `json:"action_payload"`
	Timestamp   int64          `json:"timestamp"`
}
