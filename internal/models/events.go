// internal/models/events.go
package models

import "encoding/json"

// EventType names a protocol event carried in an envelope's "type" field.
type EventType string

// Client to server events.
const (
	EventPlayerSetup      EventType = "player:setup"
	EventMatchmakingJoin  EventType = "matchmaking:join"
	EventMatchmakingLeave EventType = "matchmaking:leave"
	EventLobbyCreate      EventType = "lobby:create"
	EventLobbyJoin        EventType = "lobby:join"
	EventLobbyCancel      EventType = "lobby:cancel"
	EventGameResign       EventType = "game:resign"
	EventPing             EventType = "ping"
)

// Server to client events.
const (
	EventMatchmakingSearching EventType = "matchmaking:searching"
	EventLobbyCreated         EventType = "lobby:created"
	EventLobbyUpdated         EventType = "lobby:updated"
	EventLobbyClosed          EventType = "lobby:closed"
	EventGameStart            EventType = "game:start"
	EventOpponentResigned     EventType = "game:opponent_resigned"
	EventOpponentDisconnected EventType = "game:opponent_disconnected"
	EventPong                 EventType = "pong"
	EventError                EventType = "error"
)

// Events relayed in both directions.
const (
	EventGameMove    EventType = "game:move"
	EventGameOver    EventType = "game:over"
	EventChatMessage EventType = "chat:message"
)

// Envelope is an inbound frame. Payload stays raw until the event type is known.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is an outbound frame.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// SetupPayload registers the sender's identity.
type SetupPayload struct {
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// LobbyCreatePayload carries the requested time control for a private game.
type LobbyCreatePayload struct {
	TimeControl TimeControl `json:"timeControl"`
}

// LobbyCodePayload references a lobby by its invite code. Clients may send
// either {"code": "12345"} or the bare string "12345".
type LobbyCodePayload struct {
	Code string `json:"code"`
}

func (p *LobbyCodePayload) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Code = bare
		return nil
	}
	type plain LobbyCodePayload
	return json.Unmarshal(data, (*plain)(p))
}

// LobbyPayload is the roster sent on lobby:created and lobby:updated.
type LobbyPayload struct {
	Code  string      `json:"code"`
	Host  PlayerInfo  `json:"host"`
	Guest *PlayerInfo `json:"guest,omitempty"`
}

// GameRefPayload references a game by id. A bare JSON string is accepted too.
type GameRefPayload struct {
	GameID string `json:"gameId"`
}

func (p *GameRefPayload) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		p.GameID = bare
		return nil
	}
	type plain GameRefPayload
	return json.Unmarshal(data, (*plain)(p))
}

// GameStartPayload tells one player their seat in a new game.
type GameStartPayload struct {
	GameID      string      `json:"gameId"`
	Color       Color       `json:"color"`
	Opponent    PlayerInfo  `json:"opponent"`
	TimeControl TimeControl `json:"timeControl"`
	Clocks      Clocks      `json:"clocks"`
}

// MovePayload is relayed verbatim from the mover to the opponent. Position is the
// mover's FEN after the move; the server only reads its side-to-move field.
type MovePayload struct {
	GameID   string  `json:"gameId"`
	Move     string  `json:"move"`
	Position string  `json:"position"`
	Clocks   *Clocks `json:"clocks,omitempty"`
}

// ResignedPayload tells the remaining player which side won.
type ResignedPayload struct {
	GameID string `json:"gameId"`
	Winner Color  `json:"winner"`
}

// GameOverPayload carries a client-determined result. Result is opaque to the server.
type GameOverPayload struct {
	GameID string          `json:"gameId"`
	Result json.RawMessage `json:"result,omitempty"`
}

// ChatInPayload is a chat line as sent by a player.
type ChatInPayload struct {
	GameID string `json:"gameId"`
	Text   string `json:"text"`
}

// ChatOutPayload is a chat line as delivered to the opponent. Ts is unix millis.
type ChatOutPayload struct {
	GameID string     `json:"gameId"`
	From   PlayerInfo `json:"from"`
	Text   string     `json:"text"`
	Ts     int64      `json:"ts"`
}

// ErrorPayload reports a failed precondition to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
