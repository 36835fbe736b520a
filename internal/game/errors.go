package game

import "errors"

// Precondition failures. Each is reported to the originating connection as an
// error event and leaves all state untouched.
var (
	ErrNoSession       = errors.New("player not set up")
	ErrLobbyNotFound   = errors.New("lobby not found")
	ErrLobbyFull       = errors.New("lobby is full")
	ErrOwnLobby        = errors.New("cannot join your own lobby")
	ErrNotInLobby      = errors.New("not a member of this lobby")
	ErrGameNotFound    = errors.New("game not found")
	ErrNotParticipant  = errors.New("not a player in this game")
	ErrWrongTurn       = errors.New("not your turn")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrUnknownEvent    = errors.New("unknown event type")
)
