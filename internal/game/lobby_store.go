// internal/game/lobby_store.go
package game

import (
	"time"

	"github.com/sirco-master/chess-online/internal/models"
)

// Lobby is a two-seat private room addressed by a 5-digit invite code.
type Lobby struct {
	Code        string
	HostID      string
	GuestID     string
	TimeControl models.TimeControl
	CreatedAt   time.Time
}

// Filled reports whether the guest seat is taken.
func (l *Lobby) Filled() bool {
	return l.GuestID != ""
}

// Has reports whether connID occupies either seat.
func (l *Lobby) Has(connID string) bool {
	return connID != "" && (l.HostID == connID || l.GuestID == connID)
}

// Other returns the occupant that is not connID, or "" if the seat is empty.
func (l *Lobby) Other(connID string) string {
	if l.HostID == connID {
		return l.GuestID
	}
	return l.HostID
}

// LobbyStore holds the currently open lobbies keyed by code.
// It is not safe for concurrent use; Server serializes access.
type LobbyStore struct {
	lobbies map[string]*Lobby
}

// NewLobbyStore returns an empty store.
func NewLobbyStore() *LobbyStore {
	return &LobbyStore{
		lobbies: make(map[string]*Lobby),
	}
}

// AddLobby stores the lobby under its code.
func (s *LobbyStore) AddLobby(l *Lobby) {
	s.lobbies[l.Code] = l
}

// GetLobby retrieves an open lobby by code.
func (s *LobbyStore) GetLobby(code string) (*Lobby, bool) {
	l, ok := s.lobbies[code]
	return l, ok
}

// DeleteLobby removes the lobby.
func (s *LobbyStore) DeleteLobby(code string) {
	delete(s.lobbies, code)
}

// ByOccupant returns every lobby in which connID holds a seat.
func (s *LobbyStore) ByOccupant(connID string) []*Lobby {
	var out []*Lobby
	for _, l := range s.lobbies {
		if l.Has(connID) {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of open lobbies.
func (s *LobbyStore) Len() int {
	return len(s.lobbies)
}
