// internal/game/lobby.go
package game

import (
	"fmt"

	"github.com/sirco-master/chess-online/internal/models"
)

const (
	lobbyCodeMin   = 10000
	lobbyCodeRange = 90000
)

// CreateLobby opens a private lobby hosted by connID and returns its invite code.
// The host receives lobby:created with the code and its own roster entry.
func (s *Server) CreateLobby(connID string, tc models.TimeControl) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, ok := s.sessions.Live(connID)
	if !ok {
		return "", ErrNoSession
	}
	if tc == "" {
		tc = models.Untimed
	}

	l := &Lobby{
		Code:        s.generateCode(),
		HostID:      connID,
		TimeControl: tc,
		CreatedAt:   s.clock.Now(),
	}
	s.lobbies.AddLobby(l)
	s.log.Infof("Lobby %s created by %s (%s)", l.Code, connID, tc)

	s.send(connID, models.EventLobbyCreated, models.LobbyPayload{
		Code: l.Code,
		Host: rosterEntry(host.Info()),
	})
	return l.Code, nil
}

// generateCode samples 5-digit codes until one is not held by an open lobby.
// Assumes lock is held.
func (s *Server) generateCode() string {
	for {
		code := fmt.Sprintf("%05d", lobbyCodeMin+s.intN(lobbyCodeRange))
		if _, taken := s.lobbies.GetLobby(code); !taken {
			return code
		}
	}
}

// JoinLobby seats connID as the guest of the lobby with the given code, sends
// the full roster to both occupants and arms the settle timer that turns the
// lobby into a game.
func (s *Server) JoinLobby(code, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := s.sessions.Live(connID)
	if !ok {
		return ErrNoSession
	}
	l, ok := s.lobbies.GetLobby(code)
	if !ok {
		return ErrLobbyNotFound
	}
	if l.HostID == connID {
		return ErrOwnLobby
	}
	if l.Filled() {
		return ErrLobbyFull
	}

	l.GuestID = connID
	s.log.Infof("Player %s joined lobby %s", connID, code)

	var host models.PlayerInfo
	if sess, ok := s.sessions.Lookup(l.HostID); ok {
		host = rosterEntry(sess.Info())
	}
	guestInfo := rosterEntry(guest.Info())
	roster := models.LobbyPayload{Code: code, Host: host, Guest: &guestInfo}
	s.send(l.HostID, models.EventLobbyUpdated, roster)
	s.send(l.GuestID, models.EventLobbyUpdated, roster)

	s.sched.Schedule(lobbyTaskKey(code), s.settleDelay, func() {
		s.settleLobby(l)
	})
	return nil
}

// rosterEntry marks a lobby occupant as ready. Seated players are always ready.
func rosterEntry(info models.PlayerInfo) models.PlayerInfo {
	info.Ready = true
	return info
}

// settleLobby runs when the settle delay expires. The host plays white.
func (s *Server) settleLobby(l *Lobby) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lobbies.GetLobby(l.Code)
	if !ok || current != l || !l.Filled() {
		return
	}
	s.lobbies.DeleteLobby(l.Code)
	s.startGame(l.HostID, l.GuestID, l.TimeControl)
}

// CancelLobby closes a lobby before its game starts. Only an occupant may cancel.
func (s *Server) CancelLobby(code, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lobbies.GetLobby(code)
	if !ok {
		return ErrLobbyNotFound
	}
	if !l.Has(connID) {
		return ErrNotInLobby
	}
	s.closeLobby(l, connID)
	return nil
}

// closeLobby tears the lobby down on behalf of leaverID and tells the other
// occupant, if any.
// Assumes lock is held.
func (s *Server) closeLobby(l *Lobby, leaverID string) {
	s.lobbies.DeleteLobby(l.Code)
	s.sched.Cancel(lobbyTaskKey(l.Code))
	s.log.Infof("Lobby %s closed by %s", l.Code, leaverID)

	s.send(l.Other(leaverID), models.EventLobbyClosed, models.LobbyCodePayload{Code: l.Code})
}
