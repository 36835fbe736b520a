package game

import (
	"fmt"

	"github.com/sirco-master/chess-online/internal/models"
)

// PlayerSession is the identity bound to one live connection.
type PlayerSession struct {
	ConnID      string
	DisplayName string
	Avatar      string
	Connected   bool
}

// Info returns the public identity shown to opponents.
func (p *PlayerSession) Info() models.PlayerInfo {
	return models.PlayerInfo{DisplayName: p.DisplayName, Avatar: p.Avatar}
}

// SessionRegistry maps connection ids to player sessions.
// It is not safe for concurrent use; Server serializes access.
type SessionRegistry struct {
	sessions map[string]*PlayerSession
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*PlayerSession),
	}
}

// Register stores or overwrites the session for connID. An empty display name
// falls back to a short name derived from the connection id.
func (r *SessionRegistry) Register(connID, displayName, avatar string) *PlayerSession {
	if displayName == "" {
		short := connID
		if len(short) > 4 {
			short = short[:4]
		}
		displayName = fmt.Sprintf("Player_%s", short)
	}
	sess := &PlayerSession{
		ConnID:      connID,
		DisplayName: displayName,
		Avatar:      avatar,
		Connected:   true,
	}
	r.sessions[connID] = sess
	return sess
}

// Lookup returns the session for connID, if any.
func (r *SessionRegistry) Lookup(connID string) (*PlayerSession, bool) {
	sess, ok := r.sessions[connID]
	return sess, ok
}

// Live returns the session for connID only while it is still connected.
func (r *SessionRegistry) Live(connID string) (*PlayerSession, bool) {
	sess, ok := r.sessions[connID]
	if !ok || !sess.Connected {
		return nil, false
	}
	return sess, true
}

// Release drops the session. Disconnect handling calls it last.
func (r *SessionRegistry) Release(connID string) {
	delete(r.sessions, connID)
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	return len(r.sessions)
}
