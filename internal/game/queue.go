// internal/game/queue.go
package game

import (
	"github.com/sirco-master/chess-online/internal/models"
)

// Queue is the FIFO pool of connections waiting for a public opponent.
// It is not safe for concurrent use; Server serializes access.
type Queue struct {
	entries []string
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends connID unless it is already waiting. Reports whether it was added.
func (q *Queue) Push(connID string) bool {
	if q.Contains(connID) {
		return false
	}
	q.entries = append(q.entries, connID)
	return true
}

// PushFront puts connID back at the head, ahead of every other entry.
func (q *Queue) PushFront(connID string) {
	q.entries = append([]string{connID}, q.entries...)
}

// PopFront removes and returns the oldest entry.
func (q *Queue) PopFront() (string, bool) {
	if len(q.entries) == 0 {
		return "", false
	}
	id := q.entries[0]
	q.entries = q.entries[1:]
	return id, true
}

// Remove drops connID wherever it sits. No-op when absent.
func (q *Queue) Remove(connID string) bool {
	for i, id := range q.entries {
		if id == connID {
			q.entries = append(q.entries[:i:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether connID is waiting.
func (q *Queue) Contains(connID string) bool {
	for _, id := range q.entries {
		if id == connID {
			return true
		}
	}
	return false
}

// Len returns the number of waiting connections.
func (q *Queue) Len() int {
	return len(q.entries)
}

// Snapshot returns a copy of the waiting connection ids, oldest first.
func (q *Queue) Snapshot() []string {
	out := make([]string, len(q.entries))
	copy(out, q.entries)
	return out
}

// Enqueue puts a set-up connection into public matchmaking, acknowledges with
// matchmaking:searching and immediately tries to pair.
func (s *Server) Enqueue(connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions.Live(connID); !ok {
		return ErrNoSession
	}
	if s.queue.Push(connID) {
		s.log.Infof("Player %s joined matchmaking (%d waiting)", connID, s.queue.Len())
	}
	s.send(connID, models.EventMatchmakingSearching, nil)
	s.tryPair()
	return nil
}

// Dequeue removes connID from matchmaking. No-op when it is not waiting.
func (s *Server) Dequeue(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Remove(connID) {
		s.log.Infof("Player %s left matchmaking", connID)
	}
}

// tryPair drains the queue two entries at a time. Pairs whose sessions are
// both live become games; stale entries are discarded and a live survivor
// returns to the head. Leaves zero or one entry behind.
// Assumes lock is held.
func (s *Server) tryPair() {
	for s.queue.Len() >= 2 {
		a, _ := s.queue.PopFront()
		b, _ := s.queue.PopFront()
		_, aLive := s.sessions.Live(a)
		_, bLive := s.sessions.Live(b)

		switch {
		case aLive && bLive:
			white, black := a, b
			if s.intN(2) == 1 {
				white, black = b, a
			}
			s.startGame(white, black, models.PublicTimeControl)
		case aLive:
			s.log.Debugf("Discarding stale queue entry %s", b)
			s.queue.PushFront(a)
		case bLive:
			s.log.Debugf("Discarding stale queue entry %s", a)
			s.queue.PushFront(b)
		default:
			s.log.Debugf("Discarding stale queue entries %s, %s", a, b)
		}
	}
}
