// internal/game/server.go
package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/models"
)

const (
	// DefaultSettleDelay is the pause between a private lobby filling and its game starting.
	DefaultSettleDelay = 2 * time.Second
	// DefaultGraceWindow is how long an abandoned game survives a participant's disconnect.
	DefaultGraceWindow = 60 * time.Second
)

// Outbox delivers server events to a connection. Send must not block.
type Outbox interface {
	Send(connID string, ev models.Event)
}

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	SettleDelay time.Duration
	GraceWindow time.Duration
	Clock       clockwork.Clock
	Recorder    Recorder
	Logger      *logrus.Logger

	// IntN returns a uniform int in [0, n). Used for lobby codes and color flips.
	IntN func(n int) int
}

// Server owns every piece of shared match state: sessions, the matchmaking
// queue, private lobbies and active games. Exported methods each hold mu for
// the whole event, and timer callbacks re-acquire it when they fire, so no two
// handlers ever touch the maps at the same time.
type Server struct {
	mu sync.Mutex

	sessions *SessionRegistry
	queue    *Queue
	lobbies  *LobbyStore
	games    *GameStore

	sched    *Scheduler
	clock    clockwork.Clock
	out      Outbox
	recorder Recorder
	log      *logrus.Entry
	intN     func(n int) int

	settleDelay time.Duration
	graceWindow time.Duration

	actions    chan models.GameAction
	recordDone chan struct{}
	closed     bool
}

// NewServer wires a Server that delivers its events through out.
func NewServer(out Outbox, opts Options) *Server {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.GraceWindow <= 0 {
		opts.GraceWindow = DefaultGraceWindow
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.IntN == nil {
		opts.IntN = rand.IntN
	}
	s := &Server{
		sessions:    NewSessionRegistry(),
		queue:       NewQueue(),
		lobbies:     NewLobbyStore(),
		games:       NewGameStore(),
		sched:       NewScheduler(opts.Clock),
		clock:       opts.Clock,
		out:         out,
		recorder:    opts.Recorder,
		log:         opts.Logger.WithField("component", "match"),
		intN:        opts.IntN,
		settleDelay: opts.SettleDelay,
		graceWindow: opts.GraceWindow,
	}
	if s.recorder != nil {
		s.actions = make(chan models.GameAction, recordBuffer)
		s.recordDone = make(chan struct{})
		go s.runRecorder()
	}
	return s
}

// Close stops every pending settle and grace timer and waits for queued
// actions to reach the recorder.
func (s *Server) Close() {
	s.sched.StopAll()

	s.mu.Lock()
	first := !s.closed
	s.closed = true
	if first && s.actions != nil {
		close(s.actions)
	}
	s.mu.Unlock()

	if s.recordDone != nil {
		<-s.recordDone
	}
}

// Register binds a display identity to connID. Calling it again overwrites.
func (s *Server) Register(connID, displayName, avatar string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions.Register(connID, displayName, avatar)
	s.log.Infof("Player setup: %s (%s)", sess.DisplayName, connID)
}

// Dispatch decodes one inbound envelope and routes it to the owning component.
// Any precondition failure is reported back to connID as an error event.
func (s *Server) Dispatch(connID string, env models.Envelope) {
	if err := s.dispatch(connID, env); err != nil {
		s.log.WithFields(logrus.Fields{
			"conn":  connID,
			"event": env.Type,
		}).Debugf("event rejected: %v", err)
		s.sendError(connID, err)
	}
}

func (s *Server) dispatch(connID string, env models.Envelope) error {
	switch env.Type {
	case models.EventPlayerSetup:
		var p models.SetupPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		s.Register(connID, p.DisplayName, p.Avatar)
		return nil

	case models.EventMatchmakingJoin:
		return s.Enqueue(connID)

	case models.EventMatchmakingLeave:
		s.Dequeue(connID)
		return nil

	case models.EventLobbyCreate:
		var p models.LobbyCreatePayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		_, err := s.CreateLobby(connID, p.TimeControl)
		return err

	case models.EventLobbyJoin:
		var p models.LobbyCodePayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		return s.JoinLobby(p.Code, connID)

	case models.EventLobbyCancel:
		var p models.LobbyCodePayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		return s.CancelLobby(p.Code, connID)

	case models.EventGameMove:
		var p models.MovePayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		return s.SubmitMove(connID, p)

	case models.EventGameResign:
		var p models.GameRefPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		return s.Resign(p.GameID, connID)

	case models.EventGameOver:
		var p models.GameOverPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		return s.ReportGameOver(p.GameID, connID, p.Result)

	case models.EventChatMessage:
		var p models.ChatInPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		return s.SendChatMessage(p.GameID, connID, p.Text)

	case models.EventPing:
		s.send(connID, models.EventPong, nil)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, env.Type)
	}
}

// decodePayload unmarshals raw into v. A missing payload leaves v zeroed.
func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// Stats is a point-in-time count of the shared maps and armed timers.
type Stats struct {
	Sessions int `json:"sessions"`
	Queued   int `json:"queued"`
	Lobbies  int `json:"lobbies"`
	Games    int `json:"games"`
	Timers   int `json:"timers"`
}

// Stats snapshots the current map sizes.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Sessions: s.sessions.Len(),
		Queued:   s.queue.Len(),
		Lobbies:  s.lobbies.Len(),
		Games:    s.games.Len(),
		Timers:   s.sched.Len(),
	}
}

// send pushes one event to connID. Unknown connections are ignored by the outbox.
func (s *Server) send(connID string, typ models.EventType, payload any) {
	if connID == "" {
		return
	}
	s.out.Send(connID, models.Event{Type: typ, Payload: payload})
}

func (s *Server) sendError(connID string, err error) {
	s.send(connID, models.EventError, models.ErrorPayload{Message: err.Error()})
}
