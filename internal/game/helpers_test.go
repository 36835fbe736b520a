package game

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sirco-master/chess-online/internal/models"
)

// recordingOutbox collects events per connection instead of writing to sockets.
type recordingOutbox struct {
	mu     sync.Mutex
	events map[string][]models.Event
}

func newRecordingOutbox() *recordingOutbox {
	return &recordingOutbox{events: make(map[string][]models.Event)}
}

func (o *recordingOutbox) Send(connID string, ev models.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events[connID] = append(o.events[connID], ev)
}

func (o *recordingOutbox) eventsFor(connID string) []models.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.Event, len(o.events[connID]))
	copy(out, o.events[connID])
	return out
}

func (o *recordingOutbox) last(connID string) *models.Event {
	evs := o.eventsFor(connID)
	if len(evs) == 0 {
		return nil
	}
	return &evs[len(evs)-1]
}

func (o *recordingOutbox) countType(connID string, typ models.EventType) int {
	n := 0
	for _, ev := range o.eventsFor(connID) {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (o *recordingOutbox) ofType(connID string, typ models.EventType) []models.Event {
	var out []models.Event
	for _, ev := range o.eventsFor(connID) {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (o *recordingOutbox) clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = make(map[string][]models.Event)
}

// memRecorder keeps archived actions in memory.
type memRecorder struct {
	mu      sync.Mutex
	actions []models.GameAction
}

func (r *memRecorder) Record(_ context.Context, a models.GameAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return nil
}

func (r *memRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a.ActionType)
	}
	return out
}

// counterIntN returns successive values modulo n so lobby codes never collide
// by accident and color flips alternate.
func counterIntN() func(int) int {
	var mu sync.Mutex
	next := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		v := next % n
		next++
		return v
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type testEnv struct {
	srv   *Server
	out   *recordingOutbox
	clock *clockwork.FakeClock
	rec   *memRecorder
}

func newTestServer(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	env := &testEnv{
		out:   newRecordingOutbox(),
		clock: clockwork.NewFakeClock(),
		rec:   &memRecorder{},
	}
	o := Options{
		Clock:    env.clock,
		Recorder: env.rec,
		Logger:   quietLogger(),
		IntN:     counterIntN(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	env.srv = NewServer(env.out, o)
	t.Cleanup(env.srv.Close)
	return env
}

// setup registers each connection id with a display name equal to its id.
func (e *testEnv) setup(ids ...string) {
	for _, id := range ids {
		e.srv.Register(id, "name-"+id, "avatar-"+id)
	}
}

// startPublicGame pairs a and b through matchmaking and returns the game.
func (e *testEnv) startPublicGame(t *testing.T, a, b string) *Game {
	t.Helper()
	e.setup(a, b)
	require.NoError(t, e.srv.Enqueue(a))
	require.NoError(t, e.srv.Enqueue(b))

	e.srv.mu.Lock()
	defer e.srv.mu.Unlock()
	games := e.srv.games.ByPlayer(a)
	require.Len(t, games, 1)
	return games[0]
}

func decode[T any](t *testing.T, payload any) T {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// positionAfterWhiteMove and positionAfterBlackMove put black and white on move respectively.
const (
	positionAfterWhiteMove = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	positionAfterBlackMove = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
)
