package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirco-master/chess-online/internal/models"
)

func TestDisconnectLeavesQueue(t *testing.T) {
	env := newTestServer(t)
	env.setup("a")
	require.NoError(t, env.srv.Enqueue("a"))

	env.srv.Disconnect("a")

	stats := env.srv.Stats()
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, 0, stats.Sessions)
}

func TestDisconnectClosesLobbies(t *testing.T) {
	env := newTestServer(t)
	env.setup("host", "guest")
	code, err := env.srv.CreateLobby("host", models.Bullet)
	require.NoError(t, err)
	require.NoError(t, env.srv.JoinLobby(code, "guest"))

	env.srv.Disconnect("host")

	ev := env.out.last("guest")
	require.NotNil(t, ev)
	assert.Equal(t, models.EventLobbyClosed, ev.Type)
	assert.Equal(t, code, ev.Payload.(models.LobbyCodePayload).Code)
	assert.Equal(t, 0, env.srv.Stats().Lobbies)

	env.clock.Advance(DefaultSettleDelay)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, env.out.ofType("guest", models.EventGameStart))
}

func TestDisconnectArmsGraceWindow(t *testing.T) {
	env := newTestServer(t)
	g := env.startPublicGame(t, "a", "b")
	env.out.clear()

	env.srv.Disconnect("a")

	evs := env.out.ofType("b", models.EventOpponentDisconnected)
	require.Len(t, evs, 1)
	assert.Equal(t, g.ID.String(), evs[0].Payload.(models.GameRefPayload).GameID)
	assert.Equal(t, 1, env.srv.Stats().Games, "game survives the disconnect")
	assert.Equal(t, 1, env.srv.Stats().Timers)

	env.clock.Advance(DefaultGraceWindow - time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, env.srv.Stats().Games, "game survives until the grace window ends")

	env.clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		return env.srv.Stats().Games == 0
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, env.srv.Stats().Timers)
	require.Eventually(t, func() bool {
		for _, typ := range env.rec.types() {
			if typ == actionGameAbandoned {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestGraceTimerIsNotRearmed(t *testing.T) {
	env := newTestServer(t)
	g := env.startPublicGame(t, "a", "b")

	env.srv.Disconnect("a")
	env.clock.Advance(30 * time.Second)
	env.srv.Disconnect("b")

	env.clock.Advance(30 * time.Second)
	require.Eventually(t, func() bool {
		return env.srv.Stats().Games == 0
	}, time.Second, 5*time.Millisecond, "deletion follows the first disconnect, not the second")
	assert.False(t, env.srv.sched.Pending(gameTaskKey(g.ID.String())))
}

func TestGameEndingDisarmsGraceTimer(t *testing.T) {
	env := newTestServer(t)
	g := env.startPublicGame(t, "a", "b")

	env.srv.Disconnect("a")
	require.True(t, env.srv.sched.Pending(gameTaskKey(g.ID.String())))

	require.NoError(t, env.srv.Resign(g.ID.String(), "b"))
	assert.False(t, env.srv.sched.Pending(gameTaskKey(g.ID.String())))

	env.clock.Advance(DefaultGraceWindow)
	time.Sleep(20 * time.Millisecond)
	assert.NotContains(t, env.rec.types(), actionGameAbandoned)
}

func TestDisconnectWithoutSetup(t *testing.T) {
	env := newTestServer(t)
	assert.NotPanics(t, func() { env.srv.Disconnect("never-registered") })
}
