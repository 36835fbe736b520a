// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirco-master/chess-online/internal/models"
)

type memSource struct {
	mu      sync.Mutex
	pending []models.GameAction
}

// PopBatch treats entries with an empty ActionType as undecodable.
func (m *memSource) PopBatch(_ context.Context, n int) ([]models.GameAction, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(m.pending) {
		n = len(m.pending)
	}
	var out []models.GameAction
	for _, a := range m.pending[:n] {
		if a.ActionType != "" {
			out = append(out, a)
		}
	}
	m.pending = m.pending[n:]
	return out, n, nil
}

func (m *memSource) Requeue(_ context.Context, actions []models.GameAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(append([]models.GameAction(nil), actions...), m.pending...)
	return nil
}

func (m *memSource) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

type memSink struct {
	mu      sync.Mutex
	batches [][]models.GameAction
	fail    error
}

func (m *memSink) InsertGameActions(_ context.Context, actions []models.GameAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.batches = append(m.batches, actions)
	return nil
}

func (m *memSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func actions(n int) []models.GameAction {
	id := uuid.New()
	out := make([]models.GameAction, n)
	for i := range out {
		out[i] = models.GameAction{GameID: id, ActionIndex: i, ActionType: "game_move"}
	}
	return out
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestFlushDrainsInBatches(t *testing.T) {
	src := &memSource{pending: actions(7)}
	sink := &memSink{}
	svc := NewService(src, sink, 3, time.Second, quietLogger())

	n, err := svc.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 0, src.len())

	require.Len(t, sink.batches, 3)
	assert.Len(t, sink.batches[0], 3)
	assert.Len(t, sink.batches[2], 1)
	assert.Equal(t, 0, sink.batches[0][0].ActionIndex)
	assert.Equal(t, 6, sink.batches[2][0].ActionIndex)
}

func TestFlushRequeuesOnFailure(t *testing.T) {
	src := &memSource{pending: actions(4)}
	sink := &memSink{fail: errors.New("db down")}
	svc := NewService(src, sink, 10, time.Second, quietLogger())

	n, err := svc.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 4, src.len(), "failed batch goes back to the queue")

	sink.fail = nil
	n, err = svc.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestFlushContinuesPastUndecodableEntries(t *testing.T) {
	pending := append(make([]models.GameAction, 3), actions(4)...)
	src := &memSource{pending: pending}
	sink := &memSink{}
	svc := NewService(src, sink, 3, time.Second, quietLogger())

	n, err := svc.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 0, src.len())
	assert.Equal(t, 4, sink.count())
}

func TestFlushEmptyQueue(t *testing.T) {
	svc := NewService(&memSource{}, &memSink{}, 5, time.Second, quietLogger())
	n, err := svc.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStartFlushesOnSchedule(t *testing.T) {
	src := &memSource{pending: actions(5)}
	sink := &memSink{}
	svc := NewService(src, sink, 2, 20*time.Millisecond, quietLogger())

	require.NoError(t, svc.Start(context.Background()))
	require.Eventually(t, func() bool { return sink.count() == 5 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, src.Requeue(context.Background(), actions(1)))
	require.NoError(t, svc.Stop(context.Background()))
	assert.Equal(t, 6, sink.count(), "stop runs a final flush")
}
