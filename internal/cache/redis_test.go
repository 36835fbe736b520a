// internal/cache/redis_test.go
package cache

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirco-master/chess-online/internal/models"
)

// newTestQueue needs a real Redis. Set REDIS_ADDR to run against a non-default instance.
func newTestQueue(t *testing.T) *ActionQueue {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb, err := ConnectRedis(context.Background(), addr, 0)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	q := NewActionQueue(rdb, "chess_test_"+uuid.NewString(), logger)
	t.Cleanup(func() { rdb.Del(context.Background(), q.queue) })
	return q
}

func TestActionQueueRoundTrip(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	gameID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Record(ctx, models.GameAction{
			GameID:      gameID,
			ActionIndex: i,
			ActionType:  "game_move",
			Payload:     map[string]any{"move": "e4"},
			Timestamp:   time.Now().UnixMilli(),
		}))
	}

	n, err := q.rdb.LLen(ctx, q.queue).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	batch, _, err := q.PopBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, 0, batch[0].ActionIndex)
	assert.Equal(t, 1, batch[1].ActionIndex)
	assert.Equal(t, gameID, batch[0].GameID)

	require.NoError(t, q.Requeue(ctx, batch))
	batch, _, err = q.PopBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{batch[0].ActionIndex, batch[1].ActionIndex, batch[2].ActionIndex})

	batch, _, err = q.PopBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestActionQueueSkipsUndecodable(t *testing.T) {
	q := newTestQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	require.NoError(t, q.rdb.RPush(ctx, q.queue, "not json").Err())
	require.NoError(t, q.Record(ctx, models.GameAction{GameID: uuid.New(), ActionType: "game_start"}))

	batch, popped, err := q.PopBatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, popped)
	require.Len(t, batch, 1)
	assert.Equal(t, "game_start", batch[0].ActionType)
}
