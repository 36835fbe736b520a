// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sirco-master/chess-online/internal/models"
)

// DefaultQueueName is the Redis list the relay appends game actions to.
const DefaultQueueName = "chess_game_actions"

// ConnectRedis opens a client and verifies it with a ping.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// ActionQueue is a Redis list of JSON-encoded game actions. The relay appends
// to it through Record; the historian drains it with PopBatch.
type ActionQueue struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Entry
}

// NewActionQueue wraps rdb. An empty queue name falls back to DefaultQueueName.
func NewActionQueue(rdb *redis.Client, queue string, logger *logrus.Logger) *ActionQueue {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionQueue{
		rdb:   rdb,
		queue: queue,
		log:   logger.WithField("queue", queue),
	}
}

// Record serializes the action and pushes it onto the tail of the queue.
func (q *ActionQueue) Record(ctx context.Context, action models.GameAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal GameAction: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}

// PopBatch removes up to n entries from the head of the queue and returns the
// decoded actions with the number of entries removed. Entries that do not
// decode are logged and skipped, so popped may exceed len(actions).
func (q *ActionQueue) PopBatch(ctx context.Context, n int) (actions []models.GameAction, popped int, err error) {
	raw, err := q.rdb.LPopCount(ctx, q.queue, n).Result()
	if errors.Is(err, redis.Nil) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("LPOP %s: %w", q.queue, err)
	}

	actions = make([]models.GameAction, 0, len(raw))
	for _, item := range raw {
		var a models.GameAction
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			q.log.Warnf("invalid action record: %v", err)
			continue
		}
		actions = append(actions, a)
	}
	return actions, len(raw), nil
}

// Requeue puts actions back at the head of the queue in their original order,
// e.g. after a failed database write.
func (q *ActionQueue) Requeue(ctx context.Context, actions []models.GameAction) error {
	if len(actions) == 0 {
		return nil
	}
	values := make([]any, 0, len(actions))
	for i := len(actions) - 1; i >= 0; i-- {
		data, err := json.Marshal(actions[i])
		if err != nil {
			return fmt.Errorf("failed to marshal GameAction: %w", err)
		}
		values = append(values, data)
	}
	if err := q.rdb.LPush(ctx, q.queue, values...).Err(); err != nil {
		return fmt.Errorf("failed to LPush to Redis list '%s': %w", q.queue, err)
	}
	return nil
}
