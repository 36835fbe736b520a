// internal/database/game_actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sirco-master/chess-online/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         UUID PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'in_progress',
	start_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time   TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS game_actions (
	game_id        UUID NOT NULL REFERENCES games (id),
	action_index   INT NOT NULL,
	actor_id       TEXT,
	action_type    TEXT NOT NULL,
	action_payload JSONB,
	recorded_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (game_id, action_index)
);
`

// Final statuses keyed by the action that ends a game.
var terminalStatus = map[string]string{
	"game_over":      "completed",
	"game_resign":    "completed",
	"game_abandoned": "abandoned",
}

// ActionStore archives game actions in Postgres.
type ActionStore struct {
	pool *pgxpool.Pool
}

func NewActionStore(pool *pgxpool.Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// EnsureSchema creates the archive tables if they are missing.
func (s *ActionStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}
	return nil
}

// InsertGameActions writes a batch in a single transaction. Replayed actions
// are ignored, and a terminal action closes out its game row.
func (s *ActionStore) InsertGameActions(ctx context.Context, actions []models.GameAction) error {
	if len(actions) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, a := range actions {
			if err := insertGameActionTx(ctx, tx, a); err != nil {
				return fmt.Errorf("insert action %d of game %s: %w", a.ActionIndex, a.GameID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert game actions: %w", err)
	}
	return nil
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, a models.GameAction) error {
	upsertGame := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', to_timestamp($2 / 1000.0))
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGame, a.GameID, a.Timestamp); err != nil {
		return err
	}

	if a.ActionType == "game_start" {
		setStart := `UPDATE games SET start_time = to_timestamp($2 / 1000.0) WHERE id = $1`
		if _, err := tx.Exec(ctx, setStart, a.GameID, a.Timestamp); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return err
	}
	insertAction := `
		INSERT INTO game_actions (game_id, action_index, actor_id, action_type, action_payload, recorded_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, to_timestamp($6 / 1000.0))
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertAction, a.GameID, a.ActionIndex, a.ActorID, a.ActionType, payload, a.Timestamp); err != nil {
		return err
	}

	if status, ok := terminalStatus[a.ActionType]; ok {
		finalize := `
			UPDATE games
			SET status = $2, end_time = to_timestamp($3 / 1000.0)
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err := tx.Exec(ctx, finalize, a.GameID, status, a.Timestamp); err != nil {
			return err
		}
	}
	return nil
}
