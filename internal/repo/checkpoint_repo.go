package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Critiquely/internal/engine"
)

// CheckpointRepo хранит checkpoints графа в Postgres.
//
// Состояние сериализуется в jsonb; на один run хранится ровно один
// checkpoint (последний), Save перезаписывает предыдущий.
type CheckpointRepo[S any] struct {
	pool *pgxpool.Pool
}

// NewCheckpointRepo создаёт новый CheckpointRepo.
func NewCheckpointRepo[S any](pool *pgxpool.Pool) *CheckpointRepo[S] {
	return &CheckpointRepo[S]{pool: pool}
}

// Save сохраняет checkpoint, перезаписывая предыдущий для этого run.
func (r *CheckpointRepo[S]) Save(ctx context.Context, runID string, cp engine.Checkpoint[S]) error {
	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	query := `
		INSERT INTO checkpoints (run_id, next, state, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id)
		DO UPDATE SET next = EXCLUDED.next, state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, runID, cp.Next, stateJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}
	return nil
}

// Load возвращает последний checkpoint для run, если он есть.
func (r *CheckpointRepo[S]) Load(ctx context.Context, runID string) (engine.Checkpoint[S], bool, error) {
	var cp engine.Checkpoint[S]
	var stateJSON []byte

	query := `SELECT next, state FROM checkpoints WHERE run_id = $1`
	err := r.pool.QueryRow(ctx, query, runID).Scan(&cp.Next, &stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return cp, false, nil
	}
	if err != nil {
		return cp, false, fmt.Errorf("select checkpoint: %w", err)
	}

	if err := json.Unmarshal(stateJSON, &cp.State); err != nil {
		return cp, false, fmt.Errorf("unmarshal state: %w", err)
	}
	return cp, true, nil
}
