package postgres

import (
	"context"
	"fmt"

	"github.com/devpulse/pulse-collector/internal/collect"
)

// RunStore appends and reads the append-only collection audit log.
type RunStore struct {
	pool Pool
}

// NewRunStore constructs a RunStore over an existing pool.
func NewRunStore(pool Pool) (*RunStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &RunStore{pool: pool}, nil
}

const insertRunSQL = `
INSERT INTO collection_runs (
	run_id,
	source,
	collected_at,
	posts_found,
	posts_new,
	status,
	error_message
) VALUES (
	$1,$2,$3,$4,$5,$6,$7
)`

// RecordRun appends one audit row. Rows are immutable after creation.
func (s *RunStore) RecordRun(ctx context.Context, run collect.Run) error {
	if _, err := s.pool.Exec(ctx, insertRunSQL,
		run.RunID,
		run.Source,
		run.CollectedAt,
		run.PostsFound,
		run.PostsNew,
		string(run.Status),
		nullable(run.ErrorMessage),
	); err != nil {
		return fmt.Errorf("insert collection run: %w", err)
	}
	return nil
}

const listRunsSQL = `
SELECT id, run_id, source, collected_at, posts_found, posts_new, status, COALESCE(error_message, '')
FROM collection_runs
ORDER BY collected_at DESC, id DESC
LIMIT $1`

// ListRuns returns the most recent audit rows, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]collect.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list collection runs: %w", err)
	}
	defer rows.Close()

	var runs []collect.Run
	for rows.Next() {
		var run collect.Run
		var status string
		if err := rows.Scan(
			&run.ID,
			&run.RunID,
			&run.Source,
			&run.CollectedAt,
			&run.PostsFound,
			&run.PostsNew,
			&status,
			&run.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan collection run: %w", err)
		}
		run.Status = collect.RunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collection runs: %w", err)
	}
	return runs, nil
}
