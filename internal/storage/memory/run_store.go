package memory

import (
	"context"
	"sync"

	"github.com/devpulse/pulse-collector/internal/collect"
)

// RunStore keeps audit rows in memory, append-only.
type RunStore struct {
	mu   sync.Mutex
	runs []collect.Run
	seq  int64
}

// NewRunStore creates an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// RecordRun appends one audit row.
func (s *RunStore) RecordRun(_ context.Context, run collect.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	run.ID = s.seq
	s.runs = append(s.runs, run)
	return nil
}

// ListRuns returns up to limit audit rows, newest first.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]collect.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}
	out := make([]collect.Run, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}
