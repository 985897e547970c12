package collect

import (
	"context"
	"time"
)

// PersistOutcome distinguishes a genuine insert from a natural-key skip.
type PersistOutcome int

// Outcomes returned by PostStore.SavePost.
const (
	OutcomeInserted PersistOutcome = iota
	OutcomeDuplicate
)

// Adapter fetches raw items from one upstream source and maps them to
// canonical posts. Implementations must not touch storage; every outbound
// call must honor ctx. An adapter whose optional credential is absent
// returns an empty slice and a nil error.
type Adapter interface {
	// Source returns the source identifier stamped on every post.
	Source() string

	// Collect fetches at most limit items. Upstream may return fewer.
	// A whole-source failure (network, parse, auth) returns an error;
	// a malformed individual item is skipped, not escalated.
	Collect(ctx context.Context, limit int) ([]Post, error)
}

// PostStore persists canonical posts keyed by source URL.
type PostStore interface {
	// SavePost inserts the post or reports OutcomeDuplicate when a row
	// with the same source URL already exists. Duplicate is never an
	// error; any other storage failure is.
	SavePost(ctx context.Context, post Post) (PersistOutcome, error)
}

// RunLog appends audit rows, one per source per orchestrator run.
type RunLog interface {
	RecordRun(ctx context.Context, run Run) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
