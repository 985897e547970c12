// Package orchestrator runs all configured source adapters and applies
// idempotent persistence with per-source audit logging.
package orchestrator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/collect"
)

// Config controls Orchestrator behavior.
type Config struct {
	// MaxPostsPerSource bounds how many items each adapter is asked for.
	MaxPostsPerSource int
}

// Orchestrator fans out over adapters, isolating each source's failures,
// and records one audit row per source per run. A run never fails as a
// whole: every outcome surfaces as a Report and an audit row.
type Orchestrator struct {
	adapters []collect.Adapter
	posts    collect.PostStore
	runs     collect.RunLog
	clock    collect.Clock
	cfg      Config
	logger   *zap.Logger
}

// New constructs an Orchestrator.
func New(
	adapters []collect.Adapter,
	posts collect.PostStore,
	runs collect.RunLog,
	clock collect.Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPostsPerSource <= 0 {
		cfg.MaxPostsPerSource = 20
	}
	return &Orchestrator{
		adapters: adapters,
		posts:    posts,
		runs:     runs,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one collection pass across all adapters concurrently and
// returns one Report per adapter, in adapter order. Sources are isolated:
// counters and the audit row are local to each source, and the only shared
// resource is the store, which is safe for concurrent insert-or-skip.
func (o *Orchestrator) Run(ctx context.Context) []collect.Report {
	runID := uuid.NewString()
	logger := o.logger.With(zap.String("run_id", runID))

	reports := make([]collect.Report, len(o.adapters))
	var wg sync.WaitGroup
	for i, adapter := range o.adapters {
		wg.Add(1)
		go func(i int, adapter collect.Adapter) {
			defer wg.Done()
			srcLogger := logger.With(zap.String("source", adapter.Source()))
			reports[i] = o.collectSource(ctx, runID, adapter, srcLogger)
		}(i, adapter)
	}
	wg.Wait()

	for _, report := range reports {
		logger.Info("source run finished",
			zap.String("source", report.Source),
			zap.String("status", string(report.Status)),
			zap.Int("posts_found", report.Counters.Found),
			zap.Int("posts_new", report.Counters.New),
			zap.String("error", report.Err),
		)
	}
	return reports
}

func (o *Orchestrator) collectSource(
	ctx context.Context,
	runID string,
	adapter collect.Adapter,
	logger *zap.Logger,
) collect.Report {
	start := o.clock.Now()
	report := collect.Report{Source: adapter.Source()}

	posts, err := adapter.Collect(ctx, o.cfg.MaxPostsPerSource)
	if err != nil {
		report.Status = collect.StatusFailed
		report.Err = collect.Truncate(err.Error(), collect.MaxErrorLen)
		logger.Error("source collection failed", zap.Error(err))
	} else {
		report.Counters = o.persistBatch(ctx, posts, logger)
		report.Status = deriveStatus(report.Counters)
	}
	report.Duration = o.clock.Now().Sub(start)

	// A canceled run writes no audit row for in-flight sources; they are
	// implicitly retried on the next scheduled invocation.
	if ctx.Err() != nil {
		logger.Warn("run canceled, skipping audit row", zap.Error(ctx.Err()))
		return report
	}

	run := collect.Run{
		RunID:        runID,
		Source:       report.Source,
		CollectedAt:  o.clock.Now(),
		PostsFound:   report.Counters.Found,
		PostsNew:     report.Counters.New,
		Status:       report.Status,
		ErrorMessage: report.Err,
	}
	if err := o.runs.RecordRun(ctx, run); err != nil {
		logger.Error("record audit row failed", zap.Error(err))
	}
	return report
}

// persistBatch attempts insert-or-skip for every record, each persisted
// independently so one failure never blocks siblings. Within the batch the
// first record for a given source URL wins; later ones count as duplicates.
func (o *Orchestrator) persistBatch(
	ctx context.Context,
	posts []collect.Post,
	logger *zap.Logger,
) collect.Counters {
	var counters collect.Counters
	seen := make(map[string]struct{}, len(posts))

	for _, post := range posts {
		counters.Found++

		if _, dup := seen[post.SourceURL]; dup {
			counters.Duplicates++
			continue
		}
		seen[post.SourceURL] = struct{}{}

		outcome, err := o.posts.SavePost(ctx, post)
		switch {
		case err != nil:
			counters.Failed++
			logger.Warn("persist post failed",
				zap.String("url", post.SourceURL),
				zap.Error(err),
			)
		case outcome == collect.OutcomeInserted:
			counters.New++
		default:
			counters.Duplicates++
		}
	}
	return counters
}

// deriveStatus maps batch counters onto a terminal run status. Duplicates
// and genuinely-new records both count as success; an empty batch is a
// normal outcome (e.g. an adapter without its optional credential).
// Note the accounting on the all-failures path: posts_found keeps the
// fetched count even though the status is failed, so the audit row
// records what was seen, not just what was stored. Only an adapter-level
// failure yields a zero-count row.
func deriveStatus(c collect.Counters) collect.RunStatus {
	switch {
	case c.Failed == 0:
		return collect.StatusSucceeded
	case c.New+c.Duplicates == 0:
		return collect.StatusFailed
	default:
		return collect.StatusPartial
	}
}
