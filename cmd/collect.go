package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/app"
	"github.com/devpulse/pulse-collector/internal/clock/system"
	"github.com/devpulse/pulse-collector/internal/collect"
	"github.com/devpulse/pulse-collector/internal/config"
	"github.com/devpulse/pulse-collector/internal/metrics"
	"github.com/devpulse/pulse-collector/internal/orchestrator"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass across all enabled sources",
	Long: `collect polls every enabled source once, persists new posts, and
appends one audit row per source. Individual source failures are recorded
in the audit log, not surfaced as a process failure, so the command exits
zero whenever the pass itself could run.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.Options{DryRun: dryRun})
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Init()

	orch := orchestrator.New(
		a.Adapters,
		a.Posts,
		a.Runs,
		system.Clock{},
		orchestrator.Config{MaxPostsPerSource: cfg.Collector.MaxPostsPerSource},
		a.Logger,
	)

	reports := orch.Run(ctx)
	logSummary(a.Logger, reports)
	return nil
}

// logSummary reports per-source and aggregate outcomes and feeds the
// Prometheus collectors.
func logSummary(logger *zap.Logger, reports []collect.Report) {
	var found, newPosts, failed int
	for _, r := range reports {
		metrics.ObserveRun(r.Source, string(r.Status), r.Counters.Found, r.Counters.New, r.Duration)
		found += r.Counters.Found
		newPosts += r.Counters.New
		if r.Status == collect.StatusFailed {
			failed++
		}
	}
	logger.Info("collection pass complete",
		zap.Int("sources", len(reports)),
		zap.Int("sources_failed", failed),
		zap.Int("posts_found", found),
		zap.Int("posts_new", newPosts),
	)
}
