package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/api"
	"github.com/devpulse/pulse-collector/internal/app"
	"github.com/devpulse/pulse-collector/internal/clock/system"
	"github.com/devpulse/pulse-collector/internal/config"
	"github.com/devpulse/pulse-collector/internal/metrics"
	"github.com/devpulse/pulse-collector/internal/orchestrator"
	"github.com/devpulse/pulse-collector/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the collector as a long-lived service",
	Long: `serve runs collection passes on the configured schedule and exposes
an HTTP interface with health probes, Prometheus metrics, and read access
to the audit log.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	sched := scheduler.New(a.Logger, 15*time.Minute)
	err = sched.AddJob("collect", cfg.Collector.Schedule, func(jobCtx context.Context) error {
		metrics.IncActiveCollections()
		defer metrics.DecActiveCollections()
		logSummary(a.Logger, orch.Run(jobCtx))
		return nil
	})
	if err != nil {
		return err
	}
	sched.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(a.Runs, a.Posts, a.SourceNames(), a.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("http shutdown incomplete", zap.Error(err))
	}

	// Let any in-flight collection pass finish before the pool closes.
	<-sched.Stop().Done()
	a.Logger.Info("shutdown complete")
	return nil
}
