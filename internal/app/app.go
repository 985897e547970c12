// Package app initializes and holds long-lived application services,
// acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/devpulse/pulse-collector/internal/collect"
	"github.com/devpulse/pulse-collector/internal/config"
	"github.com/devpulse/pulse-collector/internal/logging"
	"github.com/devpulse/pulse-collector/internal/source/devto"
	"github.com/devpulse/pulse-collector/internal/source/feed"
	"github.com/devpulse/pulse-collector/internal/source/github"
	"github.com/devpulse/pulse-collector/internal/source/youtube"
	"github.com/devpulse/pulse-collector/internal/storage/memory"
	"github.com/devpulse/pulse-collector/internal/storage/postgres"
)

// PostStore is the post persistence surface the application needs.
type PostStore interface {
	collect.PostStore
	CountPosts(ctx context.Context) (int64, error)
}

// RunStore is the audit log surface the application needs.
type RunStore interface {
	collect.RunLog
	ListRuns(ctx context.Context, limit int) ([]collect.Run, error)
}

// App holds the shared, long-lived services: logger, stores, adapters.
// It is initialized once at startup and passed to the commands.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Posts    PostStore
	Runs     RunStore
	Adapters []collect.Adapter

	pool *pgxpool.Pool
}

// Options tweaks App construction.
type Options struct {
	// DryRun swaps Postgres for in-memory stores so a collection pass
	// can be exercised without a database.
	DryRun bool
}

// New builds an App from configuration, failing fast if a critical
// service cannot be initialized.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if opts.DryRun {
		logger.Info("dry run: using in-memory stores, nothing will be persisted")
		a.Posts = memory.NewPostStore()
		a.Runs = memory.NewRunStore()
	} else {
		pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
			DSN:             cfg.DB.DSN,
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.pool = pool

		posts, err := postgres.NewPostStore(pool)
		if err != nil {
			return nil, fmt.Errorf("init post store: %w", err)
		}
		runs, err := postgres.NewRunStore(pool)
		if err != nil {
			return nil, fmt.Errorf("init run store: %w", err)
		}
		a.Posts = posts
		a.Runs = runs
	}

	a.Adapters = buildAdapters(cfg, logger)
	if len(a.Adapters) == 0 {
		logger.Warn("no sources enabled; collection runs will do nothing")
	}
	return a, nil
}

// SourceNames returns the identifiers of all configured adapters.
func (a *App) SourceNames() []string {
	names := make([]string, 0, len(a.Adapters))
	for _, adapter := range a.Adapters {
		names = append(names, adapter.Source())
	}
	return names
}

// Close releases pooled resources and flushes logs.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.Logger.Sync()
}

func buildAdapters(cfg config.Config, logger *zap.Logger) []collect.Adapter {
	client := &http.Client{Timeout: cfg.ClientTimeout()}
	ua := cfg.HTTP.UserAgent

	var adapters []collect.Adapter
	if cfg.Sources.DevTo.Enabled {
		adapters = append(adapters, devto.New(devto.Config{
			BaseURL:   cfg.Sources.DevTo.BaseURL,
			Tag:       cfg.Sources.DevTo.Tag,
			UserAgent: ua,
		}, client, logger))
	}
	if cfg.Sources.Feed.Enabled {
		adapters = append(adapters, feed.New(feed.Config{
			Name:      cfg.Sources.Feed.Name,
			URL:       cfg.Sources.Feed.URL,
			UserAgent: ua,
		}, client, logger))
	}
	if cfg.Sources.YouTube.Enabled {
		adapters = append(adapters, youtube.New(youtube.Config{
			BaseURL:   cfg.Sources.YouTube.BaseURL,
			APIKey:    cfg.Sources.YouTube.APIKey,
			Query:     cfg.Sources.YouTube.Query,
			UserAgent: ua,
		}, client, logger))
	}
	if cfg.Sources.GitHub.Enabled {
		adapters = append(adapters, github.New(github.Config{
			BaseURL:   cfg.Sources.GitHub.BaseURL,
			Token:     cfg.Sources.GitHub.Token,
			Query:     cfg.Sources.GitHub.Query,
			UserAgent: ua,
		}, client, logger))
	}
	return adapters
}
