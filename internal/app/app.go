package app

import (
	"context"
	"errors"
	"fmt"

	"tradebattle/internal/battle"
	"tradebattle/internal/config"
	"tradebattle/internal/logger"
	"tradebattle/internal/store/journal"
	"tradebattle/internal/store/sqlite"
	httpapi "tradebattle/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// App owns application-level orchestration: configuration, the battle
// orchestrator, persistence and the HTTP surface.
type App struct {
	cfg      *config.Config
	catalog  *config.CatalogLoader
	orch     *battle.Orchestrator
	server   *httpapi.Server
	sessions *sqlite.SqliteStore
	trades   *journal.Journal
}

// NewApp builds the application from configuration without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return build(cfg)
}

// Orchestrator exposes the battle orchestrator (for harnesses and tests).
func (a *App) Orchestrator() *battle.Orchestrator {
	if a == nil {
		return nil
	}
	return a.orch
}

// Run starts the HTTP server and the battle loop, blocking until ctx is
// cancelled or either fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.close()

	stop := make(chan struct{})
	defer close(stop)
	if err := a.catalog.Watch(stop); err != nil {
		logger.Warnf("catalog hot reload disabled: %v", err)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := a.orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("battle loop error: %w", err)
		}
		return nil
	})
	logger.Infof("tradebattle up: http=%s rounds=%d policy=%s", a.server.Addr(), a.cfg.Battle.MaxRounds, a.cfg.AI.Policy)
	return group.Wait()
}

func (a *App) close() {
	if a.trades != nil {
		if err := a.trades.Close(); err != nil {
			logger.Warnf("closing trade journal: %v", err)
		}
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			logger.Warnf("closing session store: %v", err)
		}
	}
}
