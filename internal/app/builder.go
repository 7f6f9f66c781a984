package app

import (
	"fmt"
	"time"

	"tradebattle/internal/analysis"
	"tradebattle/internal/battle"
	"tradebattle/internal/config"
	"tradebattle/internal/decision"
	"tradebattle/internal/logger"
	"tradebattle/internal/market"
	"tradebattle/internal/store"
	"tradebattle/internal/store/journal"
	"tradebattle/internal/store/sqlite"
	httpapi "tradebattle/internal/transport/http"

	"github.com/shopspring/decimal"
)

// build assembles the dependency graph from configuration.
func build(cfg *config.Config) (*App, error) {
	catalog, err := config.NewCatalogLoader(cfg.Market.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading instrument catalog: %w", err)
	}

	sessions, err := sqlite.NewSqliteStore(cfg.Store.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	trades, err := journal.New(cfg.Store.JournalDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening trade journal: %w", err)
	}

	human := decision.NewHumanSource(cfg.Battle.TradeQueueLimit)
	policy, err := buildPolicy(cfg.AI)
	if err != nil {
		return nil, err
	}
	auto := decision.NewAutoSource(policy)

	var onComplete func(store.SessionRecord)
	if cfg.Report.Enabled {
		outputDir := cfg.Report.OutputDir
		onComplete = func(record store.SessionRecord) {
			path, err := analysis.WriteMatchReport(record, outputDir)
			if err != nil {
				logger.Errorf("writing match report failed: %v", err)
				return
			}
			logger.Infof("match report written to %s", path)
		}
	}

	orch, err := battle.NewOrchestrator(battle.OrchestratorConfig{
		MaxRounds:       cfg.Battle.MaxRounds,
		RoundTicks:      cfg.Battle.RoundSeconds,
		TransitionTicks: cfg.Battle.TransitionSeconds,
		TickUnit:        time.Second,
		StartingCash:    decimal.NewFromFloat(cfg.Battle.StartingCash),
		Market: market.Config{
			TickInterval: time.Duration(cfg.Market.TickMs) * time.Millisecond,
			MaxDriftPct:  cfg.Market.MaxDriftPct,
			PriceFloor:   decimal.NewFromFloat(cfg.Market.PriceFloor),
			Seed:         cfg.Market.Seed,
		},
		AIPollMin:   time.Duration(cfg.AI.PollMinMs) * time.Millisecond,
		AIPollMax:   time.Duration(cfg.AI.PollMaxMs) * time.Millisecond,
		AutoAdvance: cfg.Battle.AutoAdvance,
		Seed:        cfg.AI.Seed,
		Catalog:     catalog.Specs,
		Human:       human,
		AI:          auto,
		Recorder:    sessions,
		Journal:     trades,
		OnComplete:  onComplete,
	})
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:     cfg.App.HTTPAddr,
		Battle:   orch,
		Sessions: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("building http server: %w", err)
	}

	return &App{
		cfg:      cfg,
		catalog:  catalog,
		orch:     orch,
		server:   server,
		sessions: sessions,
		trades:   trades,
	}, nil
}

func buildPolicy(cfg config.AIConfig) (decision.Policy, error) {
	switch cfg.Policy {
	case "random":
		return decision.NewRandomPolicy(cfg.Seed), nil
	case "momentum":
		return decision.NewMomentumPolicy(cfg.MomentumPeriod), nil
	case "signal-file":
		return decision.NewSignalFilePolicy(cfg.SignalFeedPath)
	default:
		return nil, fmt.Errorf("unknown ai policy %q", cfg.Policy)
	}
}
