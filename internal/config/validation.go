package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Battle.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	return nil
}

func (b *BattleConfig) validate() error {
	if b.MaxRounds <= 0 {
		return fmt.Errorf("battle.max_rounds must be positive, got %d", b.MaxRounds)
	}
	if b.RoundSeconds <= 0 {
		return fmt.Errorf("battle.round_seconds must be positive, got %d", b.RoundSeconds)
	}
	if b.TransitionSeconds <= 0 {
		return fmt.Errorf("battle.transition_seconds must be positive, got %d", b.TransitionSeconds)
	}
	if b.StartingCash <= 0 {
		return fmt.Errorf("battle.starting_cash must be positive, got %v", b.StartingCash)
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if m.TickMs <= 0 {
		return fmt.Errorf("market.tick_ms must be positive, got %d", m.TickMs)
	}
	if m.MaxDriftPct <= 0 || m.MaxDriftPct >= 1 {
		return fmt.Errorf("market.max_drift_pct must be in (0,1), got %v", m.MaxDriftPct)
	}
	if m.PriceFloor <= 0 {
		return fmt.Errorf("market.price_floor must be positive, got %v", m.PriceFloor)
	}
	if strings.TrimSpace(m.CatalogPath) == "" {
		return fmt.Errorf("market.catalog_path cannot be empty")
	}
	return nil
}

func (a *AIConfig) validate() error {
	switch a.Policy {
	case "random", "momentum":
	case "signal-file":
		if strings.TrimSpace(a.SignalFeedPath) == "" {
			return fmt.Errorf("ai.signal_feed_path is required for the signal-file policy")
		}
	default:
		return fmt.Errorf("ai.policy must be one of random, momentum, signal-file; got %q", a.Policy)
	}
	if a.PollMinMs <= 0 {
		return fmt.Errorf("ai.poll_min_ms must be positive, got %d", a.PollMinMs)
	}
	if a.PollMaxMs < a.PollMinMs {
		return fmt.Errorf("ai.poll_max_ms (%d) must be >= ai.poll_min_ms (%d)", a.PollMaxMs, a.PollMinMs)
	}
	if a.MomentumPeriod < 2 {
		return fmt.Errorf("ai.momentum_period must be at least 2, got %d", a.MomentumPeriod)
	}
	return nil
}
