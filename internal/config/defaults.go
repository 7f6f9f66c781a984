package config

const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultAppHTTPAddr       = ":9992"
	defaultMaxRounds         = 3
	defaultRoundSeconds      = 60
	defaultTransitionSeconds = 3
	defaultStartingCash      = 10000
	defaultTradeQueueLimit   = 16
	defaultMarketTickMs      = 1000
	defaultMarketMaxDrift    = 0.03
	defaultMarketPriceFloor  = 0.01
	defaultCatalogPath       = "configs/catalog.json"
	defaultAIPolicy          = "random"
	defaultAIPollMinMs       = 2000
	defaultAIPollMaxMs       = 4000
	defaultMomentumPeriod    = 5
	defaultSessionDBPath     = "data/db/sessions.db"
	defaultJournalDBPath     = "data/db/trades.db"
	defaultReportDir         = "data/reports"
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.Battle.MaxRounds == 0 {
		c.Battle.MaxRounds = defaultMaxRounds
	}
	if c.Battle.RoundSeconds == 0 {
		c.Battle.RoundSeconds = defaultRoundSeconds
	}
	if c.Battle.TransitionSeconds == 0 {
		c.Battle.TransitionSeconds = defaultTransitionSeconds
	}
	if c.Battle.StartingCash == 0 {
		c.Battle.StartingCash = defaultStartingCash
	}
	if c.Battle.TradeQueueLimit == 0 {
		c.Battle.TradeQueueLimit = defaultTradeQueueLimit
	}
	if c.Market.TickMs == 0 {
		c.Market.TickMs = defaultMarketTickMs
	}
	if c.Market.MaxDriftPct == 0 {
		c.Market.MaxDriftPct = defaultMarketMaxDrift
	}
	if c.Market.PriceFloor == 0 {
		c.Market.PriceFloor = defaultMarketPriceFloor
	}
	if c.Market.CatalogPath == "" {
		c.Market.CatalogPath = defaultCatalogPath
	}
	if c.AI.Policy == "" {
		c.AI.Policy = defaultAIPolicy
	}
	if c.AI.PollMinMs == 0 {
		c.AI.PollMinMs = defaultAIPollMinMs
	}
	if c.AI.PollMaxMs == 0 {
		c.AI.PollMaxMs = defaultAIPollMaxMs
	}
	if c.AI.MomentumPeriod == 0 {
		c.AI.MomentumPeriod = defaultMomentumPeriod
	}
	if c.Store.SessionDBPath == "" {
		c.Store.SessionDBPath = defaultSessionDBPath
	}
	if c.Store.JournalDBPath == "" {
		c.Store.JournalDBPath = defaultJournalDBPath
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = defaultReportDir
	}
}
