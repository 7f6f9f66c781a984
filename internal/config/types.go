package config

// Config is the main configuration carrier for tradebattle.
type Config struct {
	App    AppConfig    `toml:"app"`
	Battle BattleConfig `toml:"battle"`
	Market MarketConfig `toml:"market"`
	AI     AIConfig     `toml:"ai"`
	Store  StoreConfig  `toml:"store"`
	Report ReportConfig `toml:"report"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// BattleConfig holds the match rules.
type BattleConfig struct {
	MaxRounds         int     `toml:"max_rounds"`
	RoundSeconds      int     `toml:"round_seconds"`
	TransitionSeconds int     `toml:"transition_seconds"`
	StartingCash      float64 `toml:"starting_cash"`
	AutoAdvance       bool    `toml:"auto_advance"`
	TradeQueueLimit   int     `toml:"trade_queue_limit"`
}

// MarketConfig controls the simulated price walk.
type MarketConfig struct {
	TickMs      int     `toml:"tick_ms"`
	MaxDriftPct float64 `toml:"max_drift_pct"`
	PriceFloor  float64 `toml:"price_floor"`
	CatalogPath string  `toml:"catalog_path"`
	// Seed pins price trajectories for reproducible matches; 0 = random.
	Seed int64 `toml:"seed"`
}

// AIConfig selects and tunes the automated trader.
type AIConfig struct {
	// Policy is one of "random", "momentum", "signal-file".
	Policy         string `toml:"policy"`
	PollMinMs      int    `toml:"poll_min_ms"`
	PollMaxMs      int    `toml:"poll_max_ms"`
	MomentumPeriod int    `toml:"momentum_period"`
	SignalFeedPath string `toml:"signal_feed_path"`
	Seed           int64  `toml:"seed"`
}

type StoreConfig struct {
	SessionDBPath string `toml:"session_db_path"`
	JournalDBPath string `toml:"journal_db_path"`
}

// ReportConfig controls the post-match HTML report.
type ReportConfig struct {
	Enabled   bool   `toml:"enabled"`
	OutputDir string `toml:"output_dir"`
}
