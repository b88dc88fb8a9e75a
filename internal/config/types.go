package config

import "time"

// Config is the main configuration carrier for helmsman.
type Config struct {
	App      AppConfig      `toml:"app"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Bot      BotConfig      `toml:"bot"`
	Gameplan GameplanConfig `toml:"gameplan"`
	Session  SessionConfig  `toml:"session"`
	Account  AccountConfig  `toml:"account"`
	Notify   NotifyConfig   `toml:"notify"`
	Store    StoreConfig    `toml:"store"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// GatewayConfig describes how the market-data gateway is started and probed.
type GatewayConfig struct {
	ProcessName         string `toml:"process_name"`
	StartCommand        string `toml:"start_command"`
	HealthURL           string `toml:"health_url"`
	HealthPollSeconds   int    `toml:"health_poll_seconds"`
	HealthTimeoutSecond int    `toml:"health_timeout_seconds"`
}

// BotConfig describes the trading-bot process supervised after gateway health.
type BotConfig struct {
	ProcessName  string `toml:"process_name"`
	StartCommand string `toml:"start_command"`
	GraceSeconds int    `toml:"grace_seconds"`
}

type GameplanConfig struct {
	Path         string `toml:"path"`
	FallbackPath string `toml:"fallback_path"`
	Watch        bool   `toml:"watch"`
}

// SessionConfig controls the evaluation cycle.
type SessionConfig struct {
	IntervalSeconds  int `toml:"interval_seconds"`
	StalenessMinutes int `toml:"staleness_minutes"`
	LookbackBars     int `toml:"lookback_bars"`
}

// AccountConfig carries balance context used for position sizing checks.
type AccountConfig struct {
	BalanceUSD       float64 `toml:"balance_usd"`
	MaxWeeklyLossPct float64 `toml:"max_weekly_loss_pct"`
	Timezone         string  `toml:"timezone"`
}

type NotifyConfig struct {
	Webhook WebhookConfig `toml:"webhook"`
}

type WebhookConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

func (g GatewayConfig) PollInterval() time.Duration {
	return time.Duration(g.HealthPollSeconds) * time.Second
}

func (g GatewayConfig) HealthTimeout() time.Duration {
	return time.Duration(g.HealthTimeoutSecond) * time.Second
}

func (b BotConfig) GraceWindow() time.Duration {
	return time.Duration(b.GraceSeconds) * time.Second
}

func (s SessionConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

func (s SessionConfig) Staleness() time.Duration {
	return time.Duration(s.StalenessMinutes) * time.Minute
}
