package config

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8780"
	}
	if c.Gateway.HealthPollSeconds <= 0 {
		c.Gateway.HealthPollSeconds = 5
	}
	if c.Gateway.HealthTimeoutSecond <= 0 {
		c.Gateway.HealthTimeoutSecond = 120
	}
	if c.Bot.GraceSeconds <= 0 {
		c.Bot.GraceSeconds = 10
	}
	if c.Session.IntervalSeconds <= 0 {
		c.Session.IntervalSeconds = 60
	}
	if c.Session.StalenessMinutes <= 0 {
		c.Session.StalenessMinutes = 10
	}
	if c.Session.LookbackBars <= 0 {
		c.Session.LookbackBars = 120
	}
	if c.Account.MaxWeeklyLossPct <= 0 {
		c.Account.MaxWeeklyLossPct = 0.05
	}
	if c.Account.Timezone == "" {
		c.Account.Timezone = "America/New_York"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/helmsman.db"
	}
	if c.Gameplan.FallbackPath == "" {
		c.Gameplan.FallbackPath = "data/gameplan_fallback.json"
	}
}
