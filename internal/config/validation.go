package config

import (
	"fmt"
	"strings"
	"time"
)

// validate performs basic sanity checks on the loaded configuration.
func validate(c *Config) error {
	if err := c.Gateway.validate(); err != nil {
		return err
	}
	if err := c.Bot.validate(); err != nil {
		return err
	}
	if err := c.Gameplan.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Account.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (g *GatewayConfig) validate() error {
	if strings.TrimSpace(g.ProcessName) == "" {
		return fmt.Errorf("gateway.process_name cannot be empty")
	}
	if strings.TrimSpace(g.HealthURL) == "" {
		return fmt.Errorf("gateway.health_url cannot be empty")
	}
	if g.PollInterval() >= g.HealthTimeout() {
		return fmt.Errorf("gateway.health_poll_seconds must be shorter than gateway.health_timeout_seconds")
	}
	return nil
}

func (b *BotConfig) validate() error {
	if strings.TrimSpace(b.ProcessName) == "" {
		return fmt.Errorf("bot.process_name cannot be empty")
	}
	if strings.TrimSpace(b.StartCommand) == "" {
		return fmt.Errorf("bot.start_command cannot be empty")
	}
	return nil
}

func (g *GameplanConfig) validate() error {
	if strings.TrimSpace(g.Path) == "" {
		return fmt.Errorf("gameplan.path cannot be empty")
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.Interval() < time.Second {
		return fmt.Errorf("session.interval_seconds must be >= 1")
	}
	return nil
}

func (a *AccountConfig) validate() error {
	if a.BalanceUSD < 0 {
		return fmt.Errorf("account.balance_usd must be >= 0")
	}
	if _, err := time.LoadLocation(a.Timezone); err != nil {
		return fmt.Errorf("account.timezone invalid: %w", err)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.Webhook.Enabled && strings.TrimSpace(n.Webhook.URL) == "" {
		return fmt.Errorf("notify.webhook.url required when webhook enabled")
	}
	return nil
}
