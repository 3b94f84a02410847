package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken        string        `envconfig:"BOT_TOKEN"`                     // empty → log-only delivery
	ChatID          int64         `envconfig:"CHAT_ID"`                       // telegram chat to deliver to
	UserID          string        `envconfig:"USER_ID" default:"local"`       // persisted-state key
	DBPath          string        `envconfig:"DB_PATH" default:"./data/remindd.db"`
	DefaultTZ       string        `envconfig:"DEFAULT_TZ" default:"UTC"`      // first-run timezone
	Horizon         time.Duration `envconfig:"HORIZON" default:"48h"`         // scheduling lookahead
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5m"` // re-evaluation cadence
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`      // debug|info|warn|error
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`     // healthz + settings RPC
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
