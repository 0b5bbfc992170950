package alertbot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const defaultInterval = time.Hour

// Config is the watcher's JSON config file. The server writes it from the
// settings UI; the bot re-reads it every cycle so edits apply without a
// restart.
type Config struct {
	TelegramToken   string   `json:"telegram_token"`
	TelegramChatID  string   `json:"telegram_chat_id"`
	WatchList       []string `json:"watch_list"`
	IntervalSeconds int      `json:"interval_seconds,omitempty"`
}

// LoadConfig reads and parses the config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Ready reports whether the config is complete enough to watch anything.
func (c *Config) Ready() bool {
	return c.TelegramToken != "" && c.TelegramChatID != "" && len(c.WatchList) > 0
}

// Interval returns the check interval, defaulting to one hour.
func (c *Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return defaultInterval
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}
