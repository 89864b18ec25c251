// Package config loads the client configuration: a YAML file for the
// deployment-specific pieces (base URL, endpoint overrides, poll
// intervals) with environment variables on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/workhubhq/workhub-cli/internal/api"
	"github.com/workhubhq/workhub-cli/internal/poll"
)

// Config holds everything a page would normally supply through DOM data
// attributes: endpoint URLs, the wallet top-up link, poll intervals, and
// the inbox region id.
type Config struct {
	BaseURL   string        `yaml:"base_url"`
	Endpoints api.Endpoints `yaml:"endpoints"`

	RefreshMillis int    `yaml:"refresh_ms"` // message/inbox pollers
	BadgeMillis   int    `yaml:"badge_ms"`   // standalone navbar unread check
	InboxRegion   string `yaml:"inbox_region"`

	SessionCookie string `yaml:"-"` // WORKHUB_SESSION, never stored in the file
}

// Load reads the config file when one exists and applies env overrides.
// A missing file is fine; a malformed one is not.
func Load(path string) (*Config, error) {
	// .env is optional and only feeds os.Getenv below.
	_ = godotenv.Load()

	cfg := &Config{
		RefreshMillis: int(poll.DefaultInterval / time.Millisecond),
		BadgeMillis:   int(poll.BadgeInterval / time.Millisecond),
		InboxRegion:   "conversations-list",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %q: %v", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %v", path, err)
		}
	}

	if v := os.Getenv("WORKHUB_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("WORKHUB_SESSION"); v != "" {
		cfg.SessionCookie = v
	}
	if v := os.Getenv("WORKHUB_REFRESH_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.RefreshMillis = ms
		}
	}

	return cfg, nil
}

// RefreshInterval returns the poll interval for the message pollers.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMillis) * time.Millisecond
}

// BadgeInterval returns the poll interval for the navbar unread check.
func (c *Config) BadgeInterval() time.Duration {
	return time.Duration(c.BadgeMillis) * time.Millisecond
}

// UnreadInterval returns the unread-count poll interval: an open
// conversation checks at the message refresh rate, everywhere else the
// slower navbar cadence applies.
func (c *Config) UnreadInterval(conversationOpen bool) time.Duration {
	if conversationOpen {
		return c.RefreshInterval()
	}
	return c.BadgeInterval()
}
