package config

import "time"

// Config holds runtime settings for the chat client.
type Config struct {
	ServerURL      string
	PresenceAddr   string
	Email          string
	FullName       string
	Register       bool
	RequestTimeout time.Duration

	// SessionFile is the SQLite file caching the last session; empty disables it.
	SessionFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.PresenceAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.SessionFile = ".gophgate-session.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
