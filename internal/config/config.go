package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	KairosAppID          string `mapstructure:"kairos_app_id"`
	KairosAppKey         string `mapstructure:"kairos_app_key"`
	KairosBaseURL        string `mapstructure:"kairos_base_url"`
	KairosTimeoutSeconds int64  `mapstructure:"kairos_timeout_seconds"`

	PublishersFile string `mapstructure:"publishers_file"`

	JournalType            string        `mapstructure:"journal_type"`
	JournalPath            string        `mapstructure:"journal_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "kairos-face-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("kairos_app_id", "")
	v.SetDefault("kairos_app_key", "")
	v.SetDefault("kairos_base_url", kairos.DefaultBaseURL)
	v.SetDefault("kairos_timeout_seconds", 0) // transport default
	v.SetDefault("publishers_file", "")
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("journal_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.KairosTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid kairos_timeout_seconds (must be zero or positive seconds)")
	}
	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}

// KairosDefaults returns the default client options derived from this configuration.
// Empty values are left out so they do not mask the library's own defaults.
func (c *Config) KairosDefaults() kairos.Options {
	opts := kairos.DefaultOptions()
	if c == nil {
		return opts
	}
	if c.KairosAppID != "" {
		opts[kairos.KeyAppID] = c.KairosAppID
	}
	if c.KairosAppKey != "" {
		opts[kairos.KeyAppKey] = c.KairosAppKey
	}
	if c.KairosBaseURL != "" {
		opts[kairos.KeyBaseURL] = c.KairosBaseURL
	}
	if c.KairosTimeoutSeconds > 0 {
		opts[kairos.KeyTimeoutSeconds] = c.KairosTimeoutSeconds
	}
	return opts
}
