package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the CLI configuration loaded from .env files and environment variables.
type Config struct {
	AppName          string `mapstructure:"app_name"`
	LogLevel         string `mapstructure:"log_level"`
	NoColor          bool   `mapstructure:"no_color"`
	ConnectTimeoutMS int64  `mapstructure:"connect_timeout_ms"`
	ReadTimeoutMS    int64  `mapstructure:"read_timeout_ms"`

	ConnectTimeout time.Duration `mapstructure:"-"`
	ReadTimeout    time.Duration `mapstructure:"-"`

	HistoryType            string        `mapstructure:"history_type"`
	HistoryPath            string        `mapstructure:"history_path"`
	HistoryTTLSeconds      int64         `mapstructure:"history_ttl_seconds"`
	HistoryCleanupSeconds  int64         `mapstructure:"history_cleanup_interval_seconds"`
	HistoryTTL             time.Duration `mapstructure:"-"`
	HistoryCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix("httpcall")

	v.SetDefault("app_name", "httpcall")
	v.SetDefault("log_level", "warn")
	v.SetDefault("no_color", false)
	v.SetDefault("connect_timeout_ms", 20000)
	v.SetDefault("read_timeout_ms", 20000)
	v.SetDefault("history_type", "bbolt")
	v.SetDefault("history_path", defaultHistoryPath())
	v.SetDefault("history_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("history_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("invalid connect_timeout_ms (must be positive milliseconds)")
	}
	if cfg.ReadTimeoutMS <= 0 {
		return fmt.Errorf("invalid read_timeout_ms (must be positive milliseconds)")
	}
	cfg.ConnectTimeout = time.Duration(cfg.ConnectTimeoutMS) * time.Millisecond
	cfg.ReadTimeout = time.Duration(cfg.ReadTimeoutMS) * time.Millisecond

	if cfg.HistoryTTLSeconds <= 0 {
		return fmt.Errorf("invalid history_ttl_seconds (must be positive seconds)")
	}
	if cfg.HistoryCleanupSeconds <= 0 {
		return fmt.Errorf("invalid history_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.HistoryTTL = time.Duration(cfg.HistoryTTLSeconds) * time.Second
	cfg.HistoryCleanupInterval = time.Duration(cfg.HistoryCleanupSeconds) * time.Second
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data/history.db"
	}
	return filepath.Join(home, ".httpcall", "history.db")
}
