package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level string `yaml:"level"`
}

type StatisticsConfig struct {
	RecentWindowMonths int `yaml:"recent_window_months"`
	RecentLimit        int `yaml:"recent_limit"`
}

type MediaConfig struct {
	MaxSizeBytes int64 `yaml:"max_size_bytes"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

type Config struct {
	Log             LogConfig                 `yaml:"log"`
	Statistics      StatisticsConfig          `yaml:"statistics"`
	Media           MediaConfig               `yaml:"media"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Statistics: StatisticsConfig{
			RecentWindowMonths: DefaultRecentWindowMonths,
			RecentLimit:        DefaultRecentLimit,
		},
		Media:     MediaConfig{MaxSizeBytes: DefaultMaxMediaSize},
		Providers: make(map[string]ProviderConfig),
	}
}

func LoadConfig(scope Scope) (*Config, error) {
	path := scope.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	return cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	path := scope.ConfigPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(scope.DataPath, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// StatsOptions turns the statistics section into aggregator options.
func (c *Config) StatsOptions() StatsOptions {
	return StatsOptions{
		WindowMonths: c.Statistics.RecentWindowMonths,
		Limit:        c.Statistics.RecentLimit,
	}
}
