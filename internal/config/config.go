// Package config defines the typed TrendBot configuration and its defaults.
package config

import (
	"fmt"
	"time"

	"github.com/trendwise/trendbot/pkg/config"
	"github.com/trendwise/trendbot/pkg/llm"
)

// Config is the top-level TrendBot configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	News     NewsConfig     `yaml:"news"`
	LLM      llm.Config     `yaml:"llm"`
	Images   ImagesConfig   `yaml:"images"`
	Bot      BotConfig      `yaml:"bot"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr    string `yaml:"addr" env:"TRENDBOT_ADDR"`
	BaseURL string `yaml:"base_url" env:"TRENDBOT_BASE_URL"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"TRENDBOT_DB"`
}

// NewsConfig holds news provider settings.
type NewsConfig struct {
	APIKey   string   `yaml:"api_key" env:"NEWS_API_KEY"`
	BaseURL  string   `yaml:"base_url" env:"NEWS_BASE_URL"`
	Language string   `yaml:"language" env:"NEWS_LANGUAGE"`
	Query    string   `yaml:"query" env:"NEWS_QUERY"`
	Feeds    []Feed `yaml:"feeds"`
	Category string `yaml:"category"`
}

// Feed is one RSS/Atom feed to poll alongside the news API.
type Feed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// ImagesConfig holds stock-photo provider settings.
type ImagesConfig struct {
	AccessKey string `yaml:"access_key" env:"PHOTO_ACCESS_KEY"`
	BaseURL   string `yaml:"base_url" env:"PHOTO_BASE_URL"`
}

// BotConfig holds pipeline and scheduler settings.
type BotConfig struct {
	Interval   time.Duration `yaml:"interval" env:"BOT_INTERVAL"`
	TrendLimit int           `yaml:"trend_limit" env:"BOT_TREND_LIMIT"`
	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`
	Author     string        `yaml:"author" env:"BOT_AUTHOR"`
}

// AdminConfig guards the bot-control endpoints.
type AdminConfig struct {
	PasswordHash string `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	JWTSecret    string `yaml:"jwt_secret" env:"ADMIN_JWT_SECRET"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{Path: "trendbot.db"},
		News: NewsConfig{
			Language: "en",
			Query:    "technology",
			Category: "Technology",
		},
		LLM: llm.DefaultConfig(),
		Images: ImagesConfig{
			BaseURL: "https://api.unsplash.com",
		},
		Bot: BotConfig{
			Interval:   5 * time.Minute,
			TrendLimit: 6,
			BatchSize:  3,
			BatchDelay: 2 * time.Second,
			Author:     "TrendBot",
		},
	}
}

// Load reads configuration from path (missing file keeps defaults) and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.Bot.BatchSize <= 0 {
		cfg.Bot.BatchSize = 3
	}
	if cfg.Bot.TrendLimit <= 0 {
		cfg.Bot.TrendLimit = 6
	}
	if cfg.Bot.Interval <= 0 {
		cfg.Bot.Interval = 5 * time.Minute
	}
	return cfg, nil
}
