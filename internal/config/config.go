package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	// DSN is the sqlite path plus pragmas, e.g.
	// "file:providers.db?_journal_mode=WAL&_busy_timeout=5000".
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type SyncConfig struct {
	// Interval between scheduled catalog refreshes.
	Interval time.Duration `mapstructure:"interval"`
	// MaxAge is how stale the catalog may get before ShouldSync fires.
	MaxAge time.Duration `mapstructure:"max_age"`
	// RunOnStart triggers a full sync when the server boots.
	RunOnStart bool `mapstructure:"run_on_start"`
}

type SecretsConfig struct {
	// EncryptionKey seals stored provider API keys. Required in
	// production; rotating it orphans previously stored keys.
	EncryptionKey string `mapstructure:"encryption_key"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	// Default Values
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.dsn", "file:providers.db?_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("catalog.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("catalog.request_timeout", 30*time.Second)
	v.SetDefault("catalog.cache_ttl", time.Hour)
	v.SetDefault("sync.interval", 6*time.Hour)
	v.SetDefault("sync.max_age", 24*time.Hour)
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}
