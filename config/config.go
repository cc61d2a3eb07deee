package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderCredentials is a clientID/clientSecret pair for one OAuth provider
// app. Global (app-wide) credentials come from the config file; store-custom
// ones are discovered at runtime from the Store API.
type ProviderCredentials struct {
	ClientID     string `mapstructure:"client_id" json:"client_id"`
	ClientSecret string `mapstructure:"client_secret" json:"client_secret"`
}

// Config holds all configuration for the passport server.
type Config struct {
	HTTPPort string `mapstructure:"http_port"`
	// Host is the public origin used to build provider callback URLs,
	// e.g. "https://passport.example.com".
	Host    string `mapstructure:"host"`
	BaseURI string `mapstructure:"base_uri"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	// JWTSecret signs issued customer tokens. Shared with downstream
	// services that verify them.
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`

	// RedisAddr selects the redis profile cache backend. Empty means the
	// in-memory TTL cache, which is only suitable for a single instance.
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`

	ProfileTTLSeconds int `mapstructure:"profile_ttl_seconds"`

	// StoreAPIURL is the Store API base (customers, oauth apps).
	// MainAPIURL is the platform API base used to list stores.
	StoreAPIURL string `mapstructure:"store_api_url"`
	MainAPIURL  string `mapstructure:"main_api_url"`

	ReconcileIntervalMin int `mapstructure:"reconcile_interval_min"`
	ReconcileStaggerMs   int `mapstructure:"reconcile_stagger_ms"`

	// Providers holds the app-wide OAuth credentials, keyed by provider
	// name ("facebook", "google", "windowslive"). Providers with an empty
	// client_id are skipped at startup.
	Providers map[string]ProviderCredentials `mapstructure:"providers"`
}

// ProfileTTL returns the ephemeral profile cache TTL as a duration.
func (c *Config) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

// TokenTTL returns the issued credential lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// ReconcileInterval returns the delay between reconciliation passes.
func (c *Config) ReconcileInterval() time.Duration {
	return time.Duration(c.ReconcileIntervalMin) * time.Minute
}

// ReconcileStagger returns the per-store delay inside one pass.
func (c *Config) ReconcileStagger() time.Duration {
	return time.Duration(c.ReconcileStaggerMs) * time.Millisecond
}

// Load reads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/passport/")
	v.AddConfigPath("$HOME/.passport")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PASSPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http_port", "3000")
	v.SetDefault("host", "http://localhost:3000")
	v.SetDefault("base_uri", "/")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl_hours", 3)
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("profile_ttl_seconds", 120)
	v.SetDefault("store_api_url", "https://api.e-com.plus/v1")
	v.SetDefault("main_api_url", "https://api.e-com.plus/main/v1")
	v.SetDefault("reconcile_interval_min", 10)
	v.SetDefault("reconcile_stagger_ms", 800)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if !strings.HasSuffix(cfg.BaseURI, "/") {
		cfg.BaseURI += "/"
	}

	return &cfg, nil
}
