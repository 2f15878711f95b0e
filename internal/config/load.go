package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TODO_SERVER_PORT.
const EnvPrefix = "TODO"

var defaults = map[string]any{
	"server.port":      8080,
	"server.log_level": "info",

	"relay.port":      8081,
	"relay.log_level": "info",

	"database.driver":         "postgres",
	"database.url":            "",
	"database.max_open_conns": 10,
	"database.max_idle_conns": 5,

	"auth.jwt_secret": "",

	"notify.sweep_interval": time.Minute,
	"notify.run_on_start":   true,
	"notify.worker_count":   4,
	"notify.queue_size":     100,
	"notify.send_timeout":   10 * time.Second,
	"notify.batch_size":     500,
	"notify.transport":      "webhook",

	"webhook.url":    "http://localhost:8081/notify",
	"webhook.secret": "",

	"telegram.bot_token":    "",
	"telegram.api_base_url": "https://api.telegram.org",

	"redis.addr":         "",
	"redis.password":     "",
	"redis.db":           0,
	"redis.identity_ttl": 10 * time.Minute,
	"redis.lock_ttl":     5 * time.Minute,

	"log.file":         "",
	"log.max_size_mb":  100,
	"log.max_backups":  3,
	"log.max_age_days": 28,
}

// Load reads the server configuration from an optional .env file, an optional
// config.yaml and TODO_-prefixed environment variables, in increasing order of
// precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadRelay reads and validates the relay configuration from the same sources as Load.
func LoadRelay() (*RelayConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	var cfg RelayConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return nil, errors.New("validation failed: telegram.bot_token is required")
	}

	return &cfg, nil
}

// Validate checks struct tags and the rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if c.Webhook.Secret != "" && c.Webhook.Secret == c.Auth.JWTSecret {
		return errors.New("validation failed: webhook.secret must differ from auth.jwt_secret")
	}

	switch c.Notify.Transport {
	case "webhook":
		if c.Webhook.URL == "" {
			return errors.New("validation failed: webhook.url is required for the webhook transport")
		}
	case "telegram":
		if c.Telegram.BotToken == "" {
			return errors.New("validation failed: telegram.bot_token is required for the telegram transport")
		}
	}

	return nil
}

func newViper() (*viper.Viper, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}
