package config

import "time"

// Config holds all configuration of the notification server.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify"   validate:"required"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
}

// RelayConfig holds the configuration of the bot-side relay that receives
// webhook calls and forwards them to Telegram.
type RelayConfig struct {
	Relay    RelayServerConfig `mapstructure:"relay"    validate:"required"`
	Webhook  WebhookConfig     `mapstructure:"webhook"`
	Telegram TelegramConfig    `mapstructure:"telegram" validate:"required"`
	Log      LogConfig         `mapstructure:"log"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// RelayServerConfig contains the relay's listener settings.
type RelayServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects and configures the task store backend.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains the secret used to verify admin API tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// NotifyConfig tunes the due-task sweep and its worker pool.
type NotifyConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required,gte=1s"`
	RunOnStart    bool          `mapstructure:"run_on_start"`
	WorkerCount   int           `mapstructure:"worker_count"   validate:"required,gt=0,lte=256"`
	QueueSize     int           `mapstructure:"queue_size"     validate:"required,gt=0"`
	SendTimeout   time.Duration `mapstructure:"send_timeout"   validate:"required,gt=0"`
	// BatchSize is the page size a sweep reads the due set in; 0 reads it in one query.
	BatchSize int    `mapstructure:"batch_size" validate:"gte=0"`
	Transport string `mapstructure:"transport"  validate:"required,oneof=webhook telegram"`
}

// WebhookConfig points at the bot's notification endpoint.
type WebhookConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
	// Secret signs (server) and verifies (relay) webhook bearer tokens.
	// Empty disables webhook authentication.
	Secret string `mapstructure:"secret" validate:"omitempty,min=32"`
}

// TelegramConfig configures direct access to the Telegram Bot API.
type TelegramConfig struct {
	BotToken   string `mapstructure:"bot_token"`
	APIBaseURL string `mapstructure:"api_base_url" validate:"required,url"`
}

// RedisConfig enables the identity cache and the cross-process sweep lease.
// An empty Addr disables both.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"         validate:"omitempty,hostname_port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"           validate:"gte=0"`
	IdentityTTL time.Duration `mapstructure:"identity_ttl" validate:"gte=0"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"     validate:"gte=0"`
}

// LogConfig configures optional rotating file output.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups"  validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}
