package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at start-up and handed to every component that needs it.
// Nothing mutates it after LoadConfig returns.
type Config struct {
	Server       ServerConfig
	Log          LogConfig `mapstructure:"log"`
	Database     DatabaseConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Gamification GamificationConfig `mapstructure:"gamification"`
	AI           AIConfig
	Notify       NotifyConfig    `mapstructure:"notify"`
	Storage      StorageConfig   `mapstructure:"storage"`
	Tracing      TracingConfig   `mapstructure:"tracing"`
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`

	// command line flags, not read from the config file
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

// LogConfig controls the rotating JSON log file. Level overrides the mode-derived default
// (debug in debug mode, info otherwise).
type LogConfig struct {
	Service    string `mapstructure:"service"`
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"`
}

type DatabaseConfig struct {
	Driver   string // mysql | postgres | sqlite
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Charset  string
	SSLMode  string `mapstructure:"sslmode"`
	Path     string // sqlite file path, ":memory:" for tests
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig describes the external identity provider whose tokens we accept.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	Audience  string `mapstructure:"audience"`
}

type GamificationConfig struct {
	Timezone                string `mapstructure:"timezone"`
	CatalogPath             string `mapstructure:"catalog_path"`
	WatchCatalog            bool   `mapstructure:"watch_catalog"`
	LeaderboardCacheSeconds int    `mapstructure:"leaderboard_cache_seconds"`
	ModuleCompletionPoints  int    `mapstructure:"module_completion_points"`

	location *time.Location
}

// Location is the reference time zone used to decide what "today" is for streaks.
func (g GamificationConfig) Location() *time.Location {
	if g.location == nil {
		return time.UTC
	}
	return g.location
}

func (g GamificationConfig) LeaderboardTTL() time.Duration {
	return time.Duration(g.LeaderboardCacheSeconds) * time.Second
}

type AIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type NotifyConfig struct {
	SendgridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SKILLPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Auth
	v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET")
	v.BindEnv("auth.issuer", "AUTH_ISSUER")
	v.BindEnv("auth.audience", "AUTH_AUDIENCE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("log.level", "LOG_LEVEL")

	// AI
	v.BindEnv("ai.base_url", "AI_BASE_URL")
	v.BindEnv("ai.api_key", "AI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")

	// Notifications
	v.BindEnv("notify.sendgrid_api_key", "SENDGRID_API_KEY")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.service", "skillpath-backend")
	v.SetDefault("log.path", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.console", true)
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("gamification.timezone", "UTC")
	v.SetDefault("gamification.catalog_path", "configs/gamification.yaml")
	v.SetDefault("gamification.leaderboard_cache_seconds", 60)
	v.SetDefault("gamification.module_completion_points", 5)
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func (c *Config) validate() error {
	if c.Server.Mode == "release" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth jwt secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Auth.JWTSecret))
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	loc, err := time.LoadLocation(c.Gamification.Timezone)
	if err != nil {
		return fmt.Errorf("invalid gamification timezone %q: %w", c.Gamification.Timezone, err)
	}
	c.Gamification.location = loc

	if c.Gamification.ModuleCompletionPoints < 0 {
		return fmt.Errorf("gamification.module_completion_points must not be negative")
	}

	return nil
}

// NewGamificationConfig builds a gamification section outside of LoadConfig, mostly for tests and tools.
func NewGamificationConfig(timezone string, moduleCompletionPoints int) (GamificationConfig, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return GamificationConfig{}, err
	}
	return GamificationConfig{
		Timezone:               timezone,
		ModuleCompletionPoints: moduleCompletionPoints,
		location:               loc,
	}, nil
}
