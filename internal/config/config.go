// Package config provides configuration management for the voting
// service.
//
// Configuration is loaded from:
// 1. config.yaml file (optional)
// 2. Environment variables (standard names like DATABASE_URL, SERVER_PORT)
// 3. Default values
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"kv-shepherd.io/shepherd/internal/storage"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Backend    BackendConfig    `mapstructure:"backend"`
	Database   DatabaseConfig   `mapstructure:"database"`
	WideColumn WideColumnConfig `mapstructure:"widecolumn"`
	Log        LogConfig        `mapstructure:"log"`
	Security   SecurityConfig   `mapstructure:"security"`
	Seed       SeedConfig       `mapstructure:"seed"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	AllowedOrigins        []string `mapstructure:"allowed_origins"`
	AllowCredentials      bool     `mapstructure:"allow_credentials"`
	UnsafeAllowAllOrigins bool     `mapstructure:"unsafe_allow_all_origins"`
}

// BackendConfig selects which of the three interchangeable storage
// triples (spec.md §4.7) the process runs against.
type BackendConfig struct {
	Kind storage.Backend `mapstructure:"kind"` // memory | sql | widecolumn
}

// DatabaseConfig contains PostgreSQL connection settings for the sql
// backend.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
// Priority: DATABASE_URL > constructed from individual fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslmode,
	)
}

// WideColumnConfig contains endpoint/region settings for the
// wide-column backend (spec.md §6 Environment).
type WideColumnConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Region   string `mapstructure:"region"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	TokenSigningKey string        `mapstructure:"token_signing_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	BcryptCost      int           `mapstructure:"bcrypt_cost"`
}

// SeedConfig controls deterministic-testing overrides named in
// spec.md §6 Environment ("an optional deterministic seed for
// testing"): a fixed clock and sequential ids in place of the
// production Clock/UniqueIDGenerator.
type SeedConfig struct {
	DeterministicIDs bool   `mapstructure:"deterministic_ids"`
	FixedClock       string `mapstructure:"fixed_clock"` // RFC3339, empty = system clock
	FixturePath      string `mapstructure:"fixture_path"`
}

var (
	bootstrapLoggerOnce sync.Once
	bootstrapLogger     *zap.Logger
)

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/voting-service")

	// No prefix: uses standard names like DATABASE_URL, SERVER_PORT, LOG_LEVEL.
	// Maps nested config: database.max_conns -> DATABASE_MAX_CONNS.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file is optional, use defaults and env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.ensureSecrets(); err != nil {
		return nil, fmt.Errorf("ensure secrets: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks for critical configuration errors.
func (c *Config) Validate() error {
	if len(c.Security.TokenSigningKey) < 32 {
		return fmt.Errorf("security.token_signing_key must be at least 32 characters")
	}
	switch c.Backend.Kind {
	case storage.BackendMemory, storage.BackendSQL, storage.BackendWideColumn:
	default:
		return fmt.Errorf("backend.kind must be one of memory, sql, widecolumn, got %q", c.Backend.Kind)
	}
	return nil
}

// ensureSecrets auto-generates a missing signing key on first boot so
// a fresh checkout runs without manual setup; production deployments
// set SECURITY_TOKEN_SIGNING_KEY explicitly for persistence across
// restarts (a generated key invalidates every outstanding token on
// each process start).
func (c *Config) ensureSecrets() error {
	if c.Security.TokenSigningKey == "" {
		key, err := generateSecureRandomHex(32)
		if err != nil {
			return fmt.Errorf("auto-generate token signing key: %w", err)
		}
		c.Security.TokenSigningKey = key
		logBootstrapWarn(
			"auto-generated token_signing_key; set SECURITY_TOKEN_SIGNING_KEY env var for persistence",
			zap.Int("length", len(key)),
		)
	}
	return nil
}

func logBootstrapWarn(msg string, fields ...zap.Field) {
	bootstrapLoggerOnce.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

		l, err := cfg.Build()
		if err != nil {
			bootstrapLogger = zap.NewNop()
			return
		}
		bootstrapLogger = l
	})

	bootstrapLogger.Warn(msg, fields...)
}

// generateSecureRandomHex produces a hex-encoded string of n random bytes.
func generateSecureRandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.allow_credentials", false)
	v.SetDefault("server.unsafe_allow_all_origins", false)

	v.SetDefault("backend.kind", "memory")

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "voting")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "voting")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "10m")
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("widecolumn.endpoint", "")
	v.SetDefault("widecolumn.region", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("security.token_signing_key", "")
	v.SetDefault("security.access_token_ttl", "15m")
	v.SetDefault("security.refresh_token_ttl", "168h")
	v.SetDefault("security.bcrypt_cost", 12)

	v.SetDefault("seed.deterministic_ids", false)
	v.SetDefault("seed.fixed_clock", "")
	v.SetDefault("seed.fixture_path", "")
}
