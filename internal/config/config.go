package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Audit    AuditConfig
	Logging  LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port            string `validate:"required,numeric"`
	Mode            string `validate:"oneof=debug release test"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// DatabaseConfig holds the fixed connection parameters of the back-office database
type DatabaseConfig struct {
	Driver         string `validate:"oneof=sqlserver pgx postgres"`
	Host           string `validate:"required"`
	Port           string `validate:"required,numeric"`
	User           string
	Password       string
	DBName         string `validate:"required"`
	Schema         string
	SSLMode        string
	Encrypt        string
	AppName        string
	ConnectTimeout time.Duration `validate:"gt=0"`

	// Pooled switches the provider from one handle per operation to a shared pool
	Pooled          bool
	MaxOpenConns    int `validate:"gte=0"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// AuditConfig holds Kafka settings for procedure audit events
type AuditConfig struct {
	Enabled    bool
	Brokers    []string `validate:"required_if=Enabled true"`
	Topic      string   `validate:"required_if=Enabled true"`
	ClientID   string
	MaxRetries int `validate:"gte=0"`
	Timeout    time.Duration
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

// LoadConfig loads the configuration from an optional file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// DATABASE_PASSWORD overrides database.password and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// required_if accepts an empty, non-nil broker list
	if c.Audit.Enabled && len(c.Audit.Brokers) == 0 {
		return errors.New("audit.brokers must list at least one broker when audit is enabled")
	}

	return nil
}

// setDefaults sets default values for configuration.
// Every key needs a default so that AutomaticEnv can override it on Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "60s")
	v.SetDefault("server.idleTimeout", "120s")
	v.SetDefault("server.shutdownTimeout", "10s")

	// Database defaults
	v.SetDefault("database.driver", "sqlserver")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "1433")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbName", "G2")
	v.SetDefault("database.schema", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.encrypt", "disable")
	v.SetDefault("database.appName", "trading-admin")
	v.SetDefault("database.connectTimeout", "15s")
	v.SetDefault("database.pooled", false)
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.brokers", []string{})
	v.SetDefault("audit.topic", "procedure-audit")
	v.SetDefault("audit.clientId", "trading-admin")
	v.SetDefault("audit.maxRetries", 3)
	v.SetDefault("audit.timeout", "5s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
