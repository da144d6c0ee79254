// Package config provides configuration management for assetd.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with ASSETD_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, ./configs/config.yaml, ~/.assetd/config.yaml, /etc/assetd/config.yaml)
//  3. .env file (exported into the process environment)
//  4. Environment variables (ASSETD_ prefix)
//
// # Usage Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
//
// # Environment Variables
//
// Use the ASSETD_ prefix and underscores for nested keys:
//   - ASSETD_SERVER_PORT=8095
//   - ASSETD_DATABASE_DRIVER=postgres
//   - ASSETD_DATABASE_DSN="host=localhost user=assetd dbname=assetd"
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration structure for assetd.
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Database contains relational store settings
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Security contains authentication and rate limiting settings
	Security SecurityConfig `mapstructure:"security" yaml:"security"`

	// Import contains bulk import limits
	Import ImportConfig `mapstructure:"import" yaml:"import"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Host is the server bind address (default: 0.0.0.0)
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the server listen port (default: 8080)
	Port int `mapstructure:"port" yaml:"port"`

	// ReadTimeout is the maximum duration for reading requests
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing responses
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Debug exposes internal error details in API responses
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// TLSEnabled enables HTTPS
	TLSEnabled bool `mapstructure:"tls_enabled" yaml:"tls_enabled"`

	// TLSCert is the path to the TLS certificate file
	TLSCert string `mapstructure:"tls_cert" yaml:"tls_cert"`

	// TLSKey is the path to the TLS private key file
	TLSKey string `mapstructure:"tls_key" yaml:"tls_key"`
}

// DatabaseConfig contains relational store settings.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres"
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is the driver-specific connection string
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// MaxOpenConns caps the connection pool (sqlite is always forced to 1)
	MaxOpenConns int `mapstructure:"max_open_conns" yaml:"max_open_conns"`

	// MaxIdleConns is the number of idle pooled connections
	MaxIdleConns int `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`

	// ConnMaxLifetime recycles pooled connections
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`

	// AutoMigrate creates or alters tables on startup
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`

	// SlowQueryThreshold logs statements slower than this
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold" yaml:"slow_query_threshold"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format" yaml:"format"`

	// Output is the log output destination (stdout, stderr)
	Output string `mapstructure:"output" yaml:"output"`
}

// SecurityConfig contains security and rate limiting settings.
type SecurityConfig struct {
	// RateLimit is the maximum requests per second per client (0 disables)
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`

	// AllowedOrigins are the CORS allowed origins
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// AuthEnabled enables JWT bearer verification on the API
	AuthEnabled bool `mapstructure:"auth_enabled" yaml:"auth_enabled"`

	// JWTSecret is the HMAC secret tokens are signed with by the issuer
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// ImportConfig contains bulk import limits.
type ImportConfig struct {
	// MaxUploadSize is the largest accepted upload in bytes
	MaxUploadSize int64 `mapstructure:"max_upload_size" yaml:"max_upload_size"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for config.yaml in standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.assetd")
		v.AddConfigPath("/etc/assetd")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			// An explicit but missing file falls back to defaults
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// .env values never override variables already set in the environment
	_ = godotenv.Load()

	v.SetEnvPrefix("ASSETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.tls_enabled", false)

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "assetd.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.slow_query_threshold", "200ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("security.rate_limit", 100)
	v.SetDefault("security.allowed_origins", []string{"*"})
	v.SetDefault("security.auth_enabled", false)
	v.SetDefault("security.jwt_secret", "")

	v.SetDefault("import.max_upload_size", 10<<20)
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}

	if cfg.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	if cfg.Security.AuthEnabled && cfg.Security.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required when auth is enabled")
	}

	if cfg.Import.MaxUploadSize <= 0 {
		return fmt.Errorf("import max_upload_size must be positive")
	}

	return nil
}

// Get returns the most recently loaded configuration.
func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
