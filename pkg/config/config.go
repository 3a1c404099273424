package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for librarian.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, signing keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:""`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// MigrationsPath is the directory containing SQL migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Bulk load configuration
	Load LoadConfig `yaml:"load"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether bearer tokens are validated.
	// Set to false for local development without accounts.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWTSecret signs and verifies access tokens. Required when
	// verification is enabled.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML

	// TokenTTLMinutes is the access token lifetime.
	TokenTTLMinutes int `yaml:"token_ttl_minutes" env:"AUTH_TOKEN_TTL_MINUTES" env-default:"60"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"librarian"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"librarian"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// LoadConfig holds bulk load settings.
type LoadConfig struct {
	// Policy selects how book identifiers are assigned: "external" trusts
	// source-provided IDs, "generated" mints {label}-{NNN} identifiers.
	Policy string `yaml:"policy" env:"LOAD_POLICY" env-default:"generated"`

	// ProfilesPath points to the YAML file defining source column profiles.
	ProfilesPath string `yaml:"profiles_path" env:"LOAD_PROFILES_PATH" env-default:"profiles.yaml"`

	// DefaultProfile is used when a load request names no profile.
	DefaultProfile string `yaml:"default_profile" env:"LOAD_DEFAULT_PROFILE" env-default:"default"`

	// MaxRowErrors caps how many per-row errors are persisted per run.
	MaxRowErrors int `yaml:"max_row_errors" env:"LOAD_MAX_ROW_ERRORS" env-default:"100"`

	// MaxUploadBytes caps the size of CSV files accepted over HTTP.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"LOAD_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Environment variables override YAML values. Secrets (PGPASSWORD, JWT_SECRET)
// must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	// Load config from YAML file with environment variable overrides
	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	if cfg.Auth.EnableVerification && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set when auth verification is enabled")
	}

	if cfg.Load.Policy != "external" && cfg.Load.Policy != "generated" {
		return nil, fmt.Errorf("load policy must be \"external\" or \"generated\", got %q", cfg.Load.Policy)
	}

	return cfg, nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist and be readable.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	// Both must be provided together or both empty
	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	// If both provided, verify files exist (actual readability checked by tls.LoadX509KeyPair at startup)
	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
