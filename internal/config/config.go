package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Catalog   CatalogConfig
	Inventory InventoryConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	Migrate         bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// CatalogConfig locates the catalog snapshot imported at startup.
type CatalogConfig struct {
	Snapshot string // empty disables the import
	S3       S3Config
}

// S3Config holds the bucket searched before the local filesystem.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // key prefix, e.g. "catalog/"
}

// InventoryConfig holds stock deduction and pricing settings.
type InventoryConfig struct {
	ConflictRetries int
	TaxRate         decimal.Decimal
}

const maxConflictRetries = 10

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "pos"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			Migrate:         getEnvAsBool("DB_MIGRATE", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Catalog: CatalogConfig{
			Snapshot: getEnv("CATALOG_SNAPSHOT", ""),
			S3: S3Config{
				Enabled: getEnvAsBool("S3_ENABLED", false),
				Bucket:  getEnv("S3_BUCKET", ""),
				Region:  getEnv("S3_REGION", "us-east-1"),
				Prefix:  getEnv("S3_PREFIX", "catalog/"),
			},
		},
		Inventory: InventoryConfig{
			ConflictRetries: getEnvAsInt("INVENTORY_CONFLICT_RETRIES", 3),
			TaxRate:         getEnvAsDecimal("POS_TAX_RATE", decimal.Zero),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Database.validate(),
		c.Logger.validate(),
		c.Auth.validate(),
		c.Catalog.validate(),
		c.Inventory.validate(),
	)
}

func (c *ServerConfig) validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("invalid server port: %d", c.Port)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("database host is required"))
	}
	if !validPort(c.Port) {
		errs = append(errs, fmt.Errorf("invalid database port: %d", c.Port))
	}
	if c.User == "" {
		errs = append(errs, errors.New("database user is required"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database name is required"))
	}
	switch {
	case c.MaxConnections < 1:
		errs = append(errs, errors.New("database max connections must be at least 1"))
	case c.MinConnections < 1:
		errs = append(errs, errors.New("database min connections must be at least 1"))
	case c.MinConnections > c.MaxConnections:
		errs = append(errs, errors.New("database min connections cannot exceed max connections"))
	}
	return errors.Join(errs...)
}

func (c *LoggerConfig) validate() error {
	var errs []error
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level))
	}
	if c.Format != "json" && c.Format != "console" {
		errs = append(errs, fmt.Errorf("invalid log format: %s (must be json or console)", c.Format))
	}
	return errors.Join(errs...)
}

func (c *AuthConfig) validate() error {
	if c.APIKey == "" {
		return errors.New("API key is required")
	}
	return nil
}

func (c *CatalogConfig) validate() error {
	if !c.S3.Enabled {
		return nil
	}
	var errs []error
	if c.S3.Bucket == "" {
		errs = append(errs, errors.New("S3 bucket is required when S3 is enabled"))
	}
	if c.S3.Region == "" {
		errs = append(errs, errors.New("S3 region is required when S3 is enabled"))
	}
	return errors.Join(errs...)
}

func (c *InventoryConfig) validate() error {
	var errs []error
	if c.ConflictRetries < 0 || c.ConflictRetries > maxConflictRetries {
		errs = append(errs, fmt.Errorf("inventory conflict retries must be between 0 and %d: %d", maxConflictRetries, c.ConflictRetries))
	}
	if c.TaxRate.IsNegative() {
		errs = append(errs, fmt.Errorf("tax rate cannot be negative: %s", c.TaxRate))
	}
	return errors.Join(errs...)
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// lookupEnv parses a non-empty environment variable, falling back to
// defaultValue when it is unset or malformed.
func lookupEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := parse(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnv(key, defaultValue string) string {
	return lookupEnv(key, defaultValue, func(s string) (string, error) { return s, nil })
}

func getEnvAsInt(key string, defaultValue int) int {
	return lookupEnv(key, defaultValue, strconv.Atoi)
}

func getEnvAsBool(key string, defaultValue bool) bool {
	return lookupEnv(key, defaultValue, strconv.ParseBool)
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	return lookupEnv(key, defaultValue, decimal.NewFromString)
}
