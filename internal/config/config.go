// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Invoice  InvoiceConfig
	Sequence SequenceConfig
	Redis    RedisConfig
	Rabbit   RabbitConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `env:"PORT" envDefault:"8080"`
	ReadTimeout  int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`  // seconds
	WriteTimeout int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"` // seconds
	IdleTimeout  int    `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`  // seconds
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       int    `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"tailorshop"`
	Password   string `env:"DB_PASSWORD" envDefault:"tailorshop"`
	DBName     string `env:"DB_NAME" envDefault:"tailorshop"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"tailorshop.db"`
	Debug      bool   `env:"DB_DEBUG"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `env:"DEV"`
	Migrations bool `env:"MIGRATIONS"`

	// PublicBaseURL prefixes shareable invoice links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	Brand         string `env:"BRAND_NAME" envDefault:"TailorShop"`
}

// InvoiceConfig controls numbering and presentation of invoices.
type InvoiceConfig struct {
	Prefix  string `env:"INVOICE_PREFIX" envDefault:"KST-INV"`
	Counter string `env:"INVOICE_COUNTER" envDefault:"invoice"`

	// CurrencySymbol prefixes amounts in customer messages.
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"₹"`

	// DocumentCurrency prefixes amounts on the rendered image, whose fonts
	// lack the rupee glyph.
	DocumentCurrency string `env:"DOCUMENT_CURRENCY" envDefault:"Rs. "`

	// SequenceStart carries numbering over from a previous system: the next
	// invoice is numbered after it. Zero leaves the counter as it is.
	SequenceStart int64 `env:"INVOICE_SEQUENCE_START" envDefault:"0"`
}

// Sequence backends.
const (
	SequenceBackendDB    = "db"
	SequenceBackendRedis = "redis"
)

// SequenceConfig selects where invoice counters live.
type SequenceConfig struct {
	Backend string `env:"SEQUENCE_BACKEND" envDefault:"db"`
}

// RedisConfig holds the redis connection used by the redis sequence backend.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// RabbitConfig holds the broker used for customer notifications. An empty
// URL disables publishing to the broker.
type RabbitConfig struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"tailorshop.notifications"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	File  string `env:"LOG_FILE"`
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Sequence.Backend {
	case SequenceBackendDB, SequenceBackendRedis:
	default:
		return fmt.Errorf("unsupported SEQUENCE_BACKEND %q", c.Sequence.Backend)
	}
	if strings.TrimSpace(c.Invoice.Prefix) == "" {
		return fmt.Errorf("INVOICE_PREFIX must not be empty")
	}
	if c.Invoice.SequenceStart < 0 {
		return fmt.Errorf("INVOICE_SEQUENCE_START must not be negative")
	}
	c.App.PublicBaseURL = strings.TrimRight(c.App.PublicBaseURL, "/")
	return nil
}
