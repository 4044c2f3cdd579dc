package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Provider exposes the configuration values the rest of the application
// depends on. Handing components an interface instead of the concrete
// struct keeps them testable with hand-built fakes.
type Provider interface {
	GetBindAddr() string
	GetStoreDriver() string
	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetIdentityURL() string
	GetIdentityTokens() string
}

// Config holds all configuration for the application.
type Config struct {
	BindAddr string `validate:"required"`

	// StoreDriver selects the message store backend: "surreal" for the
	// durable SurrealDB store, "memory" for the in-process store used in
	// development and tests.
	StoreDriver string `validate:"oneof=surreal memory"`

	DBUrl  string `validate:"required_if=StoreDriver surreal"`
	DBNs   string `validate:"required_if=StoreDriver surreal"`
	DBDb   string `validate:"required_if=StoreDriver surreal"`
	DBUser string
	DBPass string

	DBQueryTimeout time.Duration

	// IdentityURL points at the external identity service used to resolve
	// auth tokens. When empty, IdentityTokens supplies a static token map
	// ("token:username,..."), which is only meant for development.
	IdentityURL    string `validate:"omitempty,url"`
	IdentityTokens string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		BindAddr:       getEnv("BIND_ADDR", ":8080"),
		StoreDriver:    getEnv("MESSAGE_STORE", "surreal"),
		DBUrl:          os.Getenv("SURREAL_URL"),
		DBUser:         os.Getenv("SURREAL_USER"),
		DBPass:         os.Getenv("SURREAL_PASS"),
		DBNs:           os.Getenv("SURREAL_NS"),
		DBDb:           os.Getenv("SURREAL_DB"),
		DBQueryTimeout: getEnvDuration("SURREAL_QUERY_TIMEOUT", 5*time.Second),
		IdentityURL:    os.Getenv("IDENTITY_URL"),
		IdentityTokens: os.Getenv("IDENTITY_TOKENS"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate checks the loaded configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func (c *Config) GetBindAddr() string { return c.BindAddr }
func (c *Config) GetStoreDriver() string { return c.StoreDriver }
func (c *Config) GetDBURL() string { return c.DBUrl }
func (c *Config) GetDBUser() string { return c.DBUser }
func (c *Config) GetDBPass() string { return c.DBPass }
func (c *Config) GetDBNs() string { return c.DBNs }
func (c *Config) GetDBDb() string { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration { return c.DBQueryTimeout }
func (c *Config) GetIdentityURL() string { return c.IdentityURL }
func (c *Config) GetIdentityTokens() string { return c.IdentityTokens }
