package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"shop-demo/pkg/models"

	"github.com/goccy/go-yaml"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	Message     string            `yaml:"message"`
	Catalog     []models.Product  `yaml:"catalog"`
	Orders      OrdersConfig      `yaml:"orders"`
	CORS        CORSConfig        `yaml:"cors"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Tracing     TracingConfig     `yaml:"tracing"`
	LogLevel    string            `yaml:"log_level"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig holds the single accepted credential pair
type AuthConfig struct {
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

// OrdersConfig controls mock order placement
type OrdersConfig struct {
	// IDLimit is the exclusive upper bound of generated order ids.
	IDLimit int `yaml:"id_limit"`
}

// CORSConfig represents cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// DiagnosticsConfig represents the metrics/pprof listener
type DiagnosticsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TracingConfig selects the span exporter
type TracingConfig struct {
	Exporter    string `yaml:"exporter"` // none, stdout or otlp
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// DefaultProducts returns the stock three-item catalog
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "T-Shirt", Price: 20},
		{ID: 2, Name: "Jeans", Price: 40},
		{ID: 3, Name: "Sneakers", Price: 60},
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Auth: AuthConfig{
			Username:      "user",
			Password:      "pass",
			JWTSecret:     "shop-demo-secret-key-change-me",
			TokenTTLHours: 24,
		},
		Message: "Hello from the backend!",
		Catalog: DefaultProducts(),
		Orders: OrdersConfig{
			IDLimit: 1000,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: false,
			Port:    9090,
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			Endpoint:    "localhost:4317",
			ServiceName: "shop-demo",
		},
		LogLevel: "info",
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// Override with environment variables
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides overrides configuration with environment variables
func applyEnvOverrides(cfg *Config) error {
	if username := os.Getenv("AUTH_USERNAME"); username != "" {
		cfg.Auth.Username = username
	}
	if password := os.Getenv("AUTH_PASSWORD"); password != "" {
		cfg.Auth.Password = password
	}
	if jwtSecret := os.Getenv("AUTH_JWT_SECRET"); jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if port := os.Getenv("SHOP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: SHOP_PORT %q is not a number", ErrInvalid, port)
		}
		cfg.Server.Port = p
	}
	return nil
}

// Validate checks the catalog and order settings
func (c *Config) Validate() error {
	if len(c.Catalog) == 0 {
		return fmt.Errorf("%w: catalog is empty", ErrInvalid)
	}

	seen := make(map[int]bool, len(c.Catalog))
	for _, p := range c.Catalog {
		if p.ID <= 0 {
			return fmt.Errorf("%w: product %q has non-positive id %d", ErrInvalid, p.Name, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate product id %d", ErrInvalid, p.ID)
		}
		seen[p.ID] = true
		if p.Price <= 0 {
			return fmt.Errorf("%w: product %d has non-positive price", ErrInvalid, p.ID)
		}
	}

	if c.Orders.IDLimit <= 0 {
		return fmt.Errorf("%w: orders.id_limit must be positive", ErrInvalid)
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("%w: auth.token_ttl_hours must be positive", ErrInvalid)
	}

	switch c.Tracing.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: unknown tracing exporter %q", ErrInvalid, c.Tracing.Exporter)
	}

	return nil
}

// Save saves configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
