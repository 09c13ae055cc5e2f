// Package config loads service settings from a YAML file, an optional dotenv
// file and FXW_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigLoad wraps every failure to produce a usable configuration
var ErrConfigLoad = errors.New("invalid configuration")

// Store drivers
const (
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds every setting of the server and the CLI
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Rates      RatesConfig      `yaml:"rates"`
	Currencies CurrenciesConfig `yaml:"currencies"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects and configures the cache backend
type StoreConfig struct {
	Driver        string        `yaml:"driver"`
	BadgerPath    string        `yaml:"badger_path"` // empty runs Badger in memory
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Retention     time.Duration `yaml:"retention"`
}

// RatesConfig configures the rate sources and refresh cadence
type RatesConfig struct {
	FiatURL           string        `yaml:"fiat_url"`
	CryptoURL         string        `yaml:"crypto_url"`
	CacheDuration     time.Duration `yaml:"cache_duration"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	BreakerFailures   int           `yaml:"breaker_failures"`
	BreakerTimeout    time.Duration `yaml:"breaker_timeout"`
}

// CurrenciesConfig configures the currency metadata document
type CurrenciesConfig struct {
	File          string        `yaml:"file"` // empty uses the bundled document
	CacheDuration time.Duration `yaml:"cache_duration"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"chrome-extension://*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver:     DriverBadger,
			BadgerPath: "data",
			Retention:  30 * 24 * time.Hour,
		},
		Rates: RatesConfig{
			FiatURL:           "https://api.exchangerate-api.com/v4/latest/USD",
			CryptoURL:         "https://api.coingecko.com/api/v3/exchange_rates",
			CacheDuration:     time.Hour,
			RefreshInterval:   time.Minute,
			RequestTimeout:    10 * time.Second,
			RequestsPerSecond: 1,
			Burst:             2,
			BreakerFailures:   3,
			BreakerTimeout:    30 * time.Second,
		},
		Currencies: CurrenciesConfig{
			CacheDuration: 7 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. path is a YAML file and envFile a dotenv
// file; either may be empty, and a missing envFile is not an error.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrConfigLoad, path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: load %s: %w", ErrConfigLoad, envFile, err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	switch c.Store.Driver {
	case DriverBadger, DriverMemory:
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Store.Retention < 0 {
		return fmt.Errorf("store.retention must not be negative")
	}
	if c.Rates.FiatURL == "" || c.Rates.CryptoURL == "" {
		return fmt.Errorf("both rate source URLs are required")
	}
	if c.Rates.CacheDuration <= 0 {
		return fmt.Errorf("rates.cache_duration must be positive")
	}
	if c.Rates.RefreshInterval <= 0 {
		return fmt.Errorf("rates.refresh_interval must be positive")
	}
	if c.Currencies.CacheDuration <= 0 {
		return fmt.Errorf("currencies.cache_duration must be positive")
	}

	return nil
}

type envOverride struct {
	key   string
	apply func(string) error
}

func overrideWithEnv(cfg *Config) error {
	overrides := []envOverride{
		{"FXW_SERVER_ADDR", setString(&cfg.Server.Addr)},
		{"FXW_ALLOWED_ORIGINS", setList(&cfg.Server.AllowedOrigins)},
		{"FXW_STORE_DRIVER", setString(&cfg.Store.Driver)},
		{"FXW_BADGER_PATH", setString(&cfg.Store.BadgerPath)},
		{"FXW_REDIS_ADDR", setString(&cfg.Store.RedisAddr)},
		{"FXW_REDIS_PASSWORD", setString(&cfg.Store.RedisPassword)},
		{"FXW_REDIS_DB", setInt(&cfg.Store.RedisDB)},
		{"FXW_STORE_RETENTION", setDuration(&cfg.Store.Retention)},
		{"FXW_FIAT_URL", setString(&cfg.Rates.FiatURL)},
		{"FXW_CRYPTO_URL", setString(&cfg.Rates.CryptoURL)},
		{"FXW_RATE_CACHE_DURATION", setDuration(&cfg.Rates.CacheDuration)},
		{"FXW_REFRESH_INTERVAL", setDuration(&cfg.Rates.RefreshInterval)},
		{"FXW_REQUEST_TIMEOUT", setDuration(&cfg.Rates.RequestTimeout)},
		{"FXW_CURRENCY_FILE", setString(&cfg.Currencies.File)},
		{"FXW_LOG_LEVEL", setString(&cfg.Logging.Level)},
	}

	for _, o := range overrides {
		value, ok := os.LookupEnv(o.key)
		if !ok {
			continue
		}
		if err := o.apply(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s: %w", o.key, err)
		}
	}

	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setList(dst *[]string) func(string) error {
	return func(v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst = out
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
