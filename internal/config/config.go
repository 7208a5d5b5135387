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

	"github.com/eugenenazirov/trip-quoter/internal/catalog"
	"github.com/eugenenazirov/trip-quoter/internal/pricing"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
	defaultMaxSessions    = 1000
	defaultEnvFile        = ".env"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
	MaxSessions          int

	Rates        pricing.RateTable
	DriverPrices pricing.DriverPrices
	Company      catalog.Company
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string              `yaml:"port"`
	ShutdownGracePeriod  string              `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string              `yaml:"read_header_timeout"`
	WriteTimeout         string              `yaml:"write_timeout"`
	IdleTimeout          string              `yaml:"idle_timeout"`
	EnableRequestLogging *bool               `yaml:"enable_request_logging"`
	LogLevel             string              `yaml:"log_level"`
	MaxSessions          int                 `yaml:"max_sessions"`
	RateLimit            *yamlRateLimit      `yaml:"rate_limit"`
	Rates                map[string]yamlRate `yaml:"rates"`
	PerDiem              yamlPerDiem         `yaml:"per_diem"`
	Company              *catalog.Company    `yaml:"company"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// yamlRate is one vehicle's per-km rates.
type yamlRate struct {
	Productive   float64 `yaml:"productive"`
	Unproductive float64 `yaml:"unproductive"`
}

// yamlPerDiem overrides driver item unit prices, keyed by item key.
type yamlPerDiem struct {
	Provincial map[string]float64 `yaml:"provincial"`
	National   map[string]float64 `yaml:"national"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	envFile := ""
	if overrides != nil {
		envFile = overrides.EnvFile
	}
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	// Environment first so YAML can override it.
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Catalog builds the rate catalog described by cfg.
func (c Config) Catalog() (*catalog.StaticCatalog, error) {
	return catalog.New(c.Rates, c.DriverPrices, c.Company)
}

func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
		MaxSessions:          defaultMaxSessions,
		Rates:                catalog.DefaultRates(),
		DriverPrices:         catalog.DefaultDriverPrices(),
		Company:              catalog.DefaultCompany(),
	}
}

// loadEnvFile populates unset environment variables from a dotenv file.
// An explicit path must exist; the implicit .env is optional.
func loadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.MaxSessions > 0 {
		cfg.MaxSessions = yamlCfg.MaxSessions
	}
	if yamlCfg.RateLimit != nil {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}

	for raw, rate := range yamlCfg.Rates {
		vehicle, err := pricing.ParseVehicle(raw)
		if err != nil {
			return fmt.Errorf("rates: %w", err)
		}
		cfg.Rates[vehicle] = pricing.VehicleRate{Productive: rate.Productive, Unproductive: rate.Unproductive}
	}

	groups := []struct {
		group  pricing.Group
		prices map[string]float64
		target pricing.UnitPrices
	}{
		{pricing.GroupProvincial, yamlCfg.PerDiem.Provincial, cfg.DriverPrices.Provincial},
		{pricing.GroupNational, yamlCfg.PerDiem.National, cfg.DriverPrices.National},
	}
	for _, g := range groups {
		for raw, price := range g.prices {
			key := pricing.ItemKey(strings.TrimSpace(raw))
			if !g.group.Has(key) {
				return fmt.Errorf("per_diem.%s: unknown item %q", g.group, raw)
			}
			g.target[key] = price
		}
	}

	if yamlCfg.Company != nil {
		mergeCompany(&cfg.Company, *yamlCfg.Company)
	}

	return nil
}

func mergeCompany(dst *catalog.Company, src catalog.Company) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Address != "" {
		dst.Address = src.Address
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
}

func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if raw := strings.TrimSpace(os.Getenv("RATES")); raw != "" {
		rates, err := parseRates(raw)
		if err != nil {
			return fmt.Errorf("parse RATES: %w", err)
		}
		for vehicle, rate := range rates {
			cfg.Rates[vehicle] = rate
		}
	}

	return nil
}

func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}
}

func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive")
	}
	if err := cfg.Rates.Validate(); err != nil {
		return err
	}
	if _, err := cfg.Catalog(); err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	return nil
}

// parseRates parses "vehicle=productive:unproductive" pairs separated by commas.
func parseRates(raw string) (pricing.RateTable, error) {
	rates := make(pricing.RateTable)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, values, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q: expected vehicle=productive:unproductive", part)
		}
		vehicle, err := pricing.ParseVehicle(name)
		if err != nil {
			return nil, err
		}
		productiveRaw, unproductiveRaw, ok := strings.Cut(values, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q: expected productive:unproductive", part)
		}
		productive, err := strconv.ParseFloat(strings.TrimSpace(productiveRaw), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: invalid productive rate", part)
		}
		unproductive, err := strconv.ParseFloat(strings.TrimSpace(unproductiveRaw), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: invalid unproductive rate", part)
		}
		rates[vehicle] = pricing.VehicleRate{Productive: productive, Unproductive: unproductive}
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no rates provided")
	}
	return rates, nil
}
