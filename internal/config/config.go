package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/collector"
	"DebtVsDCA/internal/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider          string `yaml:"provider"`
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		CSVDir            string `yaml:"csv_dir"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"data_source"`
	Cache struct {
		Backend       string        `yaml:"backend"`
		TTL           time.Duration `yaml:"ttl"`
		SQLitePath    string        `yaml:"sqlite_path"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Simulation struct {
		DebtPolicy              string  `yaml:"debt_policy"`
		Period                  string  `yaml:"period"`
		HorizonMonths           int     `yaml:"horizon_months"`
		FallbackMeanDailyReturn float64 `yaml:"fallback_mean_daily_return"`
		FallbackDailyVolatility float64 `yaml:"fallback_daily_volatility"`
	} `yaml:"simulation"`
	Session struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"session"`
	Server struct {
		Port        int    `yaml:"port"`
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		Dev   bool   `yaml:"dev"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Unset means "use the default"; an explicit zero in YAML is kept.
	cfg.Simulation.FallbackMeanDailyReturn = -1
	cfg.Simulation.FallbackDailyVolatility = -1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("CMC_API_KEY"); v != "" && (cfg.DataSource.Provider == "coinmarketcap" || cfg.DataSource.Provider == "cmc") {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" && (cfg.DataSource.Provider == "" || cfg.DataSource.Provider == "coingecko") {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if os.Getenv("APP_ENV") == "dev" {
		cfg.Log.Dev = true
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "coingecko"
	}
	if cfg.DataSource.RequestsPerMinute == 0 {
		cfg.DataSource.RequestsPerMinute = collector.DefaultRequestsPerMinute
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = collector.DefaultCacheTTL
	}
	if cfg.Cache.Backend == "sqlite" && cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/price_cache.db"
	}
	if cfg.Simulation.DebtPolicy == "" {
		cfg.Simulation.DebtPolicy = string(model.IgnorePayments)
	}
	if cfg.Simulation.Period == "" {
		cfg.Simulation.Period = string(model.DefaultPeriod)
	}
	if cfg.Simulation.FallbackMeanDailyReturn == -1 {
		cfg.Simulation.FallbackMeanDailyReturn = calculator.FallbackMeanDailyReturn
	}
	if cfg.Simulation.FallbackDailyVolatility == -1 {
		cfg.Simulation.FallbackDailyVolatility = calculator.FallbackDailyVolatility
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RefreshCron == "" {
		cfg.Server.RefreshCron = "0 */5 * * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "coinmarketcap", "cmc":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for coinmarketcap (or set CMC_API_KEY)")
		}
	case "csv":
		if c.DataSource.CSVDir == "" {
			return fmt.Errorf("data_source.csv_dir is required for the csv provider")
		}
	case "coingecko", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}

	switch c.Cache.Backend {
	case "memory", "none":
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path is required for the sqlite backend")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	if _, err := model.ParseDebtPolicy(c.Simulation.DebtPolicy); err != nil {
		return fmt.Errorf("simulation.debt_policy: %w", err)
	}
	if _, err := model.ParsePeriod(c.Simulation.Period); err != nil {
		return fmt.Errorf("simulation.period: %w", err)
	}
	if c.Simulation.HorizonMonths < 0 {
		return fmt.Errorf("simulation.horizon_months must not be negative")
	}
	if c.Simulation.FallbackDailyVolatility < 0 {
		return fmt.Errorf("simulation.fallback_daily_volatility must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}

// SourceOptions maps the data_source section onto collector options.
func (c *Config) SourceOptions() collector.SourceOptions {
	return collector.SourceOptions{
		Provider:          c.DataSource.Provider,
		BaseURL:           c.DataSource.BaseURL,
		APIKey:            c.DataSource.APIKey,
		ProxyURL:          c.Proxy,
		CSVDir:            c.DataSource.CSVDir,
		RequestsPerMinute: c.DataSource.RequestsPerMinute,
	}
}
