package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ChartFeed/internal/model"
	"ChartFeed/internal/period"
	"ChartFeed/internal/preset"
	"ChartFeed/internal/recorder"
)

// Config holds all application configuration.
type Config struct {
	Feed struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
		Mock    bool          `yaml:"mock"`
	} `yaml:"feed"`
	Realtime struct {
		URL      string `yaml:"url"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"realtime"`
	Asset   model.Asset `yaml:"asset"`
	Display struct {
		Currency model.Currency `yaml:"currency"`
		Period   string         `yaml:"period"`
		Preset   string         `yaml:"preset"`
	} `yaml:"display"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		TTL       time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Variables in envPath, if the file exists, are loaded first
// without replacing ones already set.
func Load(path, envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] could not load %s: %v", envPath, err)
		}
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("CHARTFEED_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("CHARTFEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("CHARTFEED_MOCK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse CHARTFEED_MOCK: %w", err)
		}
		c.Feed.Mock = b
	}
	if v := os.Getenv("CHARTFEED_WS_URL"); v != "" {
		c.Realtime.URL = v
	}
	if v := os.Getenv("CHARTFEED_ASSET"); v != "" {
		c.Asset.ID = v
	}
	if v := os.Getenv("CHARTFEED_CURRENCY"); v != "" {
		c.Display.Currency = model.Currency(v)
	}
	if v := os.Getenv("CHARTFEED_PERIOD"); v != "" {
		c.Display.Period = v
	}
	if v := os.Getenv("BTC_USD_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse BTC_USD_RATE: %w", err)
		}
		c.Asset.BTCUSDRate = rate
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = 30 * time.Second
	}
	if c.Asset.ID == "" {
		c.Asset.ID = model.BaseAssetID
	}
	if c.Asset.TickerSymbol == "" && c.Asset.IsBase() {
		c.Asset.TickerSymbol = "BTC"
	}
	if c.Display.Currency == "" {
		c.Display.Currency = model.USD
	}
	if c.Display.Period == "" {
		c.Display.Period = period.DefaultTitle
	}
	if c.Display.Preset == "" {
		c.Display.Preset = preset.DefaultTag
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = time.Minute
	}
	if c.Database.Driver == "" {
		c.Database.Driver = recorder.DriverSQLite
	}
	if c.Database.DSN == "" && c.Database.Driver == recorder.DriverSQLite {
		c.Database.DSN = "data/chartfeed.db"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */5 * * * *"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if !c.Feed.Mock && c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required unless feed.mock is set")
	}
	if c.Asset.TickerSymbol == "" {
		return fmt.Errorf("asset.ticker_symbol is required")
	}
	if !c.Display.Currency.Valid() {
		return fmt.Errorf("display.currency %q is not supported", c.Display.Currency)
	}
	if _, ok := period.Lookup(c.Display.Period); !ok {
		return fmt.Errorf("display.period %q is unknown", c.Display.Period)
	}
	if _, err := preset.Lookup(c.Display.Preset); err != nil {
		return fmt.Errorf("display.preset: %w", err)
	}
	switch c.Database.Driver {
	case recorder.DriverSQLite, recorder.DriverPostgres:
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.Driver == recorder.DriverPostgres && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for postgres")
	}
	if c.Asset.BTCUSDRate < 0 {
		return fmt.Errorf("asset.btc_usd_rate must not be negative")
	}
	return nil
}

// Period returns the configured catalog period.
func (c *Config) Period() model.Period {
	p, ok := period.Lookup(c.Display.Period)
	if !ok {
		return period.Default()
	}
	return p
}
