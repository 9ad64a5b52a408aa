package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ChartFeed/internal/model"
	"ChartFeed/internal/period"
	"ChartFeed/internal/preset"
	"ChartFeed/internal/recorder"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Asset.ID != model.BaseAssetID || cfg.Asset.TickerSymbol != "BTC" {
		t.Errorf("asset = %+v", cfg.Asset)
	}
	if cfg.Display.Currency != model.USD || cfg.Display.Period != period.DefaultTitle || cfg.Display.Preset != preset.DefaultTag {
		t.Errorf("display = %+v", cfg.Display)
	}
	if cfg.Feed.Timeout != 30*time.Second || cfg.Cache.TTL != time.Minute {
		t.Errorf("timeouts = %v %v", cfg.Feed.Timeout, cfg.Cache.TTL)
	}
	if cfg.Database.Driver != recorder.DriverSQLite || cfg.Database.DSN == "" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Schedule.RefreshCron == "" {
		t.Error("refresh cron should default")
	}
	if cfg.Period().Title != period.DefaultTitle {
		t.Errorf("period = %q", cfg.Period().Title)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
feed:
  base_url: https://example.test
  timeout: 5s
asset:
  id: ethereum
  ticker_symbol: ETH
  rate: 0.05
  btc_usd_rate: 60000
display:
  currency: BTC
  period: 1W
  preset: price-only
database:
  driver: postgres
  dsn: postgres://localhost/chartfeed
`)
	envPath := writeFile(t, dir, ".env", "CHARTFEED_API_KEY=from-dotenv\nCHARTFEED_PERIOD=3M\n")

	t.Setenv("CHARTFEED_API_KEY", "")
	t.Setenv("CHARTFEED_PERIOD", "")
	os.Unsetenv("CHARTFEED_API_KEY")
	os.Unsetenv("CHARTFEED_PERIOD")
	t.Setenv("CRON_REFRESH", "0 * * * * *")

	cfg, err := Load(path, envPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Feed.BaseURL != "https://example.test" || cfg.Feed.Timeout != 5*time.Second {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if cfg.Feed.APIKey != "from-dotenv" {
		t.Errorf("api key = %q, want value from .env", cfg.Feed.APIKey)
	}
	if cfg.Display.Period != period.Title3M {
		t.Errorf("period = %q, env should override yaml", cfg.Display.Period)
	}
	if cfg.Asset.ID != "ethereum" || cfg.Asset.BTCUSDRate != 60000 {
		t.Errorf("asset = %+v", cfg.Asset)
	}
	if cfg.Schedule.RefreshCron != "0 * * * * *" {
		t.Errorf("cron = %q", cfg.Schedule.RefreshCron)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadBadInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(writeFile(t, dir, "bad.yaml", "feed: [unclosed"), ""); err == nil {
		t.Error("expected parse error")
	}
	t.Setenv("BTC_USD_RATE", "lots")
	if _, err := Load(filepath.Join(dir, "none.yaml"), ""); err == nil {
		t.Error("expected BTC_USD_RATE parse error")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Feed.Mock = true
		cfg.applyDefaults()
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults with mock", func(c *Config) {}, false},
		{"no base url", func(c *Config) { c.Feed.Mock = false }, true},
		{"bad currency", func(c *Config) { c.Display.Currency = "EUR" }, true},
		{"bad period", func(c *Config) { c.Display.Period = "5Y" }, true},
		{"bad preset", func(c *Config) { c.Display.Preset = "candles" }, true},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = recorder.DriverPostgres; c.Database.DSN = "" }, true},
		{"negative rate", func(c *Config) { c.Asset.BTCUSDRate = -1 }, true},
		{"missing ticker", func(c *Config) { c.Asset.TickerSymbol = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
