package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate clears every variable Load reads so the host environment cannot
// leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TWELVE_API_KEY", "TWELVE_BASE_URL", "PROVIDER_MODE", "REQUEST_TIMEOUT", "REQUESTS_PER_MINUTE",
		"MAX_RETRIES", "CANDLE_COUNT", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "NOTIFY_INSUFFICIENT",
		"MARKET_OPEN", "MARKET_CLOSE", "MARKET_TIMEZONE", "TICKERS", "CYCLE_INTERVAL",
		"INTER_TICKER_DELAY", "CLOSED_POLL_INTERVAL", "INTERVAL", "SMA_PERIOD", "RSI_PERIOD",
		"EMA_PERIOD", "EMA_OUTPUT_SIZE", "MACD_FAST_PERIOD", "MACD_SLOW_PERIOD", "MACD_SIGNAL_PERIOD",
		"BB_PERIOD", "BB_STD_DEV", "ADX_PERIOD", "MFI_PERIOD", "ENABLE_ADX", "ENABLE_MFI",
		"ADX_THRESHOLD", "STRONG_PERCENT", "WEAK_PERCENT", "DB_ENABLED", "DB_HOST", "DB_PORT",
		"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "HEALTH_ADDR", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TWELVE_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := strings.Join(cfg.Cycle.Tickers, ","); got != "NVDA,TSLA,AAPL,MSFT" {
		t.Errorf("Tickers = %s", got)
	}
	if cfg.Cycle.CycleInterval != 32*time.Minute || cfg.Cycle.InterTickerDelay != 4*time.Minute {
		t.Errorf("cadence = %v / %v, want 32m / 4m", cfg.Cycle.CycleInterval, cfg.Cycle.InterTickerDelay)
	}
	if cfg.Provider.RequestTimeout != 10*time.Second || cfg.Provider.RequestsPerMinute != 8 {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Market.Timezone != "America/New_York" || cfg.Market.Open != "09:30" || cfg.Market.Close != "16:00" {
		t.Errorf("market = %+v", cfg.Market)
	}
	if cfg.Scoring.StrongPercent != 50 || cfg.Scoring.WeakPercent != 30 || cfg.Scoring.ADXThreshold != 25 {
		t.Errorf("scoring = %+v", cfg.Scoring)
	}
	if got := cfg.IndicatorParams(); got.SMAPeriod != 20 || got.MACDSlow != 26 || got.Interval != "15min" {
		t.Errorf("IndicatorParams() = %+v", got)
	}
	if cfg.RequestCost() != 6 || cfg.TickersPerWindow() != 1 {
		t.Errorf("RequestCost() = %d, TickersPerWindow() = %d, want 6, 1", cfg.RequestCost(), cfg.TickersPerWindow())
	}
	if cfg.HealthStaleness() != 64*time.Minute {
		t.Errorf("HealthStaleness() = %v, want 64m", cfg.HealthStaleness())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TICKERS", " nvda, aapl ,,")
	t.Setenv("CYCLE_INTERVAL", "540")
	t.Setenv("INTER_TICKER_DELAY", "70s")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("NOTIFY_INSUFFICIENT", "true")
	t.Setenv("ENABLE_ADX", "1")
	t.Setenv("REQUESTS_PER_MINUTE", "10")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := strings.Join(cfg.Cycle.Tickers, ","); got != "NVDA,AAPL" {
		t.Errorf("Tickers = %s, want NVDA,AAPL", got)
	}
	sc := cfg.SchedulerConfig()
	if sc.CycleInterval != 540*time.Second || sc.InterTickerDelay != 70*time.Second || !sc.NotifyInsufficient {
		t.Errorf("SchedulerConfig() = %+v", sc)
	}
	if cfg.Telegram.ChatID != -100123 {
		t.Errorf("ChatID = %d", cfg.Telegram.ChatID)
	}
	if cfg.RequestCost() != 9 {
		t.Errorf("RequestCost() = %d, want 9 with ADX", cfg.RequestCost())
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "stockauto.yaml")
	yamlDoc := `
provider:
  mode: candles
  requests_per_minute: 8
cycle:
  tickers: [AMD, INTC]
  cycle_interval: 20m
  inter_ticker_delay: 0s
market:
  timezone: Europe/London
  open: "14:30"
  close: "21:00"
scoring:
  strong_percent: 60
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INTER_TICKER_DELAY", "30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Mode != ModeCandles || cfg.RequestCost() != 1 {
		t.Errorf("mode = %s, cost = %d", cfg.Provider.Mode, cfg.RequestCost())
	}
	if cfg.Cycle.InterTickerDelay != 30*time.Second {
		t.Errorf("InterTickerDelay = %v, want env value 30s", cfg.Cycle.InterTickerDelay)
	}
	if cfg.Cycle.CycleInterval != 20*time.Minute || cfg.Scoring.StrongPercent != 60 || cfg.Scoring.WeakPercent != 30 {
		t.Errorf("cfg = %+v %+v", cfg.Cycle, cfg.Scoring)
	}
	if _, err := cfg.Clock(); err != nil {
		t.Errorf("Clock() error = %v", err)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing api key", map[string]string{"TWELVE_API_KEY": ""}, "APIKey"},
		{"cycle shorter than loop", map[string]string{"CYCLE_INTERVAL": "5m"}, "shorter than the ticker loop"},
		{"quota exceeded", map[string]string{"INTER_TICKER_DELAY": "0", "CYCLE_INTERVAL": "10m"}, "requests per minute"},
		{"next cycle inside the window", map[string]string{"INTER_TICKER_DELAY": "4m", "CYCLE_INTERVAL": "12m"}, "requests per minute"},
		{"single ticker cycles too fast", map[string]string{"TICKERS": "NVDA", "CYCLE_INTERVAL": "30s"}, "requests per minute"},
		{"weak above strong", map[string]string{"WEAK_PERCENT": "70"}, "WeakPercent"},
		{"unknown timezone", map[string]string{"MARKET_TIMEZONE": "Mars/Olympus"}, "market timezone"},
		{"open after close", map[string]string{"MARKET_OPEN": "17:00"}, "not before close"},
		{"bad number", map[string]string{"RSI_PERIOD": "fourteen"}, "RSI_PERIOD"},
		{"bad mode", map[string]string{"PROVIDER_MODE": "websocket"}, "Mode"},
		{"macd periods", map[string]string{"MACD_FAST_PERIOD": "30"}, "MACDSlow"},
		{"empty tickers", map[string]string{"TICKERS": " , "}, "Tickers"},
		{"database without user", map[string]string{"DB_ENABLED": "true", "DB_NAME": "signals"}, "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestTickersPerWindow(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		cycle   time.Duration
		tickers int
		want    int
	}{
		{"no delay", 0, 10 * time.Minute, 4, 4},
		{"short delay", 20 * time.Second, 10 * time.Minute, 5, 4},
		{"two within a minute", 30 * time.Second, 10 * time.Minute, 2, 2},
		{"spaced out", 70 * time.Second, 10 * time.Minute, 4, 1},
		{"default cadence", 4 * time.Minute, 32 * time.Minute, 4, 1},
		{"no cooldown", 4 * time.Minute, 12 * time.Minute, 4, 2},
		{"cooldown under a minute", 4 * time.Minute, 12*time.Minute + 30*time.Second, 4, 2},
		{"single ticker fast cycle", 0, 30 * time.Second, 1, 3},
		{"single pass", 20 * time.Second, 0, 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Cycle: CycleConfig{
				InterTickerDelay: tt.delay,
				CycleInterval:    tt.cycle,
				Tickers:          make([]string, tt.tickers),
			}}
			if got := c.TickersPerWindow(); got != tt.want {
				t.Errorf("TickersPerWindow() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCheckRequestBudget(t *testing.T) {
	c := &Config{}
	c.Provider.Mode = ModeEndpoints
	c.Provider.RequestsPerMinute = 8
	c.Cycle.Tickers = []string{"NVDA", "AAPL"}

	if err := c.CheckRequestBudget(); err == nil {
		t.Error("CheckRequestBudget() = nil for two tickers without delay")
	}

	c.Cycle.InterTickerDelay = 4 * time.Minute
	if err := c.CheckRequestBudget(); err != nil {
		t.Errorf("CheckRequestBudget() = %v with 4m delay", err)
	}

	c.Cycle.InterTickerDelay = 0
	c.Provider.Mode = ModeCandles
	if err := c.CheckRequestBudget(); err != nil {
		t.Errorf("CheckRequestBudget() = %v in candle mode", err)
	}
}

func TestRequireTelegram(t *testing.T) {
	c := &Config{}
	if err := c.RequireTelegram(); err == nil {
		t.Error("RequireTelegram() = nil without token")
	}
	c.Telegram.Token = "t"
	if err := c.RequireTelegram(); err == nil || !strings.Contains(err.Error(), "TELEGRAM_CHAT_ID") {
		t.Errorf("RequireTelegram() = %v, want chat id error", err)
	}
	c.Telegram.ChatID = 42
	if err := c.RequireTelegram(); err != nil {
		t.Errorf("RequireTelegram() = %v", err)
	}
}
