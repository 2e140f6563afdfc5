package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnv overrides c with any environment variables that are set.
func applyEnv(c *Config) error {
	r := &envReader{}

	r.stringVar("TWELVE_API_KEY", &c.Provider.APIKey)
	r.stringVar("TWELVE_BASE_URL", &c.Provider.BaseURL)
	r.stringVar("PROVIDER_MODE", &c.Provider.Mode)
	r.durationVar("REQUEST_TIMEOUT", &c.Provider.RequestTimeout)
	r.intVar("REQUESTS_PER_MINUTE", &c.Provider.RequestsPerMinute)
	r.intVar("MAX_RETRIES", &c.Provider.MaxRetries)
	r.intVar("CANDLE_COUNT", &c.Provider.CandleCount)

	r.stringVar("TELEGRAM_TOKEN", &c.Telegram.Token)
	r.int64Var("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	r.boolVar("NOTIFY_INSUFFICIENT", &c.Telegram.NotifyInsufficient)

	r.stringVar("MARKET_OPEN", &c.Market.Open)
	r.stringVar("MARKET_CLOSE", &c.Market.Close)
	r.stringVar("MARKET_TIMEZONE", &c.Market.Timezone)

	r.listVar("TICKERS", &c.Cycle.Tickers)
	r.durationVar("CYCLE_INTERVAL", &c.Cycle.CycleInterval)
	r.durationVar("INTER_TICKER_DELAY", &c.Cycle.InterTickerDelay)
	r.durationVar("CLOSED_POLL_INTERVAL", &c.Cycle.ClosedPoll)

	r.stringVar("INTERVAL", &c.Indicators.Interval)
	r.intVar("SMA_PERIOD", &c.Indicators.SMAPeriod)
	r.intVar("RSI_PERIOD", &c.Indicators.RSIPeriod)
	r.intVar("EMA_PERIOD", &c.Indicators.EMAPeriod)
	r.intVar("EMA_OUTPUT_SIZE", &c.Indicators.EMAOutputSize)
	r.intVar("MACD_FAST_PERIOD", &c.Indicators.MACDFast)
	r.intVar("MACD_SLOW_PERIOD", &c.Indicators.MACDSlow)
	r.intVar("MACD_SIGNAL_PERIOD", &c.Indicators.MACDSignal)
	r.intVar("BB_PERIOD", &c.Indicators.BBPeriod)
	r.floatVar("BB_STD_DEV", &c.Indicators.BBStdDev)
	r.intVar("ADX_PERIOD", &c.Indicators.ADXPeriod)
	r.intVar("MFI_PERIOD", &c.Indicators.MFIPeriod)
	r.boolVar("ENABLE_ADX", &c.Indicators.EnableADX)
	r.boolVar("ENABLE_MFI", &c.Indicators.EnableMFI)

	r.floatVar("ADX_THRESHOLD", &c.Scoring.ADXThreshold)
	r.intVar("STRONG_PERCENT", &c.Scoring.StrongPercent)
	r.intVar("WEAK_PERCENT", &c.Scoring.WeakPercent)

	r.boolVar("DB_ENABLED", &c.Database.Enabled)
	r.stringVar("DB_HOST", &c.Database.Host)
	r.stringVar("DB_PORT", &c.Database.Port)
	r.stringVar("DB_USER", &c.Database.User)
	r.stringVar("DB_PASSWORD", &c.Database.Password)
	r.stringVar("DB_NAME", &c.Database.Name)
	r.stringVar("DB_SSLMODE", &c.Database.SSLMode)

	r.stringVar("HEALTH_ADDR", &c.Health.Addr)

	r.stringVar("LOG_LEVEL", &c.Log.Level)
	r.stringVar("LOG_FORMAT", &c.Log.Format)
	r.stringVar("LOG_FILE", &c.Log.File)

	return r.err
}

// envReader parses set variables into their destinations and keeps the
// first parse error.
type envReader struct {
	err error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s=%q: %w", key, value, err)
	}
}

func (r *envReader) stringVar(key string, dst *string) {
	if v, ok := r.lookup(key); ok {
		*dst = v
	}
}

func (r *envReader) intVar(key string, dst *int) {
	if v, ok := r.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) int64Var(key string, dst *int64) {
	if v, ok := r.lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (r *envReader) floatVar(key string, dst *float64) {
	if v, ok := r.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (r *envReader) boolVar(key string, dst *bool) {
	if v, ok := r.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(key, v, err)
			return
		}
		*dst = b
	}
}

// durationVar accepts Go durations ("4m") or plain seconds ("240").
func (r *envReader) durationVar(key string, dst *time.Duration) {
	v, ok := r.lookup(key)
	if !ok {
		return
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = d
}

// listVar splits a comma-separated value, dropping blanks and upper-casing
// symbols.
func (r *envReader) listVar(key string, dst *[]string) {
	v, ok := r.lookup(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	*dst = out
}
