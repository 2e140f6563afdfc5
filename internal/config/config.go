package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/StockAuto/internal/analyze"
	"github.com/Alias1177/StockAuto/internal/database"
	"github.com/Alias1177/StockAuto/internal/logger"
	"github.com/Alias1177/StockAuto/internal/market"
	"github.com/Alias1177/StockAuto/internal/model"
	"github.com/Alias1177/StockAuto/internal/scheduler"
)

// Provider modes.
const (
	ModeEndpoints = "endpoints"
	ModeCandles   = "candles"
)

// HealthDisabled turns the liveness server off when used as the address.
const HealthDisabled = "off"

// Config holds all application configuration
type Config struct {
	Provider   ProviderConfig  `yaml:"provider"`
	Telegram   TelegramConfig  `yaml:"telegram"`
	Market     MarketConfig    `yaml:"market"`
	Cycle      CycleConfig     `yaml:"cycle"`
	Indicators IndicatorConfig `yaml:"indicators"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	Database   DatabaseConfig  `yaml:"database"`
	Health     HealthConfig    `yaml:"health"`
	Log        LogConfig       `yaml:"log"`
}

// ProviderConfig configures the Twelve Data client.
type ProviderConfig struct {
	APIKey            string        `yaml:"api_key" validate:"required"`
	BaseURL           string        `yaml:"base_url" default:"https://api.twelvedata.com" validate:"required,url"`
	Mode              string        `yaml:"mode" default:"endpoints" validate:"oneof=endpoints candles"`
	RequestTimeout    time.Duration `yaml:"request_timeout" default:"10s" validate:"gt=0"`
	RequestsPerMinute int           `yaml:"requests_per_minute" default:"8" validate:"gt=0"`
	MaxRetries        int           `yaml:"max_retries" validate:"gte=0,lte=5"`

	// CandleCount is the history fetched per ticker in candles mode.
	CandleCount int `yaml:"candle_count" default:"100" validate:"gte=35,lte=5000"`
}

// TelegramConfig configures operator notifications.
type TelegramConfig struct {
	Token              string `yaml:"token"`
	ChatID             int64  `yaml:"chat_id"`
	NotifyInsufficient bool   `yaml:"notify_insufficient"`
}

// MarketConfig is the trading window in the exchange's timezone.
type MarketConfig struct {
	Open     string `yaml:"open" default:"09:30" validate:"required"`
	Close    string `yaml:"close" default:"16:00" validate:"required"`
	Timezone string `yaml:"timezone" default:"America/New_York" validate:"required"`
}

// CycleConfig is the polling cadence.
type CycleConfig struct {
	Tickers          []string      `yaml:"tickers" default:"[\"NVDA\",\"TSLA\",\"AAPL\",\"MSFT\"]" validate:"required,min=1,dive,required"`
	CycleInterval    time.Duration `yaml:"cycle_interval" default:"32m" validate:"gt=0"`
	InterTickerDelay time.Duration `yaml:"inter_ticker_delay" default:"4m" validate:"gte=0"`
	ClosedPoll       time.Duration `yaml:"closed_poll" default:"10m" validate:"gt=0"`
}

// IndicatorConfig holds the sampling interval and indicator periods.
type IndicatorConfig struct {
	Interval      string  `yaml:"interval" default:"15min" validate:"oneof=1min 5min 15min 30min 45min 1h 2h 4h 1day"`
	SMAPeriod     int     `yaml:"sma_period" default:"20" validate:"gt=0"`
	RSIPeriod     int     `yaml:"rsi_period" default:"14" validate:"gt=0"`
	EMAPeriod     int     `yaml:"ema_period" default:"20" validate:"gt=0"`
	EMAOutputSize int     `yaml:"ema_output_size" default:"30" validate:"gte=2"`
	MACDFast      int     `yaml:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow      int     `yaml:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
	MACDSignal    int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
	BBPeriod      int     `yaml:"bb_period" default:"20" validate:"gt=1"`
	BBStdDev      float64 `yaml:"bb_std_dev" default:"2" validate:"gt=0"`
	ADXPeriod     int     `yaml:"adx_period" default:"14" validate:"gt=0"`
	MFIPeriod     int     `yaml:"mfi_period" default:"14" validate:"gt=0"`
	EnableADX     bool    `yaml:"enable_adx"`
	EnableMFI     bool    `yaml:"enable_mfi"`
}

// ScoringConfig tunes label thresholds.
type ScoringConfig struct {
	ADXThreshold  float64 `yaml:"adx_threshold" default:"25" validate:"gte=0,lte=100"`
	StrongPercent int     `yaml:"strong_percent" default:"50" validate:"gt=0,lte=100"`
	WeakPercent   int     `yaml:"weak_percent" default:"30" validate:"gt=0,ltfield=StrongPercent"`
}

// DatabaseConfig configures the optional PostgreSQL signal log.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
	Port     string `yaml:"port" default:"5432"`
	User     string `yaml:"user" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required_if=Enabled true"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// HealthConfig configures the liveness endpoint.
type HealthConfig struct {
	// Addr is the listen address, or "off".
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format     string `yaml:"format" default:"pretty" validate:"oneof=pretty json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"50" validate:"gt=0"`
	MaxAgeDays int    `yaml:"max_age_days" default:"14" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" default:"5" validate:"gte=0"`
}

var validate = validator.New()

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing priority, and validates the result.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&c); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Validate checks field constraints and the cross-field rules that keep the
// loop inside the provider's quota.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, err := c.Clock(); err != nil {
		return err
	}

	loop := time.Duration(len(c.Cycle.Tickers)-1) * c.Cycle.InterTickerDelay
	if c.Cycle.CycleInterval < loop {
		return fmt.Errorf("cycle interval %s is shorter than the ticker loop %s (%d tickers x %s)",
			c.Cycle.CycleInterval, loop, len(c.Cycle.Tickers), c.Cycle.InterTickerDelay)
	}

	return c.CheckRequestBudget()
}

// CheckRequestBudget fails when the tickers that can start inside one minute
// need more requests than the provider allows.
func (c *Config) CheckRequestBudget() error {
	perWindow := c.RequestCost() * c.TickersPerWindow()
	if perWindow > c.Provider.RequestsPerMinute {
		return fmt.Errorf("%d requests per minute needed (%d per ticker x %d tickers), provider allows %d",
			perWindow, c.RequestCost(), c.TickersPerWindow(), c.Provider.RequestsPerMinute)
	}
	return nil
}

// RequireTelegram fails unless notification credentials are set. Commands
// that never notify skip this check.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}
	return nil
}

// RequestCost is the worst-case number of provider requests for one ticker.
func (c *Config) RequestCost() int {
	if c.Provider.Mode == ModeCandles {
		return 1
	}
	// price, sma, macd, rsi, bbands, plus ema when MACD is unavailable
	cost := 6
	if c.Indicators.EnableADX {
		cost += 3
	}
	if c.Indicators.EnableMFI {
		cost++
	}
	return cost
}

// TickersPerWindow is the most ticker evaluations that can start inside any
// one-minute window. Cycles repeat every CycleInterval, so the tail of one
// cycle and the head of the next share a window when the cooldown is short.
// A zero CycleInterval means a single pass.
func (c *Config) TickersPerWindow() int {
	n := len(c.Cycle.Tickers)
	delay := c.Cycle.InterTickerDelay
	if delay < 0 {
		delay = 0
	}
	period := c.Cycle.CycleInterval

	best := 0
	for i := 0; i < n; i++ {
		from := time.Duration(i) * delay
		to := from + time.Minute
		count := 0
		for j := 0; j < n; j++ {
			offset := time.Duration(j) * delay
			if period <= 0 {
				if offset >= from && offset <= to {
					count++
				}
				continue
			}
			first := ceilDiv(int64(from-offset), int64(period))
			last := floorDiv(int64(to-offset), int64(period))
			if last >= first {
				count += int(last - first + 1)
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

// Clock builds the market clock described by Market.
func (c *Config) Clock() (*market.Clock, error) {
	open, err := market.ParseTimeOfDay(c.Market.Open)
	if err != nil {
		return nil, fmt.Errorf("market open: %w", err)
	}
	closeAt, err := market.ParseTimeOfDay(c.Market.Close)
	if err != nil {
		return nil, fmt.Errorf("market close: %w", err)
	}
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("market timezone: %w", err)
	}
	return market.NewClock(open, closeAt, loc)
}

// IndicatorParams converts the indicator settings.
func (c *Config) IndicatorParams() model.IndicatorParams {
	i := c.Indicators
	return model.IndicatorParams{
		Interval:      i.Interval,
		SMAPeriod:     i.SMAPeriod,
		RSIPeriod:     i.RSIPeriod,
		EMAPeriod:     i.EMAPeriod,
		EMAOutputSize: i.EMAOutputSize,
		MACDFast:      i.MACDFast,
		MACDSlow:      i.MACDSlow,
		MACDSignal:    i.MACDSignal,
		BBPeriod:      i.BBPeriod,
		BBStdDev:      i.BBStdDev,
		ADXPeriod:     i.ADXPeriod,
		MFIPeriod:     i.MFIPeriod,
		EnableADX:     i.EnableADX,
		EnableMFI:     i.EnableMFI,
	}
}

// ScoringParams converts the scoring settings.
func (c *Config) ScoringParams() analyze.Params {
	return analyze.Params{
		ADXThreshold:  c.Scoring.ADXThreshold,
		StrongPercent: c.Scoring.StrongPercent,
		WeakPercent:   c.Scoring.WeakPercent,
	}
}

// SchedulerConfig converts the cadence settings.
func (c *Config) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		Tickers:            append([]string(nil), c.Cycle.Tickers...),
		CycleInterval:      c.Cycle.CycleInterval,
		InterTickerDelay:   c.Cycle.InterTickerDelay,
		ClosedPoll:         c.Cycle.ClosedPoll,
		NotifyInsufficient: c.Telegram.NotifyInsufficient,
	}
}

// ConnectionParams converts the database settings.
func (c *Config) ConnectionParams() database.ConnectionParams {
	d := c.Database
	return database.ConnectionParams{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.Name,
		SSLMode:  d.SSLMode,
	}
}

// LoggerConfig converts the log settings.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxAgeDays: c.Log.MaxAgeDays,
		MaxBackups: c.Log.MaxBackups,
	}
}

// HealthStaleness is how old the scheduler heartbeat may get before the
// process is reported unhealthy: twice the longest gap between heartbeats.
func (c *Config) HealthStaleness() time.Duration {
	longest := c.Cycle.CycleInterval
	if c.Cycle.ClosedPoll > longest {
		longest = c.Cycle.ClosedPoll
	}
	return 2 * longest
}
