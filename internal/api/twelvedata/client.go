package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/StockAuto/internal/model"
	httpClient "github.com/Alias1177/StockAuto/internal/platform/http"
)

const defaultBaseURL = "https://api.twelvedata.com"

var (
	// ErrProviderStatus is returned when the response carries "status":"error".
	ErrProviderStatus = errors.New("twelve data error status")
	// ErrNoValues is returned when a series response has no samples.
	ErrNoValues = errors.New("empty data returned")
)

// FailureObserver is told about every indicator that came back absent.
type FailureObserver interface {
	RecordFetchFailure(indicator string)
}

// Client is the TwelveData API client. Every indicator fetch is a single
// bounded request; failures are logged and turned into absent values.
type Client struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *httpClient.Client
	params     model.IndicatorParams
	observer   FailureObserver
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey            string
	BaseURL           string
	RequestTimeout    time.Duration
	RequestsPerMinute int
	MaxRetries        int
	Params            model.IndicatorParams
	Observer          FailureObserver
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	// Apply defaults if not set
	if options.RequestTimeout == 0 {
		options.RequestTimeout = 10 * time.Second
	}
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}

	httpOpts := httpClient.ClientOptions{
		Timeout:           options.RequestTimeout,
		RequestsPerMinute: options.RequestsPerMinute,
		MaxRetries:        options.MaxRetries,
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    options.BaseURL,
		timeout:    options.RequestTimeout,
		httpClient: httpClient.NewClient(httpOpts),
		params:     options.Params,
		observer:   options.Observer,
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// BuildSnapshot fetches every configured indicator for ticker. Partial
// failure leaves the affected fields absent; it never returns an error.
func (c *Client) BuildSnapshot(ctx context.Context, ticker string) model.Snapshot {
	snap := model.Snapshot{Ticker: ticker}

	snap.Price = c.Price(ctx, ticker)
	snap.SMA = c.SMA(ctx, ticker)
	snap.MACD = c.MACD(ctx, ticker)
	// The EMA slope only matters as a MACD substitute; skip the request otherwise.
	if !snap.MACD.Present() {
		snap.EMASlope = c.EMASlope(ctx, ticker)
	}
	snap.RSI = c.RSI(ctx, ticker)
	snap.Bollinger = c.Bollinger(ctx, ticker)
	if c.params.EnableADX {
		snap.ADX = c.ADX(ctx, ticker)
	}
	if c.params.EnableMFI {
		snap.MFI = c.MFI(ctx, ticker)
	}

	return snap
}

// Price fetches the latest traded price.
func (c *Client) Price(ctx context.Context, ticker string) model.Value[decimal.Decimal] {
	body, err := c.get(ctx, "price", url.Values{"symbol": {ticker}})
	if err != nil {
		return absent[decimal.Decimal](c, "price", ticker, err)
	}

	var resp priceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return absent[decimal.Decimal](c, "price", ticker, fmt.Errorf("parsing JSON: %w", err))
	}
	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return absent[decimal.Decimal](c, "price", ticker, fmt.Errorf("parsing price: %w", err))
	}
	return model.Some(price)
}

// SMA fetches the latest simple moving average.
func (c *Client) SMA(ctx context.Context, ticker string) model.Value[decimal.Decimal] {
	row, err := c.latest(ctx, "sma", ticker, url.Values{"time_period": {itoa(c.params.SMAPeriod)}})
	if err != nil {
		return absent[decimal.Decimal](c, "sma", ticker, err)
	}
	v, err := decimalField(row, "sma")
	if err != nil {
		return absent[decimal.Decimal](c, "sma", ticker, err)
	}
	return model.Some(v)
}

// RSI fetches the latest relative strength index.
func (c *Client) RSI(ctx context.Context, ticker string) model.Value[float64] {
	row, err := c.latest(ctx, "rsi", ticker, url.Values{"time_period": {itoa(c.params.RSIPeriod)}})
	if err != nil {
		return absent[float64](c, "rsi", ticker, err)
	}
	v, err := floatField(row, "rsi")
	if err != nil {
		return absent[float64](c, "rsi", ticker, err)
	}
	return model.Some(v)
}

// Bollinger fetches the latest Bollinger bands.
func (c *Client) Bollinger(ctx context.Context, ticker string) model.Value[model.Bollinger] {
	row, err := c.latest(ctx, "bbands", ticker, url.Values{
		"time_period": {itoa(c.params.BBPeriod)},
		"sd":          {strconv.FormatFloat(c.params.BBStdDev, 'f', -1, 64)},
	})
	if err != nil {
		return absent[model.Bollinger](c, "bollinger", ticker, err)
	}

	var bb model.Bollinger
	for _, band := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{"upper_band", &bb.Upper},
		{"middle_band", &bb.Middle},
		{"lower_band", &bb.Lower},
	} {
		if *band.dst, err = decimalField(row, band.key); err != nil {
			return absent[model.Bollinger](c, "bollinger", ticker, err)
		}
	}
	return model.Some(bb)
}

// MACD fetches the latest MACD line and signal. A missing histogram does not
// invalidate the reading.
func (c *Client) MACD(ctx context.Context, ticker string) model.Value[model.MACD] {
	row, err := c.latest(ctx, "macd", ticker, url.Values{
		"fast_period":   {itoa(c.params.MACDFast)},
		"slow_period":   {itoa(c.params.MACDSlow)},
		"signal_period": {itoa(c.params.MACDSignal)},
	})
	if err != nil {
		return absent[model.MACD](c, "macd", ticker, err)
	}

	var m model.MACD
	if m.Value, err = decimalField(row, "macd"); err != nil {
		return absent[model.MACD](c, "macd", ticker, err)
	}
	if m.Signal, err = decimalField(row, "macd_signal"); err != nil {
		return absent[model.MACD](c, "macd", ticker, err)
	}
	if hist, err := decimalField(row, "macd_hist"); err == nil {
		m.Histogram = model.Some(hist)
	}
	return model.Some(m)
}

// EMASlope fetches the last EMAOutputSize EMA samples and returns newest minus
// oldest.
func (c *Client) EMASlope(ctx context.Context, ticker string) model.Value[decimal.Decimal] {
	values, err := c.series(ctx, "ema", ticker, url.Values{
		"time_period": {itoa(c.params.EMAPeriod)},
		"outputsize":  {itoa(c.params.EMAOutputSize)},
	})
	if err != nil {
		return absent[decimal.Decimal](c, "ema_slope", ticker, err)
	}
	if len(values) < 2 {
		return absent[decimal.Decimal](c, "ema_slope", ticker, fmt.Errorf("need 2 EMA samples, got %d", len(values)))
	}

	newest, err := decimalField(values[0], "ema")
	if err != nil {
		return absent[decimal.Decimal](c, "ema_slope", ticker, err)
	}
	oldest, err := decimalField(values[len(values)-1], "ema")
	if err != nil {
		return absent[decimal.Decimal](c, "ema_slope", ticker, err)
	}
	return model.Some(newest.Sub(oldest))
}

// ADX fetches ADX, +DI and -DI. All three are required.
func (c *Client) ADX(ctx context.Context, ticker string) model.Value[model.ADX] {
	q := url.Values{"time_period": {itoa(c.params.ADXPeriod)}}

	var out model.ADX
	for _, part := range []struct {
		endpoint string
		dst      *float64
	}{
		{"adx", &out.ADX},
		{"plus_di", &out.PlusDI},
		{"minus_di", &out.MinusDI},
	} {
		row, err := c.latest(ctx, part.endpoint, ticker, q)
		if err != nil {
			return absent[model.ADX](c, "adx", ticker, err)
		}
		if *part.dst, err = floatField(row, part.endpoint); err != nil {
			return absent[model.ADX](c, "adx", ticker, err)
		}
	}
	return model.Some(out)
}

// MFI fetches the latest money flow index.
func (c *Client) MFI(ctx context.Context, ticker string) model.Value[float64] {
	row, err := c.latest(ctx, "mfi", ticker, url.Values{"time_period": {itoa(c.params.MFIPeriod)}})
	if err != nil {
		return absent[float64](c, "mfi", ticker, err)
	}
	v, err := floatField(row, "mfi")
	if err != nil {
		return absent[float64](c, "mfi", ticker, err)
	}
	return model.Some(v)
}

// GetCandles fetches count candles, oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol string, interval string, count int) ([]model.Candle, error) {
	body, err := c.get(ctx, "time_series", url.Values{
		"symbol":     {symbol},
		"interval":   {interval},
		"outputsize": {itoa(count)},
	})
	if err != nil {
		return nil, err
	}

	var data TwelveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if len(data.Values) == 0 {
		return nil, ErrNoValues
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]model.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		candles = append(candles, model.Candle{
			Datetime: v.Datetime,
			Open:     v.Open,
			High:     v.High,
			Low:      v.Low,
			Close:    v.Close,
			Volume:   v.Volume,
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// Params returns the indicator parameters the client was built with.
func (c *Client) Params() model.IndicatorParams {
	return c.params
}

// get issues one GET with its own timeout and rejects error envelopes.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	query.Set("apikey", c.apiKey)
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug().Str("endpoint", endpoint).Str("symbol", query.Get("symbol")).Msg("Requesting")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if env.Status == "error" {
		return nil, fmt.Errorf("%w: code %d: %s", ErrProviderStatus, env.Code, env.Message)
	}

	return body, nil
}

// series fetches an indicator series for the configured interval.
func (c *Client) series(ctx context.Context, endpoint, ticker string, query url.Values) ([]map[string]string, error) {
	query.Set("symbol", ticker)
	query.Set("interval", c.params.Interval)

	body, err := c.get(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	var resp seriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrNoValues
	}
	return resp.Values, nil
}

// latest returns the most recent sample of an indicator series.
func (c *Client) latest(ctx context.Context, endpoint, ticker string, query url.Values) (map[string]string, error) {
	// Copy so the caller's query can be reused across endpoints.
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	values, err := c.series(ctx, endpoint, ticker, q)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// absent logs why an indicator is unavailable and returns the absent value.
func absent[T any](c *Client, indicator, ticker string, err error) model.Value[T] {
	c.logger.Warn().Err(err).Str("indicator", indicator).Str("symbol", ticker).Msg("Indicator unavailable")
	if c.observer != nil {
		c.observer.RecordFetchFailure(indicator)
	}
	return model.None[T]()
}

func decimalField(row map[string]string, key string) (decimal.Decimal, error) {
	raw, ok := row[key]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("field %q missing", key)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("field %q: %w", key, err)
	}
	return v, nil
}

func floatField(row map[string]string, key string) (float64, error) {
	raw, ok := row[key]
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return v, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
