package twelvedata

import (
	"context"

	"github.com/Alias1177/StockAuto/internal/calculate"
	"github.com/Alias1177/StockAuto/internal/model"
)

// defaultCandleCount covers the slowest indicator (MACD 26+9) with room for
// Wilder smoothing to settle.
const defaultCandleCount = 100

// CandleSource builds snapshots from a single time_series request per ticker
// and computes the indicators locally.
type CandleSource struct {
	client *Client
	count  int
}

// NewCandleSource wraps client. A count of zero uses the default history size.
func NewCandleSource(client *Client, count int) *CandleSource {
	if count <= 0 {
		count = defaultCandleCount
	}
	return &CandleSource{client: client, count: count}
}

// BuildSnapshot fetches candles for ticker and derives every indicator from
// them. A failed fetch yields a snapshot with nothing present.
func (s *CandleSource) BuildSnapshot(ctx context.Context, ticker string) model.Snapshot {
	params := s.client.Params()
	candles, err := s.client.GetCandles(ctx, ticker, params.Interval, s.count)
	if err != nil {
		s.client.logger.Warn().Err(err).Str("symbol", ticker).Msg("Candle fetch failed")
		if s.client.observer != nil {
			s.client.observer.RecordFetchFailure("time_series")
		}
		return model.Snapshot{Ticker: ticker}
	}
	return calculate.BuildSnapshot(ticker, candles, params)
}
