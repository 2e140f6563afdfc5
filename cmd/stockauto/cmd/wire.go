package cmd

import (
	"github.com/Alias1177/StockAuto/internal/api/twelvedata"
	"github.com/Alias1177/StockAuto/internal/config"
	"github.com/Alias1177/StockAuto/internal/scheduler"
)

// newSource builds the snapshot source for the configured provider mode.
func newSource(c *config.Config, observer twelvedata.FailureObserver) scheduler.SnapshotSource {
	client := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:            c.Provider.APIKey,
		BaseURL:           c.Provider.BaseURL,
		RequestTimeout:    c.Provider.RequestTimeout,
		RequestsPerMinute: c.Provider.RequestsPerMinute,
		MaxRetries:        c.Provider.MaxRetries,
		Params:            c.IndicatorParams(),
		Observer:          observer,
	})

	if c.Provider.Mode == config.ModeCandles {
		return twelvedata.NewCandleSource(client, c.Provider.CandleCount)
	}
	return client
}
