package calculate

// EMASeries returns the exponential moving average for every index from
// period-1 onward, seeded with the SMA of the first period prices.
func EMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}

	multiplier := 2.0 / float64(period+1)

	series := make([]float64, 0, len(prices)-period+1)
	ema := average(prices[:period])
	series = append(series, ema)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		series = append(series, ema)
	}
	return series
}

// EMA returns the latest exponential moving average.
func EMA(prices []float64, period int) (float64, bool) {
	series := EMASeries(prices, period)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// EMASlope returns the newest EMA minus the oldest of the last lookback EMA
// samples. Fewer than two samples yield no slope.
func EMASlope(prices []float64, period, lookback int) (float64, bool) {
	series := EMASeries(prices, period)
	if lookback > 0 && len(series) > lookback {
		series = series[len(series)-lookback:]
	}
	if len(series) < 2 {
		return 0, false
	}
	return series[len(series)-1] - series[0], true
}
