package calculate

import "github.com/Alias1177/StockAuto/internal/model"

// MFI computes the money flow index over the last period candles. Candles
// without volume make the index meaningless, so any zero volume in the
// window yields no value.
func MFI(candles []model.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period+1 {
		return 0, false
	}

	typical := func(c model.Candle) float64 { return (c.High + c.Low + c.Close) / 3 }

	var positive, negative float64
	for i := len(candles) - period; i < len(candles); i++ {
		if candles[i].Volume == 0 {
			return 0, false
		}
		tp := typical(candles[i])
		prev := typical(candles[i-1])
		flow := tp * float64(candles[i].Volume)
		switch {
		case tp > prev:
			positive += flow
		case tp < prev:
			negative += flow
		}
	}

	if negative == 0 {
		return 100, true
	}
	ratio := positive / negative
	return 100 - 100/(1+ratio), true
}
