// Package calculate derives indicator readings locally from a candle series.
package calculate

import (
	"github.com/shopspring/decimal"

	"github.com/Alias1177/StockAuto/internal/model"
)

// BuildSnapshot computes a snapshot from candles ordered oldest first. Any
// indicator without enough history is left absent.
func BuildSnapshot(ticker string, candles []model.Candle, p model.IndicatorParams) model.Snapshot {
	snap := model.Snapshot{Ticker: ticker}
	if len(candles) == 0 {
		return snap
	}

	closes := model.Closes(candles)
	snap.Price = model.Some(decimal.NewFromFloat(closes[len(closes)-1]))

	if sma, ok := SMA(closes, p.SMAPeriod); ok {
		snap.SMA = model.Some(decimal.NewFromFloat(sma))
	}
	if rsi, ok := RSI(closes, p.RSIPeriod); ok {
		snap.RSI = model.Some(rsi)
	}
	if upper, middle, lower, ok := BollingerBands(closes, p.BBPeriod, p.BBStdDev); ok {
		snap.Bollinger = model.Some(model.Bollinger{
			Upper:  decimal.NewFromFloat(upper),
			Middle: decimal.NewFromFloat(middle),
			Lower:  decimal.NewFromFloat(lower),
		})
	}
	if macd, signal, hist, ok := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal); ok {
		snap.MACD = model.Some(model.MACD{
			Value:     decimal.NewFromFloat(macd),
			Signal:    decimal.NewFromFloat(signal),
			Histogram: model.Some(decimal.NewFromFloat(hist)),
		})
	} else if slope, ok := EMASlope(closes, p.EMAPeriod, p.EMAOutputSize); ok {
		snap.EMASlope = model.Some(decimal.NewFromFloat(slope))
	}
	if p.EnableADX {
		if adx, plusDI, minusDI, ok := ADX(candles, p.ADXPeriod); ok {
			snap.ADX = model.Some(model.ADX{ADX: adx, PlusDI: plusDI, MinusDI: minusDI})
		}
	}
	if p.EnableMFI {
		if mfi, ok := MFI(candles, p.MFIPeriod); ok {
			snap.MFI = model.Some(mfi)
		}
	}

	return snap
}
