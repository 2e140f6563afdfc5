package analyze

import (
	"github.com/Alias1177/StockAuto/internal/model"
)

// rule is one row of the scoring table. weight is the largest magnitude the
// rule can contribute; active decides whether the rule's inputs are present
// for a snapshot, and only active rules count towards the attainable range.
type rule struct {
	name   string
	weight int
	active func(s model.Snapshot, m model.Momentum) bool
	eval   func(s model.Snapshot, m model.Momentum, p Params) (int, string)
}

// rules is evaluated top to bottom; the order fixes the order of reasons.
var rules = []rule{
	{name: "rsi", weight: 2, active: always, eval: evalRSI},
	{name: "macd_cross", weight: 1, active: hasMACD, eval: evalMACDCross},
	{name: "macd_histogram", weight: 1, active: hasHistogram, eval: evalMACDHistogram},
	{name: "ema_slope", weight: 1, active: hasEMASlope, eval: evalEMASlope},
	{name: "trend", weight: 1, active: always, eval: evalTrend},
	{name: "bollinger", weight: 1, active: always, eval: evalBollinger},
	{name: "adx", weight: 1, active: hasADX, eval: evalADX},
	{name: "mfi", weight: 1, active: hasMFI, eval: evalMFI},
}

func always(model.Snapshot, model.Momentum) bool { return true }

func hasMACD(_ model.Snapshot, m model.Momentum) bool {
	return m.Kind == model.MomentumMACD
}

func hasHistogram(_ model.Snapshot, m model.Momentum) bool {
	return m.Kind == model.MomentumMACD && m.MACD.Histogram.Present()
}

// EMA slope only stands in for MACD, never alongside it.
func hasEMASlope(_ model.Snapshot, m model.Momentum) bool {
	return m.Kind == model.MomentumEMASlope
}

func hasADX(s model.Snapshot, _ model.Momentum) bool { return s.ADX.Present() }

func hasMFI(s model.Snapshot, _ model.Momentum) bool { return s.MFI.Present() }

func evalRSI(s model.Snapshot, _ model.Momentum, _ Params) (int, string) {
	rsi, _ := s.RSI.Get()
	switch {
	case rsi < 30:
		return 2, "RSI oversold +2"
	case rsi < 40:
		return 1, "RSI low +1"
	case rsi > 70:
		return -2, "RSI overbought -2"
	case rsi > 60:
		return -1, "RSI high -1"
	}
	return 0, ""
}

func evalMACDCross(_ model.Snapshot, m model.Momentum, _ Params) (int, string) {
	if m.MACD.Value.GreaterThan(m.MACD.Signal) {
		return 1, "MACD bullish +1"
	}
	return -1, "MACD bearish -1"
}

func evalMACDHistogram(_ model.Snapshot, m model.Momentum, _ Params) (int, string) {
	hist, _ := m.MACD.Histogram.Get()
	switch hist.Sign() {
	case 1:
		return 1, "MACD histogram positive +1"
	case -1:
		return -1, "MACD histogram negative -1"
	}
	return 0, ""
}

func evalEMASlope(_ model.Snapshot, m model.Momentum, _ Params) (int, string) {
	switch m.Slope.Sign() {
	case 1:
		return 1, "EMA up +1 (fallback)"
	case -1:
		return -1, "EMA down -1 (fallback)"
	}
	return 0, ""
}

// Equality counts as below: the trend rule has no neutral outcome.
func evalTrend(s model.Snapshot, _ model.Momentum, _ Params) (int, string) {
	price, _ := s.Price.Get()
	sma, _ := s.SMA.Get()
	if price.GreaterThan(sma) {
		return 1, "Price above SMA +1"
	}
	return -1, "Price below SMA -1"
}

func evalBollinger(s model.Snapshot, _ model.Momentum, _ Params) (int, string) {
	price, _ := s.Price.Get()
	bb, _ := s.Bollinger.Get()
	switch {
	case price.GreaterThanOrEqual(bb.Upper):
		return -1, "Near upper band -1"
	case price.LessThanOrEqual(bb.Lower):
		return 1, "Near lower band +1"
	}
	return 0, ""
}

func evalADX(s model.Snapshot, _ model.Momentum, p Params) (int, string) {
	adx, _ := s.ADX.Get()
	if adx.ADX <= p.ADXThreshold {
		return 0, "ADX trend weak"
	}
	switch {
	case adx.PlusDI > adx.MinusDI:
		return 1, "ADX strong uptrend +1"
	case adx.MinusDI > adx.PlusDI:
		return -1, "ADX strong downtrend -1"
	}
	return 0, "ADX strong trend, no direction"
}

func evalMFI(s model.Snapshot, _ model.Momentum, _ Params) (int, string) {
	mfi, _ := s.MFI.Get()
	switch {
	case mfi < 20:
		return 1, "MFI oversold +1"
	case mfi > 80:
		return -1, "MFI overbought -1"
	}
	return 0, ""
}
