package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/StockAuto/internal/model"
)

const notAvailable = "n/a"

// FormatReport renders a scored ticker as the multi-line operator message.
// Absent readings are shown as n/a.
func FormatReport(r model.Report, loc *time.Location) string {
	s := r.Snapshot

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s (%s)\n", r.Ticker, stamp(r.Time, loc))
	fmt.Fprintf(&b, "Decision: %s\n", r.Result.Label.Display())
	fmt.Fprintf(&b, "Score: %d\n", r.Result.Score)
	fmt.Fprintf(&b, "Price: %s\n", decimalText(s.Price))
	fmt.Fprintf(&b, "RSI: %s\n", floatText(s.RSI))
	fmt.Fprintf(&b, "SMA: %s\n", decimalText(s.SMA))
	fmt.Fprintf(&b, "MACD: %s\n", macdText(s.MACD))
	fmt.Fprintf(&b, "EMA slope: %s\n", slopeText(s.EMASlope))
	fmt.Fprintf(&b, "BB: %s\n", bollingerText(s.Bollinger))
	fmt.Fprintf(&b, "ADX: %s\n", adxText(s.ADX))
	fmt.Fprintf(&b, "MFI: %s", floatText(s.MFI))
	if len(r.Result.Reasons) > 0 {
		fmt.Fprintf(&b, "\nReasons: %s", strings.Join(r.Result.Reasons, ", "))
	}
	return b.String()
}

// FormatSkipped renders the short notice sent when a ticker could not be
// scored.
func FormatSkipped(r model.Report, loc *time.Location) string {
	return fmt.Sprintf("⚠️ %s (%s) skipped: missing %s",
		r.Ticker, stamp(r.Time, loc), strings.Join(r.Result.Reasons, ", "))
}

func stamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02 15:04 MST")
}

func decimalText(v model.Value[decimal.Decimal]) string {
	d, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return d.StringFixed(2)
}

func slopeText(v model.Value[decimal.Decimal]) string {
	d, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return d.StringFixed(4)
}

func floatText(v model.Value[float64]) string {
	f, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f", f)
}

func macdText(v model.Value[model.MACD]) string {
	m, ok := v.Get()
	if !ok {
		return notAvailable
	}
	hist := notAvailable
	if h, ok := m.Histogram.Get(); ok {
		hist = h.StringFixed(4)
	}
	return fmt.Sprintf("%s / signal %s / hist %s", m.Value.StringFixed(4), m.Signal.StringFixed(4), hist)
}

func bollingerText(v model.Value[model.Bollinger]) string {
	bb, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%s / %s / %s", bb.Upper.StringFixed(2), bb.Middle.StringFixed(2), bb.Lower.StringFixed(2))
}

func adxText(v model.Value[model.ADX]) string {
	a, ok := v.Get()
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%.2f (+DI %.2f, -DI %.2f)", a.ADX, a.PlusDI, a.MinusDI)
}
