package model

// IndicatorParams holds the provider sampling interval and per-indicator
// periods shared by every indicator source.
type IndicatorParams struct {
	Interval      string
	SMAPeriod     int
	RSIPeriod     int
	EMAPeriod     int
	EMAOutputSize int
	MACDFast      int
	MACDSlow      int
	MACDSignal    int
	BBPeriod      int
	BBStdDev      float64
	ADXPeriod     int
	MFIPeriod     int
	EnableADX     bool
	EnableMFI     bool
}

// DefaultIndicatorParams returns the classic textbook periods.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		Interval:      "15min",
		SMAPeriod:     20,
		RSIPeriod:     14,
		EMAPeriod:     20,
		EMAOutputSize: 30,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		BBPeriod:      20,
		BBStdDev:      2,
		ADXPeriod:     14,
		MFIPeriod:     14,
	}
}
