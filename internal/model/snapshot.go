package model

import "github.com/shopspring/decimal"

// Mandatory field names, in the order they are reported when missing.
const (
	FieldPrice     = "price"
	FieldSMA       = "sma"
	FieldRSI       = "rsi"
	FieldBollinger = "bollinger"
)

// Bollinger holds the three bands of a Bollinger envelope.
type Bollinger struct {
	Upper  decimal.Decimal `json:"upper"`
	Middle decimal.Decimal `json:"middle"`
	Lower  decimal.Decimal `json:"lower"`
}

// MACD holds the MACD line, its signal line and the optional histogram.
type MACD struct {
	Value     decimal.Decimal        `json:"value"`
	Signal    decimal.Decimal        `json:"signal"`
	Histogram Value[decimal.Decimal] `json:"histogram"`
}

// ADX holds trend strength together with the directional indicators.
type ADX struct {
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`
}

// Snapshot is the full set of indicator readings for one ticker at one
// scoring instant. It is built once per ticker per cycle and never mutated.
type Snapshot struct {
	Ticker    string                 `json:"ticker"`
	Price     Value[decimal.Decimal] `json:"price"`
	SMA       Value[decimal.Decimal] `json:"sma"`
	RSI       Value[float64]         `json:"rsi"`
	Bollinger Value[Bollinger]       `json:"bollinger"`
	MACD      Value[MACD]            `json:"macd"`
	EMASlope  Value[decimal.Decimal] `json:"ema_slope"`
	ADX       Value[ADX]             `json:"adx"`
	MFI       Value[float64]         `json:"mfi"`
}

// MissingMandatory names every mandatory field that is absent.
func (s Snapshot) MissingMandatory() []string {
	var missing []string
	if !s.Price.Present() {
		missing = append(missing, FieldPrice)
	}
	if !s.SMA.Present() {
		missing = append(missing, FieldSMA)
	}
	if !s.RSI.Present() {
		missing = append(missing, FieldRSI)
	}
	if !s.Bollinger.Present() {
		missing = append(missing, FieldBollinger)
	}
	return missing
}

// MomentumKind tags which momentum input a snapshot carries.
type MomentumKind int

const (
	MomentumNone MomentumKind = iota
	MomentumMACD
	MomentumEMASlope
)

func (k MomentumKind) String() string {
	switch k {
	case MomentumMACD:
		return "macd"
	case MomentumEMASlope:
		return "ema_slope"
	default:
		return "none"
	}
}

// Momentum is the momentum input chosen for a snapshot: MACD when present,
// otherwise the EMA slope fallback. Exactly one of MACD or Slope is meaningful.
type Momentum struct {
	Kind  MomentumKind
	MACD  MACD
	Slope decimal.Decimal
}

// Momentum resolves the MACD/EMA-slope choice for the snapshot.
func (s Snapshot) Momentum() Momentum {
	if m, ok := s.MACD.Get(); ok {
		return Momentum{Kind: MomentumMACD, MACD: m}
	}
	if slope, ok := s.EMASlope.Get(); ok {
		return Momentum{Kind: MomentumEMASlope, Slope: slope}
	}
	return Momentum{Kind: MomentumNone}
}
