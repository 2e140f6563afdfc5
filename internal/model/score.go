package model

import (
	"strings"
	"time"
)

// Label is the discrete outcome of scoring a snapshot.
type Label string

const (
	LabelStrongBuy        Label = "STRONG_BUY"
	LabelWeakBuy          Label = "WEAK_BUY"
	LabelHold             Label = "HOLD"
	LabelWeakSell         Label = "WEAK_SELL"
	LabelStrongSell       Label = "STRONG_SELL"
	LabelInsufficientData Label = "INSUFFICIENT_DATA"
)

// Actionable reports whether the label should reach the operator.
func (l Label) Actionable() bool {
	return l != LabelHold && l != LabelInsufficientData && l != ""
}

// Display renders the label for humans, e.g. "STRONG BUY".
func (l Label) Display() string {
	return strings.ReplaceAll(string(l), "_", " ")
}

// RuleOutcome is one evaluated rule. Triggered rules contribute Weight to the
// score and their Reason to ScoreResult.Reasons; untriggered rules may still
// carry a note, e.g. "ADX trend weak".
type RuleOutcome struct {
	Name      string `json:"name"`
	Weight    int    `json:"weight"`
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason,omitempty"`
}

// ScoreResult is the composite signal for one snapshot.
type ScoreResult struct {
	Score        int           `json:"score"`
	Label        Label         `json:"label"`
	Reasons      []string      `json:"reasons"`
	MaxMagnitude int           `json:"max_magnitude"`
	Outcomes     []RuleOutcome `json:"outcomes,omitempty"`
}

// Report ties a scored snapshot to the cycle that produced it.
type Report struct {
	CycleID  string      `json:"cycle_id"`
	Ticker   string      `json:"ticker"`
	Time     time.Time   `json:"time"`
	Snapshot Snapshot    `json:"snapshot"`
	Result   ScoreResult `json:"result"`
}
