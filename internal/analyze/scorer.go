package analyze

import (
	"github.com/Alias1177/StockAuto/internal/model"
)

// Params tunes the scorer. The percentages place the weak and strong cut
// points relative to the largest score the active rules can reach.
type Params struct {
	ADXThreshold  float64
	StrongPercent int
	WeakPercent   int
}

// DefaultParams returns the stock scoring parameters.
func DefaultParams() Params {
	return Params{
		ADXThreshold:  25,
		StrongPercent: 50,
		WeakPercent:   30,
	}
}

// Scorer reduces an indicator snapshot to a composite signal. It holds no
// state besides its parameters and is safe for concurrent use.
type Scorer struct {
	params Params
}

// NewScorer creates a scorer with the given parameters.
func NewScorer(params Params) *Scorer {
	return &Scorer{params: params}
}

// Score evaluates the rule table against the snapshot.
func (sc *Scorer) Score(s model.Snapshot) model.ScoreResult {
	if missing := s.MissingMandatory(); len(missing) > 0 {
		return model.ScoreResult{
			Score:   0,
			Label:   model.LabelInsufficientData,
			Reasons: missing,
		}
	}

	m := s.Momentum()
	result := model.ScoreResult{
		Reasons:  make([]string, 0, len(rules)),
		Outcomes: make([]model.RuleOutcome, 0, len(rules)),
	}

	for _, r := range rules {
		if !r.active(s, m) {
			continue
		}
		result.MaxMagnitude += r.weight

		contribution, reason := r.eval(s, m, sc.params)
		outcome := model.RuleOutcome{
			Name:      r.name,
			Weight:    contribution,
			Triggered: contribution != 0,
			Reason:    reason,
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Triggered {
			result.Score += contribution
			result.Reasons = append(result.Reasons, reason)
		}
	}

	result.Label = Classify(result.Score, result.MaxMagnitude, sc.params)
	return result
}

// Thresholds returns the weak and strong cut points for a rule set whose
// largest attainable magnitude is maxMagnitude. Both are rounded up so that
// e.g. 50% of 5 needs a score of 3. The strong cut always sits above the weak
// one.
func Thresholds(maxMagnitude int, p Params) (weak, strong int) {
	weak = ceilPercent(maxMagnitude, p.WeakPercent)
	if weak < 1 {
		weak = 1
	}
	strong = ceilPercent(maxMagnitude, p.StrongPercent)
	if strong <= weak {
		strong = weak + 1
	}
	return weak, strong
}

// Classify maps a score onto the five symmetric labels.
func Classify(score, maxMagnitude int, p Params) model.Label {
	weak, strong := Thresholds(maxMagnitude, p)

	magnitude := score
	if magnitude < 0 {
		magnitude = -magnitude
	}

	switch {
	case magnitude >= strong && score > 0:
		return model.LabelStrongBuy
	case magnitude >= strong:
		return model.LabelStrongSell
	case magnitude >= weak && score > 0:
		return model.LabelWeakBuy
	case magnitude >= weak:
		return model.LabelWeakSell
	default:
		return model.LabelHold
	}
}

func ceilPercent(n, percent int) int {
	if n <= 0 || percent <= 0 {
		return 0
	}
	return (n*percent + 99) / 100
}
