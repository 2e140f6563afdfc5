package calculate

import "math"

// BollingerBands calculates the bands over the last period closes using the
// population standard deviation.
func BollingerBands(closes []float64, period int, stdDev float64) (upper, middle, lower float64, ok bool) {
	if period <= 0 || len(closes) < period {
		return 0, 0, 0, false
	}

	window := closes[len(closes)-period:]
	middle = average(window)

	var variance float64
	for _, c := range window {
		variance += math.Pow(c-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	upper = middle + (sd * stdDev)
	lower = middle - (sd * stdDev)

	return upper, middle, lower, true
}
