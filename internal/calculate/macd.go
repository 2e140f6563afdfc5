package calculate

// MACD returns the MACD line, its signal line and the histogram.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram float64, ok bool) {
	if fastPeriod <= 0 || fastPeriod >= slowPeriod || signalPeriod <= 0 {
		return 0, 0, 0, false
	}
	// Cannot calculate MACD with insufficient data
	if len(closes) < slowPeriod+signalPeriod-1 {
		return 0, 0, 0, false
	}

	fast := EMASeries(closes, fastPeriod)
	slow := EMASeries(closes, slowPeriod)

	// Align the fast series with the slow one; both end at the last close.
	fast = fast[len(fast)-len(slow):]
	line := make([]float64, len(slow))
	for i := range slow {
		line[i] = fast[i] - slow[i]
	}

	signalSeries := EMASeries(line, signalPeriod)
	if len(signalSeries) == 0 {
		return 0, 0, 0, false
	}

	macd = line[len(line)-1]
	signal = signalSeries[len(signalSeries)-1]
	return macd, signal, macd - signal, true
}
