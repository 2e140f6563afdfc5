package calculate

import (
	"math"

	"github.com/Alias1177/StockAuto/internal/model"
)

// ADX computes the average directional index with +DI and -DI using Wilder
// smoothing. It needs at least 2*period candles.
func ADX(candles []model.Candle, period int) (adx, plusDI, minusDI float64, ok bool) {
	if period <= 0 || len(candles) < period*2 {
		return 0, 0, 0, false
	}

	// Calculate +DM, -DM, and TR for each period
	n := len(candles) - 1
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	trueRange := make([]float64, n)

	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}

		tr1 := candles[i].High - candles[i].Low
		tr2 := math.Abs(candles[i].High - candles[i-1].Close)
		tr3 := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRange[i-1] = math.Max(tr1, math.Max(tr2, tr3))
	}

	var smoothedPlusDM, smoothedMinusDM, smoothedTR float64
	for i := 0; i < period; i++ {
		smoothedPlusDM += plusDM[i]
		smoothedMinusDM += minusDM[i]
		smoothedTR += trueRange[i]
	}

	plusDI, minusDI = directional(smoothedPlusDM, smoothedMinusDM, smoothedTR)
	adx = dx(plusDI, minusDI)

	for i := period; i < n; i++ {
		smoothedPlusDM = smoothedPlusDM - (smoothedPlusDM / float64(period)) + plusDM[i]
		smoothedMinusDM = smoothedMinusDM - (smoothedMinusDM / float64(period)) + minusDM[i]
		smoothedTR = smoothedTR - (smoothedTR / float64(period)) + trueRange[i]

		plusDI, minusDI = directional(smoothedPlusDM, smoothedMinusDM, smoothedTR)

		// ADX is smoothed DX
		adx = ((float64(period-1) * adx) + dx(plusDI, minusDI)) / float64(period)
	}

	return adx, plusDI, minusDI, true
}

func directional(plusDM, minusDM, tr float64) (float64, float64) {
	if tr == 0 {
		return 0, 0
	}
	return plusDM / tr * 100, minusDM / tr * 100
}

func dx(plusDI, minusDI float64) float64 {
	if plusDI+minusDI == 0 {
		return 0
	}
	return math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
}
