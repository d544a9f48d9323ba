package indicator

// RSI calculates the Relative Strength Index from close-price deltas: the
// rolling mean of positive deltas over the rolling mean of negative deltas,
// both over the same window. A zero average loss yields RSI = 100 rather than
// a division error. The first period positions are Missing (a window of
// deltas needs period+1 closes).
func RSI(closes []float64, period int) []float64 {
	result := missingSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return result
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		gainSum += gains[i]
		lossSum += losses[i]
	}

	for i := period; i < len(closes); i++ {
		if i > period {
			gainSum += gains[i] - gains[i-period]
			lossSum += losses[i] - losses[i-period]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)

		if avgLoss == 0 {
			result[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		result[i] = 100 - 100/(1+rs)
	}

	return result
}
