package indicator

import "math"

// SMA calculates the Simple Moving Average, aligned with the input. The first
// period-1 positions are Missing. Uses a running sum rather than rescanning
// the window.
func SMA(values []float64, period int) []float64 {
	result := missingSlice(len(values))
	if period <= 0 || len(values) < period {
		return result
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	result[period-1] = sum / float64(period)

	for i := period; i < len(values); i++ {
		sum = sum - values[i-period] + values[i]
		result[i] = sum / float64(period)
	}

	return result
}

// EMA calculates the Exponential Moving Average, aligned with the input and
// seeded with the SMA of the first window.
func EMA(values []float64, period int) []float64 {
	result := missingSlice(len(values))
	if period <= 0 || len(values) < period {
		return result
	}

	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	ema := sum / float64(period)
	result[period-1] = ema

	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		result[i] = ema
	}

	return result
}

// Rolling standard deviation over a fixed window, aligned with the input.
func rollingStd(values []float64, period int) []float64 {
	result := missingSlice(len(values))
	if period <= 1 || len(values) < period {
		return result
	}

	means := SMA(values, period)
	for i := period - 1; i < len(values); i++ {
		mean := means[i]
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		result[i] = math.Sqrt(variance / float64(period-1))
	}
	return result
}

func missingSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = Missing
	}
	return s
}
