package indicator

// Bands holds aligned Bollinger band series.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger calculates Bollinger bands: a period SMA middle band with upper
// and lower bands k standard deviations away.
func Bollinger(values []float64, period int, k float64) Bands {
	middle := SMA(values, period)
	std := rollingStd(values, period)

	upper := missingSlice(len(values))
	lower := missingSlice(len(values))
	for i := range values {
		if IsMissing(middle[i]) || IsMissing(std[i]) {
			continue
		}
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}

	return Bands{Middle: middle, Upper: upper, Lower: lower}
}
