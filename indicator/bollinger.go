package indicator

import "math"

// BollingerBands computes volatility bands around a simple moving average of
// the provided closing prices, returning the upper, middle and lower bands.
//
// The middle band is the trailing simple moving average over period rows and
// is undefined until period observations exist. The bands sit k sample
// standard deviations (one degree of freedom subtracted) above and below it.
func BollingerBands(closes []float64, period int, k float64) ([]float64, []float64, []float64) {
	upper := make([]float64, len(closes))
	middle := make([]float64, len(closes))
	lower := make([]float64, len(closes))

	for i := range closes {
		if i < period-1 {
			upper[i] = math.NaN()
			middle[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}

		window := closes[i-period+1 : i+1]

		var sum float64
		for idx := range window {
			sum += window[idx]
		}
		mean := sum / float64(period)

		std := math.NaN()
		if period > 1 {
			var squares float64
			for idx := range window {
				diff := window[idx] - mean
				squares += diff * diff
			}
			std = math.Sqrt(squares / float64(period-1))
		}

		middle[i] = mean
		upper[i] = mean + k*std
		lower[i] = mean - k*std
	}

	return upper, middle, lower
}
