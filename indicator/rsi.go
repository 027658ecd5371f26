package indicator

import "math"

// RSI computes the relative strength index of the provided closing prices.
//
// Row 0 is undefined since it has no prior close to diff against. Gains and
// losses are smoothed independently with the EMA recurrence. A smoothed loss
// of exactly zero yields an RSI of exactly 100 rather than a division fault,
// so flat and all-gain series report 100 past the first row.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		switch {
		case delta > 0:
			gains[i] = delta
		case delta < 0:
			losses[i] = -delta
		}
	}

	avgGains := EMA(gains, period)
	avgLosses := EMA(losses, period)

	out[0] = math.NaN()
	for i := 1; i < len(closes); i++ {
		if avgLosses[i] == 0 {
			out[i] = 100
			continue
		}

		rs := avgGains[i] / avgLosses[i]
		out[i] = 100 - 100/(1+rs)
	}

	return out
}
