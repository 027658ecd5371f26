package indicator

// EMA computes the exponential moving average of the provided values.
//
// The recurrence is seeded with the first value itself and applies
// ema[i] = ema[i-1] + alpha*(value[i] - ema[i-1]) with alpha = 2/(period+1).
// Every row is defined, early rows are biased toward the seed and converge
// over roughly period rows. MACD and the RSI gain/loss smoothing reuse this
// exact recurrence to keep the numerics consistent across indicators.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	alpha := 2 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}

	return out
}
