package indicator

// MACD computes the moving average convergence divergence of the provided
// closing prices, returning the macd line, the signal line and the histogram.
//
// All three series share the EMA recurrence and are technically defined from
// row 0, but are numerically meaningless until roughly slow+signal rows have
// elapsed.
func MACD(closes []float64, fastPeriod int, slowPeriod int, signalPeriod int) ([]float64, []float64, []float64) {
	fastEMA := EMA(closes, fastPeriod)
	slowEMA := EMA(closes, slowPeriod)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signal := EMA(macd, signalPeriod)

	histogram := make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signal[i]
	}

	return macd, signal, histogram
}
