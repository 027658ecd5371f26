package indicator

import "github.com/dnldd/harvest/shared"

// Default indicator parameters.
const (
	EMA12Period      = 12
	EMA26Period      = 26
	EMA50Period      = 50
	EMA200Period     = 200
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	RSIPeriod        = 14
	BollingerPeriod  = 20
	BollingerK       = 2.0
)

// Column represents a named indicator column aligned 1:1 with a candle series
// by position.
type Column struct {
	Name   string
	Values []float64
}

// Dataset represents a candle series with its derived indicator columns.
type Dataset struct {
	Candles []shared.Candlestick

	EMA12  []float64
	EMA26  []float64
	EMA50  []float64
	EMA200 []float64

	MACD          []float64
	MACDSignal    []float64
	MACDHistogram []float64

	RSI []float64

	BBUpper  []float64
	BBMiddle []float64
	BBLower  []float64
}

// Columns returns the indicator columns of the dataset in their canonical
// persistence order.
func (ds *Dataset) Columns() []Column {
	return []Column{
		{Name: "ema_12", Values: ds.EMA12},
		{Name: "ema_26", Values: ds.EMA26},
		{Name: "ema_50", Values: ds.EMA50},
		{Name: "ema_200", Values: ds.EMA200},
		{Name: "macd", Values: ds.MACD},
		{Name: "macd_signal", Values: ds.MACDSignal},
		{Name: "macd_histogram", Values: ds.MACDHistogram},
		{Name: "rsi", Values: ds.RSI},
		{Name: "bb_upper", Values: ds.BBUpper},
		{Name: "bb_middle", Values: ds.BBMiddle},
		{Name: "bb_lower", Values: ds.BBLower},
	}
}

// AddAllIndicators computes all indicator columns against the closing prices
// of the provided candle series. The series itself is never mutated.
func AddAllIndicators(candles []shared.Candlestick) *Dataset {
	closes := make([]float64, len(candles))
	for idx := range candles {
		closes[idx] = candles[idx].Close
	}

	ds := &Dataset{
		Candles: candles,
		EMA12:   EMA(closes, EMA12Period),
		EMA26:   EMA(closes, EMA26Period),
		EMA50:   EMA(closes, EMA50Period),
		EMA200:  EMA(closes, EMA200Period),
		RSI:     RSI(closes, RSIPeriod),
	}

	ds.MACD, ds.MACDSignal, ds.MACDHistogram = MACD(closes, MACDFastPeriod,
		MACDSlowPeriod, MACDSignalPeriod)
	ds.BBUpper, ds.BBMiddle, ds.BBLower = BollingerBands(closes, BollingerPeriod, BollingerK)

	return ds
}
