package shared

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Candlestick represents a unit candlestick for a market.
type Candlestick struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	// Timestamp is the candle open time in UTC and is the natural key of
	// the candle within its series.
	Timestamp time.Time

	// Metadata fields.
	Symbol    string
	Timeframe Timeframe
}

// ParseCandlesticks parses candlesticks from the provided exchange kline rows.
// Each row is a json array of the form:
//
//	[openTimeMs, "open", "high", "low", "close", "volume", closeTimeMs, ...]
//
// Open times are milliseconds since epoch and are converted to UTC instants.
func ParseCandlesticks(data []gjson.Result, symbol string, timeframe Timeframe) ([]Candlestick, error) {
	candles := make([]Candlestick, 0, len(data))

	for idx := range data {
		row := data[idx].Array()
		if len(row) < 6 {
			return nil, fmt.Errorf("malformed kline row %d: expected at least 6 fields, got %d",
				idx, len(row))
		}

		var candle Candlestick

		candle.Timestamp = time.UnixMilli(row[0].Int()).UTC()
		candle.Open = row[1].Float()
		candle.High = row[2].Float()
		candle.Low = row[3].Float()
		candle.Close = row[4].Float()
		candle.Volume = row[5].Float()

		candle.Symbol = symbol
		candle.Timeframe = timeframe

		candles = append(candles, candle)
	}

	return candles, nil
}
