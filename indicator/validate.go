package indicator

import (
	"math"
	"strings"

	"github.com/rs/zerolog"
)

// ValidateDataset checks range and ordering invariants on the computed
// indicator columns.
//
// The validation fails only when a required indicator column is absent or
// misaligned with the candle series. Out-of-range RSI values, inverted
// bollinger bands and warm-up row counts are reported as diagnostics.
func ValidateDataset(ds *Dataset, logger *zerolog.Logger) bool {
	rows := len(ds.Candles)

	var absent []string
	for _, col := range ds.Columns() {
		if col.Values == nil || len(col.Values) != rows {
			absent = append(absent, col.Name)
		}
	}
	if len(absent) > 0 {
		logger.Error().Msgf("indicator validation failed: missing columns: %s",
			strings.Join(absent, ", "))
		return false
	}

	var outOfRange int
	for idx := range ds.RSI {
		val := ds.RSI[idx]
		if math.IsNaN(val) {
			continue
		}
		if val < 0 || val > 100 {
			outOfRange++
		}
	}
	if outOfRange > 0 {
		logger.Warn().Msgf("indicator validation: %d rsi values outside [0,100]", outOfRange)
	}

	var invertedBands int
	for idx := 0; idx < rows; idx++ {
		upper, middle, lower := ds.BBUpper[idx], ds.BBMiddle[idx], ds.BBLower[idx]
		if math.IsNaN(upper) || math.IsNaN(middle) || math.IsNaN(lower) {
			continue
		}
		if upper < middle || middle < lower {
			invertedBands++
		}
	}
	if invertedBands > 0 {
		logger.Warn().Msgf("indicator validation: %d inverted bollinger band rows", invertedBands)
	}

	for _, col := range ds.Columns() {
		var undefined int
		for idx := range col.Values {
			if math.IsNaN(col.Values[idx]) {
				undefined++
			}
		}
		if undefined > 0 {
			logger.Info().Msgf("indicator %s: %d undefined warm-up values (%.2f%%)",
				col.Name, undefined, float64(undefined)/float64(rows)*100)
		}
	}

	logger.Info().Msgf("indicator validation completed for %d rows", rows)

	return true
}
