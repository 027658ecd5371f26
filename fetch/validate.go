package fetch

import (
	"math"

	"github.com/dnldd/harvest/shared"
	"github.com/rs/zerolog"
)

// ValidateCandles checks structural and logical invariants over the provided
// candle series and reports violations without mutating the series.
//
// An empty series, a missing timestamp or a non-positive price fails the
// validation. Missing values, OHLC logic violations and duplicate timestamps
// are reported as diagnostics and do not change the result.
func ValidateCandles(candles []shared.Candlestick, logger *zerolog.Logger) bool {
	if len(candles) == 0 {
		logger.Error().Msg("candle validation failed: empty series")
		return false
	}

	for idx := range candles {
		if candles[idx].Timestamp.IsZero() {
			logger.Error().Msgf("candle validation failed: candle %d has no timestamp", idx)
			return false
		}
	}

	var missing int
	for idx := range candles {
		candle := &candles[idx]
		fields := []float64{candle.Open, candle.High, candle.Low, candle.Close, candle.Volume}
		for k := range fields {
			if math.IsNaN(fields[k]) {
				missing++
			}
		}
	}
	if missing > 0 {
		logger.Warn().Msgf("candle validation: %d missing values found", missing)
	}

	for idx := range candles {
		candle := &candles[idx]
		// NaN prices fail no comparison here, they are counted as missing
		// values above instead.
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			logger.Error().Msgf("candle validation failed: candle %d at %s has a non-positive price",
				idx, candle.Timestamp.Format(shared.DateLayout))
			return false
		}
	}

	var invalidOHLC int
	for idx := range candles {
		candle := &candles[idx]
		if candle.High < candle.Low || candle.High < candle.Open || candle.High < candle.Close {
			invalidOHLC++
		}
		if candle.Low > candle.Open || candle.Low > candle.Close {
			invalidOHLC++
		}
	}
	if invalidOHLC > 0 {
		logger.Warn().Msgf("candle validation: %d ohlc logic violations found", invalidOHLC)
	}

	seen := make(map[int64]struct{}, len(candles))
	var duplicates int
	for idx := range candles {
		key := candles[idx].Timestamp.UnixMilli()
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	if duplicates > 0 {
		// Duplicates should be structurally impossible after the backfill
		// merge, a non-zero count signals an upstream bug.
		logger.Error().Msgf("candle validation: %d duplicate timestamps found after merge", duplicates)
	}

	logger.Info().Msgf("candle validation passed for %d candles", len(candles))

	return true
}
