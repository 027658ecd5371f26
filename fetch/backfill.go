package fetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dnldd/harvest/shared"
	"github.com/rs/zerolog"
)

const (
	// defaultPaceDelay is the fixed delay applied between batch requests to
	// respect the exchange rate limit.
	defaultPaceDelay = time.Millisecond * 500
	// defaultRetryDelay is the backoff delay applied after a failed batch request.
	defaultRetryDelay = time.Second * 2
	// progressInterval is the number of batches between progress log entries.
	progressInterval = 10
)

// ErrNoDataCollected is returned when a backfill window produced no usable batches.
var ErrNoDataCollected = errors.New("no candle data collected for the requested window")

// BackfillerConfig represents the configuration for the backfiller.
type BackfillerConfig struct {
	// Symbol represents the market being backfilled.
	Symbol string
	// Timeframe is the candle interval being backfilled.
	Timeframe shared.Timeframe
	// Fetcher represents the market data client.
	Fetcher shared.MarketFetcher
	// BatchLimit bounds the number of candles requested per batch.
	BatchLimit int
	// PaceDelay is the fixed delay between consecutive batch requests.
	PaceDelay time.Duration
	// RetryDelay is the backoff delay applied after a failed batch request.
	RetryDelay time.Duration
	// MaxRetries bounds consecutive failed batch requests before the
	// backfill fails. Zero retries indefinitely.
	MaxRetries int
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *BackfillerConfig) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("market fetcher cannot be nil"))
	}
	if cfg.Timeframe.Duration() == 0 {
		errs = errors.Join(errs, fmt.Errorf("unknown timeframe provided"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Backfiller reconstructs complete historical candle series via repeated bounded fetches.
type Backfiller struct {
	cfg *BackfillerConfig
}

// NewBackfiller initializes a new backfiller.
func NewBackfiller(cfg *BackfillerConfig) (*Backfiller, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating backfiller config: %w", err)
	}

	if cfg.BatchLimit <= 0 || cfg.BatchLimit > MaxKlineLimit {
		cfg.BatchLimit = MaxKlineLimit
	}
	if cfg.PaceDelay <= 0 {
		cfg.PaceDelay = defaultPaceDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	return &Backfiller{cfg: cfg}, nil
}

// parseWindow converts the provided calendar dates to the window boundary instants.
// The end boundary is inclusive through the last millisecond of the end date.
func parseWindow(start string, end string) (time.Time, time.Time, error) {
	startTs, err := time.ParseInLocation(shared.DateOnlyLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start date: %w", err)
	}

	endDay, err := time.ParseInLocation(shared.DateOnlyLayout, end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end date: %w", err)
	}

	endTs := endDay.Add(time.Hour*24 - time.Millisecond)
	if endTs.Before(startTs) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}

	return startTs, endTs, nil
}

// wait blocks for the provided duration or until the context is cancelled.
func (b *Backfiller) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backfill reconstructs the candle series covering the provided date window.
//
// The window spans start 00:00:00 through end 23:59:59.999, both in UTC. An
// end date in the future returns whatever the exchange currently has. Failed
// batch requests are retried at the same cursor position after a backoff
// delay; cancellation is honored between loop iterations.
func (b *Backfiller) Backfill(ctx context.Context, start string, end string) ([]shared.Candlestick, error) {
	startTs, endTs, err := parseWindow(start, end)
	if err != nil {
		return nil, err
	}

	b.cfg.Logger.Info().Msgf("backfilling %s (%s) from %s to %s",
		b.cfg.Symbol, b.cfg.Timeframe.String(), start, end)

	interval := b.cfg.Timeframe.Duration()
	buffer := make([]shared.Candlestick, 0, b.cfg.BatchLimit)
	current := startTs
	batchCount := 0
	failures := 0

	for current.Before(endTs) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		candles, err := b.fetchBatch(ctx, current)
		if err != nil {
			failures++
			if b.cfg.MaxRetries > 0 && failures >= b.cfg.MaxRetries {
				return nil, fmt.Errorf("fetching batch %d after %d consecutive failures: %w",
					batchCount, failures, err)
			}

			b.cfg.Logger.Warn().Msgf("batch %d failed, retrying in %s: %v",
				batchCount, b.cfg.RetryDelay, err)

			err = b.wait(ctx, b.cfg.RetryDelay)
			if err != nil {
				return nil, err
			}

			continue
		}

		failures = 0

		if len(candles) == 0 {
			b.cfg.Logger.Info().Msgf("no further data available for %s", b.cfg.Symbol)
			break
		}

		buffer = append(buffer, candles...)
		batchCount++

		last := candles[len(candles)-1].Timestamp
		if batchCount%progressInterval == 0 {
			b.cfg.Logger.Info().Msgf("%d batches collected, last candle at %s",
				batchCount, last.Format(shared.DateLayout))
		}

		// Advance the cursor past the last collected candle to avoid
		// re-fetching it on the next batch.
		current = last.Add(interval)
		if !current.Before(endTs) {
			break
		}

		err = b.wait(ctx, b.cfg.PaceDelay)
		if err != nil {
			return nil, err
		}
	}

	if len(buffer) == 0 {
		return nil, ErrNoDataCollected
	}

	merged := mergeCandles(buffer, endTs)

	b.cfg.Logger.Info().Msgf("collected %d candles for %s, from %s to %s",
		len(merged), b.cfg.Symbol,
		merged[0].Timestamp.Format(shared.DateLayout),
		merged[len(merged)-1].Timestamp.Format(shared.DateLayout))

	return merged, nil
}

// fetchBatch fetches and parses a single bounded batch at the provided cursor.
func (b *Backfiller) fetchBatch(ctx context.Context, since time.Time) ([]shared.Candlestick, error) {
	data, err := b.cfg.Fetcher.FetchKlines(ctx, b.cfg.Symbol, b.cfg.Timeframe, since, b.cfg.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching klines: %w", err)
	}

	candles, err := shared.ParseCandlesticks(data, b.cfg.Symbol, b.cfg.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("parsing candlesticks: %w", err)
	}

	return candles, nil
}

// mergeCandles deduplicates the accumulated batches by timestamp, sorts the
// result ascending and trims candles beyond the window end.
func mergeCandles(candles []shared.Candlestick, endTs time.Time) []shared.Candlestick {
	seen := make(map[int64]struct{}, len(candles))
	merged := make([]shared.Candlestick, 0, len(candles))

	for idx := range candles {
		key := candles[idx].Timestamp.UnixMilli()
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		merged = append(merged, candles[idx])
	}

	slices.SortFunc(merged, func(a, b shared.Candlestick) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	for len(merged) > 0 && merged[len(merged)-1].Timestamp.After(endTs) {
		merged = merged[:len(merged)-1]
	}

	return merged
}
