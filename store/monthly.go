package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dnldd/harvest/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const (
	// csvDirName is the subdirectory for monthly csv dumps.
	csvDirName = "csv"
	// monthlyDumpTime is the time of day the scheduled monthly dump runs.
	monthlyDumpTime = "00:15"
)

// MonthlySaverConfig represents the configuration for the monthly saver.
type MonthlySaverConfig struct {
	// Symbol represents the market being saved.
	Symbol string
	// Timeframe is the candle interval being saved.
	Timeframe shared.Timeframe
	// Backfill reconstructs the candle series covering the provided date window.
	Backfill func(ctx context.Context, start string, end string) ([]shared.Candlestick, error)
	// DataDir is the root directory for monthly dump files.
	DataDir string
	// JobScheduler represents the job scheduler.
	JobScheduler *gocron.Scheduler
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *MonthlySaverConfig) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.Backfill == nil {
		errs = errors.Join(errs, fmt.Errorf("backfill function cannot be nil"))
	}
	if cfg.DataDir == "" {
		errs = errors.Join(errs, fmt.Errorf("data directory cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// MonthlySaver dumps complete calendar months of candle data to per-month files.
type MonthlySaver struct {
	cfg *MonthlySaverConfig
}

// NewMonthlySaver initializes a new monthly saver.
func NewMonthlySaver(cfg *MonthlySaverConfig) (*MonthlySaver, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating monthly saver config: %w", err)
	}

	return &MonthlySaver{cfg: cfg}, nil
}

// MonthRange returns the first and last calendar dates of the provided month.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, 0).AddDate(0, 0, -1)

	return first.Format(shared.DateOnlyLayout), last.Format(shared.DateOnlyLayout)
}

// monthFilePath forms the dump file path for the provided month,
// eg. data/csv/BTCUSDT_2024_01_1m.csv.
func (m *MonthlySaver) monthFilePath(year int, month time.Month) string {
	name := fmt.Sprintf("%s_%d_%02d_%s.csv", m.cfg.Symbol, year, month,
		m.cfg.Timeframe.String())

	return filepath.Join(m.cfg.DataDir, csvDirName, name)
}

// SaveMonth collects and saves the candle data of the provided month,
// returning the dump file path.
func (m *MonthlySaver) SaveMonth(ctx context.Context, year int, month time.Month) (string, error) {
	start, end := MonthRange(year, month)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if first.After(time.Now().UTC()) {
		return "", fmt.Errorf("month %d-%02d is in the future", year, month)
	}

	candles, err := m.cfg.Backfill(ctx, start, end)
	if err != nil {
		return "", fmt.Errorf("backfilling month %d-%02d: %w", year, month, err)
	}

	path := m.monthFilePath(year, month)
	err = WriteCandlesCSV(path, candles)
	if err != nil {
		return "", fmt.Errorf("saving month %d-%02d: %w", year, month, err)
	}

	m.cfg.Logger.Info().Msgf("saved %d candles for %d-%02d to %s",
		len(candles), year, month, path)

	return path, nil
}

// SaveRange saves every month in the provided inclusive range, skipping
// months that already have a dump file.
func (m *MonthlySaver) SaveRange(ctx context.Context, startYear int, startMonth time.Month, endYear int, endMonth time.Month) error {
	current := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(endYear, endMonth, 1, 0, 0, 0, 0, time.UTC)

	for !current.After(rangeEnd) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		year, month := current.Year(), current.Month()

		path := m.monthFilePath(year, month)
		_, err := os.Stat(path)
		if err == nil {
			m.cfg.Logger.Info().Msgf("skipping %d-%02d, dump file already exists", year, month)
			current = current.AddDate(0, 1, 0)
			continue
		}

		_, err = m.SaveMonth(ctx, year, month)
		if err != nil {
			return err
		}

		current = current.AddDate(0, 1, 0)
	}

	return nil
}

// ScheduleMonthlyDump schedules a job dumping the previous calendar month on
// the first day of each month.
func (m *MonthlySaver) ScheduleMonthlyDump(ctx context.Context) error {
	if m.cfg.JobScheduler == nil {
		return fmt.Errorf("job scheduler cannot be nil")
	}

	_, err := m.cfg.JobScheduler.Every(1).Month(1).At(monthlyDumpTime).Do(func() {
		previous := time.Now().UTC().AddDate(0, -1, 0)
		_, err := m.SaveMonth(ctx, previous.Year(), previous.Month())
		if err != nil {
			m.cfg.Logger.Error().Msgf("scheduled monthly dump: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling monthly dump: %w", err)
	}

	return nil
}
