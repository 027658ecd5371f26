package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dnldd/harvest/fetch"
	"github.com/dnldd/harvest/indicator"
	"github.com/dnldd/harvest/shared"
	"github.com/dnldd/harvest/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PipelineConfig represents the configuration for the data pipeline.
type PipelineConfig struct {
	// Symbol represents the market being collected.
	Symbol string
	// Timeframe is the candle interval being collected.
	Timeframe shared.Timeframe
	// StartDate is the collection window start date (YYYY-MM-DD).
	StartDate string
	// EndDate is the collection window end date (YYYY-MM-DD), inclusive.
	EndDate string
	// OutputPath is the csv output file path. A default path is derived
	// from the symbol and timeframe when empty.
	OutputPath string
	// Backfill reconstructs the candle series covering the provided date window.
	Backfill func(ctx context.Context, start string, end string) ([]shared.Candlestick, error)
	// Storer optionally persists the finalized dataset to a database.
	Storer store.DatasetStorer
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *PipelineConfig) Validate() error {
	var errs error

	if cfg.Symbol == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.StartDate == "" {
		errs = errors.Join(errs, fmt.Errorf("start date cannot be an empty string"))
	}
	if cfg.EndDate == "" {
		errs = errors.Join(errs, fmt.Errorf("end date cannot be an empty string"))
	}
	if cfg.Backfill == nil {
		errs = errors.Join(errs, fmt.Errorf("backfill function cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Pipeline sequences the collection, validation, indicator computation and
// persistence stages of a data run.
type Pipeline struct {
	cfg *PipelineConfig
	id  string
}

// NewPipeline initializes a new data pipeline.
func NewPipeline(cfg *PipelineConfig) (*Pipeline, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating pipeline config: %w", err)
	}

	return &Pipeline{
		cfg: cfg,
		id:  uuid.NewString(),
	}, nil
}

// outputPath returns the configured output path or a derived default.
func (p *Pipeline) outputPath() string {
	if p.cfg.OutputPath != "" {
		return p.cfg.OutputPath
	}

	return fmt.Sprintf("%s_%s_%s.csv", strings.ToLower(p.cfg.Symbol),
		p.cfg.Timeframe.String(), time.Now().UTC().Format("20060102_150405"))
}

// Run executes the data pipeline stages in sequence: backfill, candle
// validation, indicator computation, indicator validation and persistence.
//
// Validation failures abort the run before indicator computation or
// persistence; diagnostic warnings are logged and allow the run to complete.
func (p *Pipeline) Run(ctx context.Context) (*indicator.Dataset, error) {
	logger := p.cfg.Logger.With().Str("run", p.id).Logger()

	logger.Info().Msgf("[1/4] collecting %s (%s) data from %s to %s",
		p.cfg.Symbol, p.cfg.Timeframe.String(), p.cfg.StartDate, p.cfg.EndDate)
	candles, err := p.cfg.Backfill(ctx, p.cfg.StartDate, p.cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("collecting data: %w", err)
	}

	logger.Info().Msg("[2/4] validating collected candles")
	if !fetch.ValidateCandles(candles, &logger) {
		return nil, fmt.Errorf("candle validation failed for %s", p.cfg.Symbol)
	}

	logger.Info().Msg("[3/4] computing indicators")
	ds := indicator.AddAllIndicators(candles)
	if !indicator.ValidateDataset(ds, &logger) {
		return nil, fmt.Errorf("indicator validation failed for %s", p.cfg.Symbol)
	}

	path := p.outputPath()
	logger.Info().Msgf("[4/4] saving dataset to %s", path)
	err = store.WriteDatasetCSV(path, ds)
	if err != nil {
		return nil, fmt.Errorf("saving dataset: %w", err)
	}

	if p.cfg.Storer != nil {
		err = p.cfg.Storer.PersistDataset(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("persisting dataset: %w", err)
		}
	}

	p.logSummary(&logger, ds)

	return ds, nil
}

// logSummary logs closing statistics for the completed run.
func (p *Pipeline) logSummary(logger *zerolog.Logger, ds *indicator.Dataset) {
	first := ds.Candles[0].Timestamp
	last := ds.Candles[len(ds.Candles)-1].Timestamp

	logger.Info().Msgf("run complete: %d candles from %s to %s", len(ds.Candles),
		first.Format(shared.DateLayout), last.Format(shared.DateLayout))

	latest := len(ds.Candles) - 1
	logger.Info().Msgf("latest close: %.2f, rsi: %.2f, macd: %.2f, ema_200: %.2f",
		ds.Candles[latest].Close, ds.RSI[latest], ds.MACD[latest], ds.EMA200[latest])

	var undefined int
	for _, col := range ds.Columns() {
		for idx := range col.Values {
			if math.IsNaN(col.Values[idx]) {
				undefined++
			}
		}
	}
	logger.Info().Msgf("total undefined indicator values: %d", undefined)
}
