package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/harvest/fetch"
	"github.com/dnldd/harvest/pipeline"
	"github.com/dnldd/harvest/shared"
	"github.com/dnldd/harvest/store"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleTermination(ctx, cancel)

	logger := zlog.With().Str("service", "harvest").Logger()

	timeframe, err := shared.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		logger.Error().Msgf("parsing timeframe: %v", err)
		return
	}

	client := fetch.NewBinanceClient(&fetch.BinanceConfig{BaseURL: fetch.BaseURL})

	backfillerLogger := logger.With().Str("component", "backfiller").Logger()
	backfiller, err := fetch.NewBackfiller(&fetch.BackfillerConfig{
		Symbol:    cfg.Symbol,
		Timeframe: timeframe,
		Fetcher:   client,
		Logger:    &backfillerLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating backfiller: %v", err)
		return
	}

	if cfg.Monthly {
		runMonthly(ctx, &cfg, timeframe, backfiller, &logger)
		return
	}

	var storer store.DatasetStorer
	if cfg.DBEndpoint != "" {
		storeLogger := logger.With().Str("component", "store").Logger()
		storer, err = store.NewStore(ctx, &store.StoreConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &storeLogger,
		})
		if err != nil {
			logger.Error().Msgf("creating candle store: %v", err)
			return
		}
	}

	pipelineLogger := logger.With().Str("component", "pipeline").Logger()
	pipe, err := pipeline.NewPipeline(&pipeline.PipelineConfig{
		Symbol:     cfg.Symbol,
		Timeframe:  timeframe,
		StartDate:  cfg.StartDate,
		EndDate:    cfg.EndDate,
		OutputPath: cfg.Output,
		Backfill:   backfiller.Backfill,
		Storer:     storer,
		Logger:     &pipelineLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating pipeline: %v", err)
		return
	}

	_, err = pipe.Run(ctx)
	if err != nil {
		logger.Error().Msgf("running pipeline: %v", err)
	}
}

// runMonthly dumps per-month candle files covering the configured window and
// optionally schedules dumps for newly completed months.
func runMonthly(ctx context.Context, cfg *Config, timeframe shared.Timeframe, backfiller *fetch.Backfiller, logger *zerolog.Logger) {
	saverLogger := logger.With().Str("component", "monthlysaver").Logger()

	jobScheduler := gocron.NewScheduler(time.UTC)

	saver, err := store.NewMonthlySaver(&store.MonthlySaverConfig{
		Symbol:       cfg.Symbol,
		Timeframe:    timeframe,
		Backfill:     backfiller.Backfill,
		DataDir:      cfg.DataDir,
		JobScheduler: jobScheduler,
		Logger:       &saverLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating monthly saver: %v", err)
		return
	}

	start, err := time.ParseInLocation(shared.DateOnlyLayout, cfg.StartDate, time.UTC)
	if err != nil {
		logger.Error().Msgf("parsing start date: %v", err)
		return
	}
	end, err := time.ParseInLocation(shared.DateOnlyLayout, cfg.EndDate, time.UTC)
	if err != nil {
		logger.Error().Msgf("parsing end date: %v", err)
		return
	}

	err = saver.SaveRange(ctx, start.Year(), start.Month(), end.Year(), end.Month())
	if err != nil {
		logger.Error().Msgf("saving monthly dumps: %v", err)
		return
	}

	if cfg.Schedule {
		err = saver.ScheduleMonthlyDump(ctx)
		if err != nil {
			logger.Error().Msgf("scheduling monthly dump: %v", err)
			return
		}

		jobScheduler.StartAsync()
		<-ctx.Done()
		jobScheduler.Stop()
	}
}
