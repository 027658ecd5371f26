package store

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/harvest/indicator"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createCandleTableSQL = "CREATE TABLE IF NOT EXISTS candle (symbol TEXT, timeframe TEXT, " +
		"timestamp INTEGER, open REAL, high REAL, low REAL, close REAL, volume REAL, " +
		"ema_12 REAL, ema_26 REAL, ema_50 REAL, ema_200 REAL, macd REAL, macd_signal REAL, " +
		"macd_histogram REAL, rsi REAL, bb_upper REAL, bb_middle REAL, bb_lower REAL, " +
		"PRIMARY KEY (symbol, timeframe, timestamp))"
	persistCandleSQL = "INSERT OR REPLACE INTO candle(symbol, timeframe, timestamp, open, high, " +
		"low, close, volume, ema_12, ema_26, ema_50, ema_200, macd, macd_signal, macd_histogram, " +
		"rsi, bb_upper, bb_middle, bb_lower) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)"

	// persistBatchSize is the number of rows persisted per database call.
	persistBatchSize = 500
)

// DatasetStorer defines the requirements for storing finalized datasets.
type DatasetStorer interface {
	// PersistDataset stores the provided dataset to the database.
	PersistDataset(ctx context.Context, ds *indicator.Dataset) error
}

// StoreConfig is the configuration for the candle store.
type StoreConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the candle store logger.
	Logger *zerolog.Logger
}

// Store represents the candle database connection.
type Store struct {
	cfg    *StoreConfig
	client *rqlitehttp.Client
}

// Ensure the store implements the DatasetStorer interface.
var _ DatasetStorer = (*Store)(nil)

// NewStore initializes a new candle store connection.
func NewStore(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating candle store client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	store := &Store{
		cfg:    cfg,
		client: client,
	}

	err = store.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping candle store: %w", err)
	}

	return store, nil
}

// bootstrap initializes the candle store schema.
func (s *Store) bootstrap(ctx context.Context) error {
	_, err := s.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createCandleTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// nullable converts undefined values to database nulls.
func nullable(val float64) any {
	if math.IsNaN(val) {
		return nil
	}

	return val
}

// PersistDataset stores the provided dataset to the database in batches.
func (s *Store) PersistDataset(ctx context.Context, ds *indicator.Dataset) error {
	columns := ds.Columns()
	statements := make(rqlitehttp.SQLStatements, 0, persistBatchSize)

	for idx := range ds.Candles {
		candle := &ds.Candles[idx]

		params := []any{candle.Symbol, candle.Timeframe.String(), candle.Timestamp.UnixMilli(),
			candle.Open, candle.High, candle.Low, candle.Close, candle.Volume}
		for k := range columns {
			params = append(params, nullable(columns[k].Values[idx]))
		}

		statements = append(statements, &rqlitehttp.SQLStatement{
			SQL:              persistCandleSQL,
			PositionalParams: params,
		})

		if len(statements) < persistBatchSize && idx != len(ds.Candles)-1 {
			continue
		}

		resp, err := s.client.Execute(ctx, statements,
			&rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
		if err != nil {
			return fmt.Errorf("persisting candle batch: %w", err)
		}

		has, stmtIdx, errStr := resp.HasError()
		if has {
			s.cfg.Logger.Error().Msgf("unexpected candle persistence error: %s",
				spew.Sdump(ds.Candles[idx-len(statements)+1+stmtIdx]))
			return fmt.Errorf("persisting candles: %d -> %s", stmtIdx, errStr)
		}

		statements = statements[:0]
	}

	return nil
}
