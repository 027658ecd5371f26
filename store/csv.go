package store

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dnldd/harvest/indicator"
	"github.com/dnldd/harvest/shared"
)

// candleHeader is the canonical column order of the ohlcv fields.
var candleHeader = []string{"timestamp", "open", "high", "low", "close", "volume"}

// formatValue renders a numeric field, undefined values become empty fields.
func formatValue(val float64) string {
	if math.IsNaN(val) {
		return ""
	}

	return strconv.FormatFloat(val, 'f', -1, 64)
}

// candleRow renders the ohlcv fields of the provided candle.
func candleRow(candle *shared.Candlestick) []string {
	return []string{
		candle.Timestamp.Format(shared.DateLayout),
		formatValue(candle.Open),
		formatValue(candle.High),
		formatValue(candle.Low),
		formatValue(candle.Close),
		formatValue(candle.Volume),
	}
}

// newCSVWriter creates the csv file at the provided path, creating parent
// directories as needed.
func newCSVWriter(path string) (*os.File, *csv.Writer, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return nil, nil, fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", path, err)
	}

	return file, csv.NewWriter(file), nil
}

// WriteCandlesCSV writes the provided candle series to a csv file, preserving
// the series row order.
func WriteCandlesCSV(path string, candles []shared.Candlestick) error {
	file, writer, err := newCSVWriter(path)
	if err != nil {
		return err
	}
	defer file.Close()

	err = writer.Write(candleHeader)
	if err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for idx := range candles {
		err = writer.Write(candleRow(&candles[idx]))
		if err != nil {
			return fmt.Errorf("writing csv row %d: %w", idx, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// WriteDatasetCSV writes the provided dataset to a csv file with the fixed
// column order: the ohlcv fields followed by the indicator columns.
func WriteDatasetCSV(path string, ds *indicator.Dataset) error {
	file, writer, err := newCSVWriter(path)
	if err != nil {
		return err
	}
	defer file.Close()

	columns := ds.Columns()

	header := make([]string, 0, len(candleHeader)+len(columns))
	header = append(header, candleHeader...)
	for idx := range columns {
		header = append(header, columns[idx].Name)
	}

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for idx := range ds.Candles {
		row := candleRow(&ds.Candles[idx])
		for k := range columns {
			row = append(row, formatValue(columns[k].Values[idx]))
		}

		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("writing csv row %d: %w", idx, err)
		}
	}

	writer.Flush()

	return writer.Error()
}
