package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnldd/harvest/indicator"
	"github.com/dnldd/harvest/shared"
	"github.com/peterldowns/testy/assert"
)

func testCandles(n int) []shared.Candlestick {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]shared.Candlestick, 0, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i%5)
		candles = append(candles, shared.Candlestick{
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Symbol:    "BTCUSDT",
			Timeframe: shared.OneMinute,
		})
	}

	return candles
}

func readCSV(t *testing.T, path string) [][]string {
	file, err := os.Open(path)
	assert.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	assert.NoError(t, err)

	return records
}

func TestWriteCandlesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "candles.csv")
	candles := testCandles(3)

	// Ensure parent directories are created on demand.
	err := WriteCandlesCSV(path, candles)
	assert.NoError(t, err)

	records := readCSV(t, path)
	assert.Equal(t, len(records), 4)
	assert.Equal(t, records[0], []string{"timestamp", "open", "high", "low", "close", "volume"})
	assert.Equal(t, records[1][0], "2024-01-02 00:00:00")
	assert.Equal(t, records[1][1], "100")
	assert.Equal(t, records[3][0], "2024-01-02 00:02:00")
}

func TestWriteDatasetCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	ds := indicator.AddAllIndicators(testCandles(25))

	err := WriteDatasetCSV(path, ds)
	assert.NoError(t, err)

	records := readCSV(t, path)
	assert.Equal(t, len(records), 26)

	// Ensure the fixed column order is preserved.
	wantHeader := []string{"timestamp", "open", "high", "low", "close", "volume",
		"ema_12", "ema_26", "ema_50", "ema_200", "macd", "macd_signal",
		"macd_histogram", "rsi", "bb_upper", "bb_middle", "bb_lower"}
	assert.Equal(t, records[0], wantHeader)

	// Ensure undefined warm-up values are rendered as empty fields.
	header := records[0]
	row0 := records[1]
	for idx, name := range header {
		switch name {
		case "rsi", "bb_upper", "bb_middle", "bb_lower":
			assert.Equal(t, row0[idx], "")
		}
	}

	// Ensure defined rows past warm-up are rendered.
	last := records[len(records)-1]
	for idx := range last {
		if last[idx] == "" {
			t.Errorf("column %s: unexpected empty field past warm-up", header[idx])
		}
	}
}
