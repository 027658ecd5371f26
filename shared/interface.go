package shared

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// MarketFetcher defines the requirements for fetching market data in bounded batches.
type MarketFetcher interface {
	// FetchKlines fetches a bounded batch of kline rows starting at the
	// provided instant. A zero since instant requests the most recent data.
	FetchKlines(ctx context.Context, symbol string, timeframe Timeframe, since time.Time, limit int) ([]gjson.Result, error)
}
