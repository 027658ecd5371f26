package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dnldd/harvest/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the binance spot api base url.
	BaseURL = "https://api.binance.com"
	// klinesPath is the spot klines endpoint path.
	klinesPath = "/api/v3/klines"
	// MaxKlineLimit is the maximum number of kline rows returned per request.
	MaxKlineLimit = 1000
)

// BinanceConfig represents the configuration for the binance client.
type BinanceConfig struct {
	// BaseURL is the exchange api base url.
	BaseURL string
}

// BinanceClient represents the binance spot market data client.
type BinanceClient struct {
	cfg   *BinanceConfig
	httpc http.Client
}

// Ensure the binance client implements the MarketFetcher interface.
var _ shared.MarketFetcher = (*BinanceClient)(nil)

// NewBinanceClient instantiates a new binance client.
func NewBinanceClient(cfg *BinanceConfig) *BinanceClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &BinanceClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 15},
	}
}

// FetchKlines fetches a bounded batch of kline rows starting at the provided instant.
//
// A zero since instant requests the most recent data. An empty batch indicates
// the exchange has no further data at or after the instant and is not an error.
// Transport and exchange failures are returned to the caller, the client never
// retries on its own.
func (c *BinanceClient) FetchKlines(ctx context.Context, symbol string, timeframe shared.Timeframe, since time.Time, limit int) ([]gjson.Result, error) {
	if limit <= 0 || limit > MaxKlineLimit {
		limit = MaxKlineLimit
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("interval", timeframe.String())
	params.Add("limit", strconv.Itoa(limit))
	if !since.IsZero() {
		params.Add("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	}

	formedURL := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, klinesPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating klines request for %s: %w", symbol, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching klines (%s) for %s: %w", timeframe.String(), symbol, err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching klines for %s: status %d, body: %s",
			symbol, resp.StatusCode, string(body))
	}

	data := gjson.ParseBytes(body).Array()

	return data, nil
}
