package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for parsing candle timestamps.
	DateLayout = "2006-01-02 15:04:05"
	// DateOnlyLayout is the format layout for parsing calendar dates.
	DateOnlyLayout = "2006-01-02"
)

// Timeframe represents the market data time period.
type Timeframe int

const (
	OneMinute Timeframe = iota
	FiveMinute
	FifteenMinute
	OneHour
	FourHour
	OneDay
)

// String stringifies the provided timeframe using the exchange interval token.
func (t *Timeframe) String() string {
	switch *t {
	case OneMinute:
		return "1m"
	case FiveMinute:
		return "5m"
	case FifteenMinute:
		return "15m"
	case OneHour:
		return "1h"
	case FourHour:
		return "4h"
	case OneDay:
		return "1d"
	default:
		return "unknown"
	}
}

// Duration returns the candle interval of the provided timeframe.
func (t *Timeframe) Duration() time.Duration {
	switch *t {
	case OneMinute:
		return time.Minute
	case FiveMinute:
		return time.Minute * 5
	case FifteenMinute:
		return time.Minute * 15
	case OneHour:
		return time.Hour
	case FourHour:
		return time.Hour * 4
	case OneDay:
		return time.Hour * 24
	default:
		return 0
	}
}

// ParseTimeframe parses a timeframe from the provided interval token.
func ParseTimeframe(interval string) (Timeframe, error) {
	switch interval {
	case "1m":
		return OneMinute, nil
	case "5m":
		return FiveMinute, nil
	case "15m":
		return FifteenMinute, nil
	case "1h":
		return OneHour, nil
	case "4h":
		return FourHour, nil
	case "1d":
		return OneDay, nil
	default:
		return 0, fmt.Errorf("unknown timeframe provided: %s", interval)
	}
}
