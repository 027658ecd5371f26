package indicator

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestRSIWarmup(t *testing.T) {
	// Ensure row 0 is undefined, it has no prior close to diff against.
	out := RSI([]float64{100, 101, 102}, RSIPeriod)
	assert.True(t, math.IsNaN(out[0]))
	assert.False(t, math.IsNaN(out[1]))
}

func TestRSIBounds(t *testing.T) {
	// Ensure all defined outputs lie in [0, 100] on a mixed series.
	closes := []float64{100, 102, 101, 105, 103, 107, 104, 109, 106, 111,
		108, 113, 110, 115, 112, 117, 114}

	out := RSI(closes, RSIPeriod)
	for idx := 1; idx < len(out); idx++ {
		if math.IsNaN(out[idx]) {
			t.Errorf("row %d: unexpected undefined rsi", idx)
			continue
		}
		if out[idx] < 0 || out[idx] > 100 {
			t.Errorf("row %d: rsi %v outside [0,100]", idx, out[idx])
		}
	}
}

func TestRSIFlatSeries(t *testing.T) {
	// Five flat candles have zero smoothed losses at every row past warm-up,
	// which must report exactly 100 rather than a division fault.
	closes := []float64{100, 100, 100, 100, 100}

	out := RSI(closes, RSIPeriod)
	assert.True(t, math.IsNaN(out[0]))
	for idx := 1; idx < len(out); idx++ {
		assert.Equal(t, out[idx], float64(100))
	}
}

func TestRSIAllGains(t *testing.T) {
	// A strictly increasing series has zero smoothed losses, driving rsi to 100.
	closes := []float64{100, 101, 102, 103, 104, 105}

	out := RSI(closes, RSIPeriod)
	for idx := 1; idx < len(out); idx++ {
		assert.Equal(t, out[idx], float64(100))
	}
}

func TestRSIAllLosses(t *testing.T) {
	// A strictly decreasing series has zero smoothed gains, driving rsi to 0.
	closes := []float64{105, 104, 103, 102, 101, 100}

	out := RSI(closes, RSIPeriod)
	for idx := 1; idx < len(out); idx++ {
		assert.Equal(t, out[idx], float64(0))
	}
}

func TestRSIDegenerateInputs(t *testing.T) {
	// Ensure empty and single-row inputs are handled.
	out := RSI(nil, RSIPeriod)
	assert.Equal(t, len(out), 0)

	out = RSI([]float64{100}, RSIPeriod)
	assert.Equal(t, len(out), 1)
	assert.True(t, math.IsNaN(out[0]))
}
