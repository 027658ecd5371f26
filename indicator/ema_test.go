package indicator

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
)

// almostEqual reports whether two values match within floating point tolerance.
func almostEqual(a float64, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEMASeedProperty(t *testing.T) {
	// Ensure the first output row equals the first input row for any period.
	values := []float64{42.5, 40, 45, 43, 48}
	for _, period := range []int{2, 12, 26, 50, 200} {
		out := EMA(values, period)
		assert.Equal(t, out[0], values[0])
		assert.Equal(t, len(out), len(values))
	}
}

func TestEMARecurrence(t *testing.T) {
	// Period 3 yields alpha = 0.5, making the recurrence easy to follow by hand.
	values := []float64{2, 4, 6, 8}
	want := []float64{2, 3, 4.5, 6.25}

	out := EMA(values, 3)
	for idx := range want {
		if !almostEqual(out[idx], want[idx]) {
			t.Errorf("row %d: expected %v, got %v", idx, want[idx], out[idx])
		}
	}
}

func TestEMADegenerateInputs(t *testing.T) {
	// Ensure an empty series yields an empty series.
	out := EMA(nil, 12)
	assert.Equal(t, len(out), 0)

	// Ensure a single observation is returned unchanged.
	out = EMA([]float64{7}, 12)
	assert.Equal(t, out[0], float64(7))

	// Ensure a flat series stays flat.
	out = EMA([]float64{100, 100, 100, 100}, 12)
	for idx := range out {
		assert.Equal(t, out[idx], float64(100))
	}
}
