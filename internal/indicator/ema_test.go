package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	tbl := []struct {
		name   string
		data   []float64
		period int
		out    []float64
	}{
		{
			name:   "seeded with first value",
			data:   []float64{100, 102, 101},
			period: 3,
			out:    []float64{100, 101, 101},
		},
		{
			name:   "constant series stays constant",
			data:   []float64{5, 5, 5, 5},
			period: 2,
			out:    []float64{5, 5, 5, 5},
		},
		{
			name:   "single value",
			data:   []float64{42},
			period: 9,
			out:    []float64{42},
		},
		{
			name:   "empty",
			data:   nil,
			period: 9,
			out:    nil,
		},
	}

	for _, tc := range tbl {
		t.Run(tc.name, func(t *testing.T) {
			got := EMA(tc.data, tc.period)
			require.Len(t, got, len(tc.out))
			for i := range tc.out {
				assert.InDelta(t, tc.out[i], got[i], 1e-9)
			}
		})
	}
}

func TestEMAPanicsOnInvalidPeriod(t *testing.T) {
	assert.Panics(t, func() { EMA([]float64{1, 2, 3}, 0) })
}

func TestCrossovers(t *testing.T) {
	fast := []float64{1, 2, 4, 3, 1}
	slow := []float64{3, 3, 3, 3, 3}

	assert.False(t, CrossesAbove(fast, slow, 0), "no event on the first bar")
	assert.False(t, CrossesAbove(fast, slow, 1))
	assert.True(t, CrossesAbove(fast, slow, 2))
	assert.False(t, CrossesAbove(fast, slow, 3))

	assert.False(t, CrossesBelow(fast, slow, 2))
	assert.False(t, CrossesBelow(fast, slow, 3), "touching from above is not a cross")
	assert.True(t, CrossesBelow(fast, slow, 4))
}

func TestCrossoverFromEqual(t *testing.T) {
	fast := []float64{3, 4}
	slow := []float64{3, 3}

	assert.True(t, CrossesAbove(fast, slow, 1), "below-or-equal to above is a bullish cross")
}
