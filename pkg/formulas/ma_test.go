package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		length   int
		expected *float64
	}{
		{"insufficient data", []float64{1, 2, 3}, 5, nil},
		{"zero length", []float64{1, 2, 3}, 0, nil},
		{"exact length", []float64{2, 4, 6, 8, 10}, 5, ptr(6)},
		{"trailing window", linear(1, 1, 10), 5, ptr(8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateSMA(tt.closes, tt.length)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.InDelta(t, *tt.expected, *result, 1e-9)
		})
	}
}

func TestCalculateEMA(t *testing.T) {
	t.Run("insufficient data returns nil rather than SMA", func(t *testing.T) {
		assert.Nil(t, CalculateEMA([]float64{1, 2}, 3))
	})

	t.Run("constant series", func(t *testing.T) {
		result := CalculateEMA(constant(42, 30), 12)
		require.NotNil(t, result)
		assert.InDelta(t, 42.0, *result, 1e-9)
	})

	t.Run("rising series lags price but leads SMA", func(t *testing.T) {
		closes := linear(100, 1, 60)
		ema := CalculateEMA(closes, 20)
		sma := CalculateSMA(closes, 20)
		require.NotNil(t, ema)
		require.NotNil(t, sma)
		assert.Less(t, *ema, closes[len(closes)-1])
		assert.InDelta(t, *sma, *ema, 1.0)
	})
}

func TestCalculateDistanceFromMA(t *testing.T) {
	d := CalculateDistanceFromMA(110, 100)
	require.NotNil(t, d)
	assert.InDelta(t, 10.0, *d, 1e-9)

	assert.Nil(t, CalculateDistanceFromMA(110, 0))
}

func ptr(v float64) *float64 {
	return &v
}
