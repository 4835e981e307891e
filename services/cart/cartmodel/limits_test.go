package cartmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimits(t *testing.T) {
	t.Run("Clamp quantity", func(t *testing.T) {
		for _, tc := range []struct {
			in  int
			out int
		}{
			{in: math.MinInt, out: 1},
			{in: -5, out: 1},
			{in: 0, out: 1},
			{in: 1, out: 1},
			{in: 42, out: 42},
			{in: MaxQuantity, out: MaxQuantity},
			{in: math.MaxInt, out: MaxQuantity},
		} {
			assert.Equal(t, tc.out, ClampQuantity(tc.in), "quantity %d", tc.in)
		}
	})

	t.Run("Add quantity saturates", func(t *testing.T) {
		assert.Equal(t, 5, AddQuantity(2, 3))
		assert.Equal(t, MaxQuantity, AddQuantity(MaxQuantity-1, 2))
		assert.Equal(t, MaxQuantity, AddQuantity(math.MaxInt/2, math.MaxInt/2))
		assert.Equal(t, 2, AddQuantity(-7, 0))
	})

	t.Run("Amount", func(t *testing.T) {
		assert.Equal(t, 12.5, Amount(12.5))
		assert.Equal(t, 0.0, Amount(-1))
		assert.Equal(t, 0.0, Amount(math.NaN()))
		assert.Equal(t, 0.0, Amount(math.Inf(1)))
		assert.Equal(t, 0.0, Amount(math.Inf(-1)))
	})
}
