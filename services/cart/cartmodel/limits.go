package cartmodel

import "math"

// MaxQuantity bounds the quantity of a single line item
const MaxQuantity = math.MaxInt32

// ClampQuantity keeps a quantity within [1, MaxQuantity]
func ClampQuantity(quantity int) int {
	return min(max(1, quantity), MaxQuantity)
}

// AddQuantity sums two quantities, saturating at MaxQuantity
func AddQuantity(a, b int) int {
	a, b = ClampQuantity(a), ClampQuantity(b)
	if a > MaxQuantity-b {
		return MaxQuantity
	}
	return a + b
}

// Amount turns a price or discount into a finite non-negative value
func Amount(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}
