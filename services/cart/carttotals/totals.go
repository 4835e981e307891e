package carttotals

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

var taxRate = decimal.NewFromFloat(cartmodel.TaxRate)

// Compute derives the totals of a list of items. Tax is rounded half away from
// zero to 2 decimals, the final total never drops below zero. Non-finite amounts count as zero.
func Compute(items []cartmodel.CartItem, discountAmount *float64) cartmodel.Totals {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range items {
		quantity := cartmodel.ClampQuantity(item.Quantity)
		if totalItems > math.MaxInt-quantity {
			totalItems = math.MaxInt
		} else {
			totalItems += quantity
		}
		price := decimal.NewFromFloat(cartmodel.Amount(item.Price))
		totalPrice = totalPrice.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	}

	taxAmount := totalPrice.Mul(taxRate).Round(2)

	finalTotal := totalPrice.Add(taxAmount)
	var discount *float64
	if discountAmount != nil {
		amount := *discountAmount
		discount = &amount
		finalTotal = finalTotal.Sub(decimal.NewFromFloat(cartmodel.Amount(amount)))
	}
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}

	return cartmodel.Totals{
		TotalItems:     totalItems,
		TotalPrice:     totalPrice.InexactFloat64(),
		TaxAmount:      taxAmount.InexactFloat64(),
		DiscountAmount: discount,
		FinalTotal:     finalTotal.InexactFloat64(),
	}
}
