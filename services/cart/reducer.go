package cart

import (
	"math"
	"strings"

	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
	"github.com/MarcGrol/tripcart/services/cart/carttotals"
)

// Apply returns the state that results from cmd. The input state is never modified
// and totals are always derived from the resulting items.
func Apply(state cartmodel.CartState, cmd Command) cartmodel.CartState {
	next := state.Clone()
	if next.Currency == "" {
		next.Currency = cartmodel.DefaultCurrency
	}

	switch c := cmd.(type) {
	case AddItem:
		next.Items = addItem(next.Items, c.Item, next.Currency)
	case RemoveItem:
		next.Items = removeItem(next.Items, c.ID, c.Type)
	case UpdateQuantity:
		for idx := range next.Items {
			if next.Items[idx].Matches(c.ID, c.Type) {
				next.Items[idx].Quantity = cartmodel.ClampQuantity(c.Quantity)
			}
		}
	case UpdateItem:
		for idx := range next.Items {
			if next.Items[idx].Matches(c.ID, c.Type) {
				next.Items[idx] = applyPatch(next.Items[idx], c.Patch)
			}
		}
	case ClearCart:
		next = cartmodel.EmptyState()
	case ApplyDiscount:
		amount := cartmodel.Amount(c.Amount)
		next.DiscountCode = c.Code
		next.DiscountAmount = &amount
	case RemoveDiscount:
		next.DiscountCode = ""
		next.DiscountAmount = nil
	case hydrate:
		next = c.State.Clone()
		if next.Items == nil {
			next.Items = []cartmodel.CartItem{}
		}
		if next.Currency == "" {
			next.Currency = cartmodel.DefaultCurrency
		}
	}

	return next.WithTotals(carttotals.Compute(next.Items, next.DiscountAmount))
}

// addItem ignores items without an identity, they could never be loaded again
func addItem(items []cartmodel.CartItem, item cartmodel.CartItem, currency string) []cartmodel.CartItem {
	if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Type) == "" {
		return items
	}

	added := item.Clone()
	added.Quantity = cartmodel.ClampQuantity(added.Quantity)
	added.Price = cartmodel.Amount(added.Price)
	added.OriginalPrice = originalPrice(added.OriginalPrice)
	added.Details = withoutKnownKeys(added.Details)
	if added.Currency == "" {
		added.Currency = currency
	}

	for idx := range items {
		if items[idx].ID == added.ID && items[idx].Type == added.Type {
			items[idx].Quantity = cartmodel.AddQuantity(items[idx].Quantity, added.Quantity)
			return items
		}
	}
	return append(items, added)
}

func originalPrice(value *float64) *float64 {
	if value == nil || math.IsNaN(*value) || math.IsInf(*value, 0) {
		return nil
	}
	amount := cartmodel.Amount(*value)
	return &amount
}

// withoutKnownKeys drops details that would collide with the item fields on the wire
func withoutKnownKeys(details map[string]any) map[string]any {
	for k := range details {
		if cartmodel.KnownKeys[k] {
			delete(details, k)
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

func removeItem(items []cartmodel.CartItem, id, itemType string) []cartmodel.CartItem {
	kept := make([]cartmodel.CartItem, 0, len(items))
	for _, item := range items {
		if !item.Matches(id, itemType) {
			kept = append(kept, item)
		}
	}
	return kept
}

// applyPatch merges the patch shallowly, identity fields are never touched
func applyPatch(item cartmodel.CartItem, patch cartmodel.ItemPatch) cartmodel.CartItem {
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Image != nil {
		item.Image = *patch.Image
	}
	if patch.Price != nil {
		item.Price = cartmodel.Amount(*patch.Price)
	}
	if patch.OriginalPrice != nil {
		item.OriginalPrice = originalPrice(patch.OriginalPrice)
	}
	if patch.Currency != nil && *patch.Currency != "" {
		item.Currency = *patch.Currency
	}
	if patch.Quantity != nil {
		item.Quantity = cartmodel.ClampQuantity(*patch.Quantity)
	}
	if len(patch.Details) > 0 {
		patched := withoutKnownKeys(cartmodel.CartItem{Details: patch.Details}.Clone().Details)
		if item.Details == nil && len(patched) > 0 {
			item.Details = map[string]any{}
		}
		for k, v := range patched {
			item.Details[k] = v
		}
	}
	return item
}
