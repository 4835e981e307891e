package cartmodel

import (
	"encoding/json"
)

// Keys with a fixed meaning in the wire shape of an item, everything else is a detail
var KnownKeys = map[string]bool{
	"id":            true,
	"type":          true,
	"title":         true,
	"description":   true,
	"image":         true,
	"price":         true,
	"originalPrice": true,
	"currency":      true,
	"quantity":      true,
}

type itemFields struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Image         string   `json:"image,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Currency      string   `json:"currency"`
	Quantity      int      `json:"quantity"`
}

// MarshalJSON flattens the details next to the known keys
func (i CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Raw())
}

// Raw returns the wire shape of the item as a generic map
func (i CartItem) Raw() map[string]any {
	raw := map[string]any{}
	for k, v := range i.Details {
		if !KnownKeys[k] {
			raw[k] = copyValue(v)
		}
	}
	raw["id"] = i.ID
	raw["type"] = i.Type
	raw["title"] = i.Title
	if i.Description != "" {
		raw["description"] = i.Description
	}
	if i.Image != "" {
		raw["image"] = i.Image
	}
	raw["price"] = i.Price
	if i.OriginalPrice != nil {
		raw["originalPrice"] = *i.OriginalPrice
	}
	raw["currency"] = i.Currency
	raw["quantity"] = i.Quantity

	return raw
}

// UnmarshalJSON reads the wire shape without validation, see cartcodec for that
func (i *CartItem) UnmarshalJSON(data []byte) error {
	fields := itemFields{}
	err := json.Unmarshal(data, &fields)
	if err != nil {
		return err
	}
	raw := map[string]any{}
	err = json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	*i = CartItem{
		ID:            fields.ID,
		Type:          fields.Type,
		Title:         fields.Title,
		Description:   fields.Description,
		Image:         fields.Image,
		Price:         fields.Price,
		OriginalPrice: fields.OriginalPrice,
		Currency:      fields.Currency,
		Quantity:      fields.Quantity,
	}
	for k, v := range raw {
		if KnownKeys[k] {
			continue
		}
		if i.Details == nil {
			i.Details = map[string]any{}
		}
		i.Details[k] = v
	}
	return nil
}

// MarshalJSON never writes a null item list
func (s CartState) MarshalJSON() ([]byte, error) {
	type plain CartState
	if s.Items == nil {
		s.Items = []CartItem{}
	}
	return json.Marshal(plain(s))
}
