package cartcodec

import (
	"net/url"

	"github.com/go-playground/form/v4"

	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

var formDecoder = form.NewDecoder()

type itemForm struct {
	ID            string            `form:"id"`
	Type          string            `form:"type"`
	Title         string            `form:"title"`
	Description   string            `form:"description"`
	Image         string            `form:"image"`
	Price         string            `form:"price"`
	OriginalPrice string            `form:"originalPrice"`
	Currency      string            `form:"currency"`
	Quantity      string            `form:"quantity"`
	Details       map[string]string `form:"details"`
}

// DecodeForm decodes html form values, product details are posted as details[key]=value
func DecodeForm(values url.Values) (cartmodel.CartItem, error) {
	f := itemForm{}
	err := formDecoder.Decode(&f, values)
	if err != nil {
		return cartmodel.CartItem{}, decodeError("", "invalid form: %s", err)
	}

	raw := map[string]any{
		"id":          f.ID,
		"type":        f.Type,
		"title":       f.Title,
		"description": f.Description,
		"image":       f.Image,
		"currency":    f.Currency,
		"quantity":    f.Quantity,
	}
	if f.Price != "" {
		raw["price"] = f.Price
	}
	if f.OriginalPrice != "" {
		raw["originalPrice"] = f.OriginalPrice
	}
	for k, v := range f.Details {
		if !cartmodel.KnownKeys[k] {
			raw[k] = v
		}
	}

	return Decode(raw)
}
