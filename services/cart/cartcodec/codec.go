package cartcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

type DecodeError struct {
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid cart item: %s", e.Reason)
	}
	return fmt.Sprintf("invalid cart item field '%s': %s", e.Field, e.Reason)
}

func decodeError(field string, format string, args ...any) *DecodeError {
	return &DecodeError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Decode validates a raw line item payload and normalizes it into a CartItem
func Decode(raw map[string]any) (cartmodel.CartItem, error) {
	if raw == nil {
		return cartmodel.CartItem{}, decodeError("", "missing payload")
	}

	id, err := requiredString(raw, "id")
	if err != nil {
		return cartmodel.CartItem{}, err
	}
	itemType, err := requiredString(raw, "type")
	if err != nil {
		return cartmodel.CartItem{}, err
	}

	rawPrice, exists := raw["price"]
	if !exists || rawPrice == nil {
		return cartmodel.CartItem{}, decodeError("price", "is required")
	}
	price, err := amount("price", rawPrice)
	if err != nil {
		return cartmodel.CartItem{}, err
	}

	item := cartmodel.CartItem{
		ID:          id,
		Type:        itemType,
		Title:       optionalString(raw["title"]),
		Description: optionalString(raw["description"]),
		Image:       optionalString(raw["image"]),
		Price:       price,
		Currency:    optionalString(raw["currency"]),
		Quantity:    1,
	}
	if item.Currency == "" {
		item.Currency = cartmodel.DefaultCurrency
	}

	if rawOriginal, exists := raw["originalPrice"]; exists && rawOriginal != nil {
		originalPrice, err := amount("originalPrice", rawOriginal)
		if err != nil {
			return cartmodel.CartItem{}, err
		}
		item.OriginalPrice = &originalPrice
	}

	if quantity, ok := number(raw["quantity"]); ok && quantity >= 1 {
		item.Quantity = toQuantity(quantity)
	}

	item.Details = details(raw)

	return item, nil
}

// DecodeJSON decodes a single JSON object
func DecodeJSON(data []byte) (cartmodel.CartItem, error) {
	raw, err := rawObject(data)
	if err != nil {
		return cartmodel.CartItem{}, err
	}
	return Decode(raw)
}

// Encode is the inverse of Decode
func Encode(item cartmodel.CartItem) map[string]any {
	return item.Raw()
}

// DecodePatch extracts the fields of a partial update, identity fields are ignored
func DecodePatch(raw map[string]any) (cartmodel.ItemPatch, error) {
	patch := cartmodel.ItemPatch{}

	for key, target := range map[string]**string{
		"title":       &patch.Title,
		"description": &patch.Description,
		"image":       &patch.Image,
		"currency":    &patch.Currency,
	} {
		if value, exists := raw[key]; exists && value != nil {
			s := optionalString(value)
			*target = &s
		}
	}

	for key, target := range map[string]**float64{
		"price":         &patch.Price,
		"originalPrice": &patch.OriginalPrice,
	} {
		if value, exists := raw[key]; exists && value != nil {
			f, err := amount(key, value)
			if err != nil {
				return cartmodel.ItemPatch{}, err
			}
			*target = &f
		}
	}

	if value, exists := raw["quantity"]; exists && value != nil {
		quantity, ok := number(value)
		if !ok {
			return cartmodel.ItemPatch{}, decodeError("quantity", "must be a number")
		}
		q := toQuantity(quantity)
		patch.Quantity = &q
	}

	patch.Details = details(raw)

	return patch, nil
}

func DecodePatchJSON(data []byte) (cartmodel.ItemPatch, error) {
	raw, err := rawObject(data)
	if err != nil {
		return cartmodel.ItemPatch{}, err
	}
	return DecodePatch(raw)
}

func rawObject(data []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	raw := map[string]any{}
	err := decoder.Decode(&raw)
	if err != nil {
		return nil, decodeError("", "not a json object: %s", err)
	}
	return raw, nil
}

func requiredString(raw map[string]any, field string) (string, error) {
	value, ok := raw[field].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", decodeError(field, "must be a non-empty string")
	}
	return value, nil
}

func optionalString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func amount(field string, value any) (float64, error) {
	f, ok := number(value)
	if !ok {
		return 0, decodeError(field, "must be a number")
	}
	if f < 0 {
		return 0, decodeError(field, "must not be negative")
	}
	return f, nil
}

func number(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toQuantity converts before the float can exceed the int range
func toQuantity(quantity float64) int {
	return int(min(max(1, quantity), cartmodel.MaxQuantity))
}

func details(raw map[string]any) map[string]any {
	var result map[string]any
	for k, v := range raw {
		if cartmodel.KnownKeys[k] {
			continue
		}
		if result == nil {
			result = map[string]any{}
		}
		result[k] = normalize(v)
	}
	return result
}

// normalize turns json.Number into float64 so details look the same after a round trip
func normalize(value any) any {
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, e := range v {
			result[k] = normalize(e)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, e := range v {
			result[i] = normalize(e)
		}
		return result
	default:
		return v
	}
}
