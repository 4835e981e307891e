package cartcodec

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

func TestDecode(t *testing.T) {
	t.Run("Minimal item gets defaults", func(t *testing.T) {
		// when
		item, err := Decode(map[string]any{"id": "hotel-1", "type": "hotel", "price": 1500.0})

		// then
		require.NoError(t, err)
		assert.Equal(t, cartmodel.CartItem{
			ID:       "hotel-1",
			Type:     "hotel",
			Price:    1500,
			Currency: "TRY",
			Quantity: 1,
		}, item)
	})

	t.Run("Unknown keys are carried as details", func(t *testing.T) {
		// when
		item, err := Decode(map[string]any{
			"id":             "tour-1",
			"type":           "tour",
			"title":          "Cappadocia balloon tour",
			"price":          800,
			"quantity":       2,
			"currency":       "EUR",
			"originalPrice":  "950",
			"date":           "2026-06-01",
			"bookingDetails": map[string]any{"guests": 2},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "EUR", item.Currency)
		require.NotNil(t, item.OriginalPrice)
		assert.Equal(t, 950.0, *item.OriginalPrice)
		assert.Equal(t, map[string]any{
			"date":           "2026-06-01",
			"bookingDetails": map[string]any{"guests": 2},
		}, item.Details)
	})

	t.Run("Quantity normalization", func(t *testing.T) {
		testCases := []struct {
			name     string
			quantity any
			expected int
		}{
			{name: "absent", quantity: nil, expected: 1},
			{name: "zero", quantity: 0, expected: 1},
			{name: "negative", quantity: -3, expected: 1},
			{name: "not a number", quantity: "many", expected: 1},
			{name: "fraction", quantity: 2.7, expected: 2},
			{name: "numeric string", quantity: "3", expected: 3},
			{name: "beyond int range", quantity: 1e30, expected: cartmodel.MaxQuantity},
			{name: "beyond int64 as string", quantity: "9223372036854775808", expected: cartmodel.MaxQuantity},
			{name: "huge json number", quantity: json.Number("1e300"), expected: cartmodel.MaxQuantity},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				item, err := Decode(map[string]any{"id": "x", "type": "tour", "price": 1, "quantity": tc.quantity})
				require.NoError(t, err)
				assert.Equal(t, tc.expected, item.Quantity)
			})
		}
	})

	t.Run("Validation", func(t *testing.T) {
		testCases := []struct {
			name  string
			raw   map[string]any
			field string
		}{
			{name: "nil payload", raw: nil, field: ""},
			{name: "missing id", raw: map[string]any{"type": "hotel", "price": 1}, field: "id"},
			{name: "blank id", raw: map[string]any{"id": " ", "type": "hotel", "price": 1}, field: "id"},
			{name: "numeric id", raw: map[string]any{"id": 12, "type": "hotel", "price": 1}, field: "id"},
			{name: "missing type", raw: map[string]any{"id": "x", "price": 1}, field: "type"},
			{name: "missing price", raw: map[string]any{"id": "x", "type": "hotel"}, field: "price"},
			{name: "negative price", raw: map[string]any{"id": "x", "type": "hotel", "price": -1}, field: "price"},
			{name: "price not a number", raw: map[string]any{"id": "x", "type": "hotel", "price": "cheap"}, field: "price"},
			{name: "bad original price", raw: map[string]any{"id": "x", "type": "hotel", "price": 1, "originalPrice": true}, field: "originalPrice"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := Decode(tc.raw)

				decodeErr := &DecodeError{}
				require.True(t, errors.As(err, &decodeErr))
				assert.Equal(t, tc.field, decodeErr.Field)
			})
		}
	})

	t.Run("Zero price is valid", func(t *testing.T) {
		item, err := Decode(map[string]any{"id": "transfer-1", "type": "transfer", "price": 0})
		require.NoError(t, err)
		assert.Equal(t, 0.0, item.Price)
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		item, err := DecodeJSON([]byte(`{"id":"hotel-1","type":"hotel","price":1500,"nights":3}`))
		require.NoError(t, err)
		assert.Equal(t, 1500.0, item.Price)
		assert.Equal(t, map[string]any{"nights": 3.0}, item.Details)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`invalid json{{{`))
		assert.Error(t, err)
	})

	t.Run("Not an object", func(t *testing.T) {
		_, err := DecodeJSON([]byte(`[1,2]`))
		assert.Error(t, err)
	})
}

func TestDecodeForm(t *testing.T) {
	t.Run("Form values", func(t *testing.T) {
		// given
		values := url.Values{
			"id":               {"car-1"},
			"type":             {"car-rental"},
			"title":            {"Compact car"},
			"price":            {"450.50"},
			"quantity":         {"2"},
			"details[pickup]":  {"IST"},
			"details[dropoff]": {"SAW"},
		}

		// when
		item, err := DecodeForm(values)

		// then
		require.NoError(t, err)
		assert.Equal(t, "car-rental", item.Type)
		assert.Equal(t, 450.5, item.Price)
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, "TRY", item.Currency)
		assert.Equal(t, map[string]any{"pickup": "IST", "dropoff": "SAW"}, item.Details)
	})

	t.Run("Missing price", func(t *testing.T) {
		_, err := DecodeForm(url.Values{"id": {"car-1"}, "type": {"car-rental"}})
		assert.Error(t, err)
	})
}

func TestEncode(t *testing.T) {
	// given
	raw := map[string]any{
		"id":       "hotel-1",
		"type":     "hotel",
		"title":    "Bosphorus View Hotel",
		"price":    1500.0,
		"currency": "TRY",
		"quantity": 1,
		"checkIn":  "2026-05-01",
	}
	item, err := Decode(raw)
	require.NoError(t, err)

	// when
	encoded := Encode(item)

	// then
	assert.Equal(t, raw, encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, item, decoded)
}

func TestDecodePatch(t *testing.T) {
	t.Run("Partial fields", func(t *testing.T) {
		// when
		patch, err := DecodePatch(map[string]any{
			"id":             "ignored",
			"type":           "ignored",
			"price":          1200,
			"bookingDetails": map[string]any{"guests": 3},
		})

		// then
		require.NoError(t, err)
		require.NotNil(t, patch.Price)
		assert.Equal(t, 1200.0, *patch.Price)
		assert.Nil(t, patch.Title)
		assert.Nil(t, patch.Quantity)
		assert.Equal(t, map[string]any{"bookingDetails": map[string]any{"guests": 3}}, patch.Details)
	})

	t.Run("Title and quantity", func(t *testing.T) {
		patch, err := DecodePatchJSON([]byte(`{"title":"Suite","quantity":0}`))
		require.NoError(t, err)
		assert.Equal(t, "Suite", *patch.Title)
		assert.Equal(t, 1, *patch.Quantity)
	})

	t.Run("Negative price", func(t *testing.T) {
		_, err := DecodePatch(map[string]any{"price": -5})
		assert.Error(t, err)
	})

	t.Run("Quantity beyond maximum", func(t *testing.T) {
		patch, err := DecodePatchJSON([]byte(`{"quantity":18446744073709551616}`))
		require.NoError(t, err)
		assert.Equal(t, cartmodel.MaxQuantity, *patch.Quantity)
	})

	t.Run("Quantity not a number", func(t *testing.T) {
		_, err := DecodePatch(map[string]any{"quantity": "lots"})
		assert.Error(t, err)
	})
}
