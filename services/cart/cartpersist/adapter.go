package cartpersist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart/cartcodec"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
	"github.com/MarcGrol/tripcart/services/cart/carttotals"
)

// Adapter loads and saves the snapshot of a single cart
type Adapter struct {
	slot   Slot
	key    string
	logger mylog.Logger
}

func New(slot Slot, key string, logger mylog.Logger) *Adapter {
	return &Adapter{
		slot:   slot,
		key:    key,
		logger: logger,
	}
}

func (a *Adapter) Key() string {
	return a.key
}

// Load never fails: a missing or unreadable snapshot yields the empty state
func (a *Adapter) Load(c context.Context) cartmodel.CartState {
	data, found, err := a.slot.Read(c, a.key)
	if err != nil {
		a.logger.Log(c, a.key, mylog.SeverityError, "Error reading snapshot: %s", err)
		return cartmodel.EmptyState()
	}
	if !found {
		a.logger.Log(c, a.key, mylog.SeverityDebug, "No snapshot found")
		return cartmodel.EmptyState()
	}

	state, err := Unmarshal(data)
	if err != nil {
		a.logger.Log(c, a.key, mylog.SeverityWarn, "Discarding malformed snapshot: %s", err)
		return cartmodel.EmptyState()
	}
	a.logger.Log(c, a.key, mylog.SeverityDebug, "Loaded snapshot with %d items", len(state.Items))

	return state
}

// Exists reports whether a snapshot has ever been written for the key
func (a *Adapter) Exists(c context.Context) (bool, error) {
	_, found, err := a.slot.Read(c, a.key)
	if err != nil {
		return false, fmt.Errorf("error reading snapshot %s: %w", a.key, err)
	}
	return found, nil
}

func (a *Adapter) Save(c context.Context, state cartmodel.CartState) error {
	data, err := Marshal(state)
	if err != nil {
		return err
	}
	return a.slot.Write(c, a.key, data)
}

// Marshal writes the snapshot as indented json with a trailing newline
func Marshal(state cartmodel.CartState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

type snapshot struct {
	Items          []json.RawMessage `json:"items"`
	Currency       string            `json:"currency"`
	DiscountCode   string            `json:"discountCode"`
	DiscountAmount *float64          `json:"discountAmount"`
}

// Unmarshal parses a snapshot. Stored totals are ignored and derived from the items again.
func Unmarshal(data []byte) (cartmodel.CartState, error) {
	s := snapshot{}
	err := json.Unmarshal(data, &s)
	if err != nil {
		return cartmodel.CartState{}, fmt.Errorf("error parsing snapshot: %w", err)
	}

	state := cartmodel.EmptyState()
	if s.Currency != "" {
		state.Currency = s.Currency
	}
	state.DiscountCode = s.DiscountCode
	state.DiscountAmount = s.DiscountAmount

	for idx, raw := range s.Items {
		item, err := cartcodec.DecodeJSON(raw)
		if err != nil {
			return cartmodel.CartState{}, fmt.Errorf("error decoding item %d: %w", idx, err)
		}
		state.Items = merge(state.Items, item)
	}

	return state.WithTotals(carttotals.Compute(state.Items, state.DiscountAmount)), nil
}

// merge folds an entry into an existing one with the same identity
func merge(items []cartmodel.CartItem, item cartmodel.CartItem) []cartmodel.CartItem {
	for idx, existing := range items {
		if existing.Matches(item.ID, item.Type) {
			items[idx].Quantity = cartmodel.AddQuantity(existing.Quantity, item.Quantity)
			return items
		}
	}
	return append(items, item)
}
