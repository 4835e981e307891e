package cart

import (
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

// Command is the closed set of mutations a Store accepts
type Command interface {
	isCommand()
}

type AddItem struct {
	Item cartmodel.CartItem
}

// RemoveItem drops every entry with ID, an empty Type matches all types
type RemoveItem struct {
	ID   string
	Type string
}

type UpdateQuantity struct {
	ID       string
	Type     string
	Quantity int
}

type UpdateItem struct {
	ID    string
	Type  string
	Patch cartmodel.ItemPatch
}

type ClearCart struct{}

type ApplyDiscount struct {
	Code   string
	Amount float64
}

type RemoveDiscount struct{}

// hydrate replaces the state with what was loaded from storage
type hydrate struct {
	State cartmodel.CartState
}

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (UpdateItem) isCommand()     {}
func (ClearCart) isCommand()      {}
func (ApplyDiscount) isCommand()  {}
func (RemoveDiscount) isCommand() {}
func (hydrate) isCommand()        {}
