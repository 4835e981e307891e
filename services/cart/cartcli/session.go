package cartcli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
	"github.com/MarcGrol/tripcart/services/cart/cartpersist"
)

func openSlot(opts *RootOptions) (cartpersist.Slot, error) {
	switch opts.Storage {
	case "sqlite":
		path := opts.Path
		if path == "" {
			path = filepath.Join("data", "carts.db")
		}
		return cartpersist.NewSQLiteSlot(path)
	default:
		path := opts.Path
		if path == "" {
			path = "data"
		}
		return cartpersist.NewFileSlot(path)
	}
}

// withCart hydrates the cart of the session, runs f and waits for the result to be stored
func withCart(c context.Context, opts *RootOptions, f func(store *cart.Store) cartmodel.CartState) (cartmodel.CartState, error) {
	slot, err := openSlot(opts)
	if err != nil {
		return cartmodel.CartState{}, err
	}
	defer slot.Close()

	logger := mylog.New("cartctl")
	adapter := cartpersist.New(slot, cart.SessionKey(opts.Session), logger)
	writer := cartpersist.NewWriter(adapter, logger)
	defer writer.Close()

	store := cart.New(opts.Session, adapter, writer, logger)
	err = store.WaitHydrated(c)
	if err != nil {
		return cartmodel.CartState{}, err
	}

	state := f(store)

	err = writer.Flush(c)
	if err != nil {
		return cartmodel.CartState{}, fmt.Errorf("error storing cart: %w", err)
	}
	return state, nil
}
