package features

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/lib/mystore"
	"github.com/MarcGrol/tripcart/services/cart"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
	"github.com/MarcGrol/tripcart/services/cart/cartpersist"
)

const sessionUID = "feature"

type cartTestContext struct {
	c        context.Context
	slot     cartpersist.Slot
	sessions *cart.Sessions
	store    *cart.Store
}

func (tc *cartTestContext) reset() error {
	if tc.sessions != nil {
		tc.sessions.Close()
	}
	tc.c = context.Background()
	records, _, err := mystore.NewInMemoryStore[cartpersist.SlotRecord](tc.c)
	if err != nil {
		return err
	}
	tc.slot = cartpersist.NewStoreSlot(records)
	tc.sessions = nil
	tc.store = nil
	return nil
}

func (tc *cartTestContext) open() error {
	logger := mylog.NewRecorder()
	tc.sessions = cart.NewSessions(cart.SlotAdapters(tc.slot, logger), logger)
	tc.store = tc.sessions.Get(tc.c, sessionUID)
	return tc.store.WaitHydrated(tc.c)
}

func (tc *cartTestContext) anEmptyCart() error {
	return tc.open()
}

func (tc *cartTestContext) theStoredSnapshotIs(payload string) error {
	return tc.slot.Write(tc.c, cart.SessionKey(sessionUID), []byte(payload))
}

func (tc *cartTestContext) theCartIsHydrated() error {
	return tc.open()
}

func (tc *cartTestContext) theCartIsRestarted() error {
	tc.sessions.Close()
	return tc.open()
}

func (tc *cartTestContext) iAddItem(id, itemType string, price float64, quantity int) error {
	tc.store.AddItem(cartmodel.CartItem{ID: id, Type: itemType, Price: price, Quantity: quantity, Currency: cartmodel.DefaultCurrency})
	return nil
}

func (tc *cartTestContext) iRemove(id string) error {
	tc.store.RemoveItem(id, "")
	return nil
}

func (tc *cartTestContext) iSetTheQuantity(id string, quantity int) error {
	tc.store.UpdateQuantity(id, "", quantity)
	return nil
}

func (tc *cartTestContext) iApplyDiscount(code string, amount float64) error {
	tc.store.ApplyDiscount(code, amount)
	return nil
}

func (tc *cartTestContext) iRemoveTheDiscount() error {
	tc.store.RemoveDiscount()
	return nil
}

func expectAmount(name string, expected, actual float64) error {
	if expected != actual {
		return fmt.Errorf("expected %s %v, got %v", name, expected, actual)
	}
	return nil
}

func (tc *cartTestContext) theTotalPriceIs(expected float64) error {
	return expectAmount("total price", expected, tc.store.State().TotalPrice)
}

func (tc *cartTestContext) theTaxAmountIs(expected float64) error {
	return expectAmount("tax amount", expected, tc.store.State().TaxAmount)
}

func (tc *cartTestContext) theFinalTotalIs(expected float64) error {
	return expectAmount("final total", expected, cart.NewQueries(tc.store).TotalPrice())
}

func (tc *cartTestContext) theDiscountAmountIs(expected float64) error {
	amount := tc.store.State().DiscountAmount
	if amount == nil {
		return fmt.Errorf("expected discount amount %v, got none", expected)
	}
	return expectAmount("discount amount", expected, *amount)
}

func (tc *cartTestContext) theCartHasItems(expected int) error {
	actual := cart.NewQueries(tc.store).ItemCount()
	if actual != expected {
		return fmt.Errorf("expected %d items, got %d", expected, actual)
	}
	return nil
}

func (tc *cartTestContext) theCartHasEntries(expected int) error {
	actual := len(tc.store.State().Items)
	if actual != expected {
		return fmt.Errorf("expected %d entries, got %d", expected, actual)
	}
	return nil
}

func (tc *cartTestContext) theQuantityIs(id string, expected int) error {
	item, found := tc.store.State().Find(id, "")
	if !found {
		return fmt.Errorf("item %s not in cart", id)
	}
	if item.Quantity != expected {
		return fmt.Errorf("expected quantity %d for %s, got %d", expected, id, item.Quantity)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^the stored snapshot is "([^"]*)"$`, tc.theStoredSnapshotIs)

	// When steps
	ctx.Step(`^I add "([^"]*)" of type "([^"]*)" priced (\d+(?:\.\d+)?) with quantity (-?\d+)$`, tc.iAddItem)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantity)
	ctx.Step(`^I apply discount "([^"]*)" of (\d+(?:\.\d+)?)$`, tc.iApplyDiscount)
	ctx.Step(`^I remove the discount$`, tc.iRemoveTheDiscount)
	ctx.Step(`^the cart is hydrated$`, tc.theCartIsHydrated)
	ctx.Step(`^the cart is restarted$`, tc.theCartIsRestarted)

	// Then steps
	ctx.Step(`^the total price is (\d+(?:\.\d+)?)$`, tc.theTotalPriceIs)
	ctx.Step(`^the tax amount is (\d+(?:\.\d+)?)$`, tc.theTaxAmountIs)
	ctx.Step(`^the final total is (\d+(?:\.\d+)?)$`, tc.theFinalTotalIs)
	ctx.Step(`^the discount amount is (\d+(?:\.\d+)?)$`, tc.theDiscountAmountIs)
	ctx.Step(`^the cart has (\d+) items$`, tc.theCartHasItems)
	ctx.Step(`^the cart has (\d+) entries$`, tc.theCartHasEntries)
	ctx.Step(`^the quantity of "([^"]*)" is (\d+)$`, tc.theQuantityIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
