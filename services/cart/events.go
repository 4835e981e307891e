package cart

import (
	"context"
	"fmt"

	"github.com/MarcGrol/tripcart/lib/myerrors"
	"github.com/MarcGrol/tripcart/lib/myhttp"
	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart/cartevents"
	"github.com/MarcGrol/tripcart/services/checkoutevents"
)

func (s *service) Subscribe(c context.Context) error {
	err := s.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %w", cartevents.TopicName, err)
	}

	err = s.pubsub.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/cart/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %w", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityDebug, "Checkout started for cart %s", event.CheckoutUID)
	return nil
}

// OnCheckoutCompleted empties the cart after a successful order, redelivery is harmless
func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "Checkout completed for cart %s -> %s", event.CheckoutUID, event.CheckoutStatus)

	if !event.Success() {
		// the user can retry with the same cart
		return nil
	}

	store, found, err := s.sessions.Lookup(c, event.CheckoutUID)
	if err != nil {
		return myerrors.NewUnavailableError(err)
	}
	if !found {
		s.logger.Log(c, event.CheckoutUID, mylog.SeverityInfo, "No cart %s to clear", event.CheckoutUID)
		return nil
	}
	err = store.WaitHydrated(c)
	if err != nil {
		return myerrors.NewUnavailableError(err)
	}

	state := store.State()
	if len(state.Items) == 0 && state.DiscountAmount == nil {
		return nil
	}

	store.ClearCart()

	err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartCleared{
		CartUID: event.CheckoutUID,
		Reason:  event.GetEventTypeName(),
	})
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}
