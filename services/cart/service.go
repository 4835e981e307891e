package cart

import (
	"context"
	"fmt"

	"github.com/MarcGrol/tripcart/lib/myerrors"
	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/lib/mypublisher"
	"github.com/MarcGrol/tripcart/lib/mypubsub"
	"github.com/MarcGrol/tripcart/lib/myuuid"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

type service struct {
	sessions  *Sessions
	uuider    myuuid.UUIDer
	publisher mypublisher.Publisher
	pubsub    mypubsub.PubSub
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(sessions *Sessions, uuider myuuid.UUIDer, publisher mypublisher.Publisher, pubsub mypubsub.PubSub, logger mylog.Logger) *service {
	return &service{
		sessions:  sessions,
		uuider:    uuider,
		publisher: publisher,
		pubsub:    pubsub,
		logger:    logger,
	}
}

func (s *service) createSession(c context.Context) string {
	sessionUID := s.uuider.Create()
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Creating new cart session %s", sessionUID)

	s.sessions.Get(c, sessionUID)

	return sessionUID
}

func (s *service) store(c context.Context, sessionUID string) (*Store, error) {
	store := s.sessions.Get(c, sessionUID)
	err := store.WaitHydrated(c)
	if err != nil {
		return nil, myerrors.NewUnavailableError(err)
	}
	return store, nil
}

// existingStore serves the read side, unknown sessions are not created
func (s *service) existingStore(c context.Context, sessionUID string) (*Store, error) {
	store, found, err := s.sessions.Lookup(c, sessionUID)
	if err != nil {
		return nil, myerrors.NewUnavailableError(err)
	}
	if !found {
		return nil, myerrors.NewNotFoundError(fmt.Errorf("cart session %s not found", sessionUID))
	}
	err = store.WaitHydrated(c)
	if err != nil {
		return nil, myerrors.NewUnavailableError(err)
	}
	return store, nil
}

func (s *service) getCart(c context.Context, sessionUID string) (cartmodel.CartState, error) {
	store, err := s.existingStore(c, sessionUID)
	if err != nil {
		return cartmodel.CartState{}, err
	}
	return store.State(), nil
}

func (s *service) dispatch(c context.Context, sessionUID string, cmd Command) (cartmodel.CartState, error) {
	lookup := s.existingStore
	if growsCart(cmd) {
		lookup = s.store
	}
	store, err := lookup(c, sessionUID)
	if err != nil {
		return cartmodel.CartState{}, err
	}
	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Apply %s on cart %s", commandName(cmd), sessionUID)

	return store.Dispatch(cmd), nil
}

// growsCart tells the commands that can turn an unknown session into a non-empty cart
func growsCart(cmd Command) bool {
	switch cmd.(type) {
	case AddItem, ApplyDiscount:
		return true
	default:
		return false
	}
}

type summary struct {
	ItemCount  int     `json:"itemCount"`
	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency"`
}

func (s *service) getSummary(c context.Context, sessionUID string) (summary, error) {
	store, err := s.existingStore(c, sessionUID)
	if err != nil {
		return summary{}, err
	}
	queries := NewQueries(store)

	return summary{
		ItemCount:  queries.ItemCount(),
		TotalPrice: queries.TotalPrice(),
		Currency:   queries.Currency(),
	}, nil
}

func (s *service) isInCart(c context.Context, sessionUID string, itemID string) (bool, error) {
	store, err := s.existingStore(c, sessionUID)
	if err != nil {
		return false, err
	}
	return NewQueries(store).IsInCart(itemID), nil
}
