package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

type Loader interface {
	Load(c context.Context) cartmodel.CartState
}

type Persister interface {
	Submit(state cartmodel.CartState)
}

type subscriber struct {
	id       int
	listener func(cartmodel.CartState)
}

// Store owns the state of one cart. Commands are applied one at a time, each
// committed state is handed to the persister and then to the subscribers.
type Store struct {
	key       string
	loader    Loader
	persister Persister
	logger    mylog.Logger

	mu           sync.Mutex
	constructed  bool
	state        cartmodel.CartState
	hydrating    bool
	hydrated     bool
	backlog      []Command
	hydratedChan chan struct{}
	subscribers  []subscriber
	lastID       int
}

// New builds an unhydrated store. A nil loader or persister disables that side of persistence.
func New(key string, loader Loader, persister Persister, logger mylog.Logger) *Store {
	return &Store{
		key:          key,
		loader:       loader,
		persister:    persister,
		logger:       logger,
		constructed:  true,
		state:        cartmodel.EmptyState(),
		hydratedChan: make(chan struct{}),
	}
}

func (s *Store) mustBeConstructed() {
	if s == nil || !s.constructed {
		panic("cart: Store used without being created by cart.New")
	}
}

func (s *Store) Key() string {
	s.mustBeConstructed()
	return s.key
}

// State returns a copy, callers can never change the store through it
func (s *Store) State() cartmodel.CartState {
	s.mustBeConstructed()
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

func (s *Store) Dispatch(cmd Command) cartmodel.CartState {
	s.mustBeConstructed()

	s.mu.Lock()
	s.state = Apply(s.state, cmd)
	if s.hydrated {
		s.persist(s.state)
	} else {
		// replayed on top of the stored state once it has been loaded
		s.backlog = append(s.backlog, cmd)
	}
	state := s.state.Clone()
	listeners := s.listeners()
	s.mu.Unlock()

	s.logger.Log(context.Background(), s.key, mylog.SeverityDebug, "Applied %s: %d items, final total %.2f", commandName(cmd), state.TotalItems, state.FinalTotal)
	notify(listeners, state)

	return state
}

func (s *Store) AddItem(item cartmodel.CartItem) cartmodel.CartState {
	return s.Dispatch(AddItem{Item: item})
}

func (s *Store) RemoveItem(id, itemType string) cartmodel.CartState {
	return s.Dispatch(RemoveItem{ID: id, Type: itemType})
}

func (s *Store) UpdateQuantity(id, itemType string, quantity int) cartmodel.CartState {
	return s.Dispatch(UpdateQuantity{ID: id, Type: itemType, Quantity: quantity})
}

func (s *Store) UpdateItem(id, itemType string, patch cartmodel.ItemPatch) cartmodel.CartState {
	return s.Dispatch(UpdateItem{ID: id, Type: itemType, Patch: patch})
}

func (s *Store) ClearCart() cartmodel.CartState {
	return s.Dispatch(ClearCart{})
}

func (s *Store) ApplyDiscount(code string, amount float64) cartmodel.CartState {
	return s.Dispatch(ApplyDiscount{Code: code, Amount: amount})
}

func (s *Store) RemoveDiscount() cartmodel.CartState {
	return s.Dispatch(RemoveDiscount{})
}

// Subscribe registers a listener that is called after every committed change
func (s *Store) Subscribe(listener func(cartmodel.CartState)) func() {
	s.mustBeConstructed()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	id := s.lastID
	s.subscribers = append(s.subscribers, subscriber{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			for idx, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:idx:idx], s.subscribers[idx+1:]...)
					return
				}
			}
		})
	}
}

// Hydrate starts loading the stored state in the background, only the first call has effect
func (s *Store) Hydrate(c context.Context) {
	s.mustBeConstructed()

	s.mu.Lock()
	if s.hydrating || s.hydrated {
		s.mu.Unlock()
		return
	}
	s.hydrating = true
	s.mu.Unlock()

	go s.hydrate(context.WithoutCancel(c))
}

func (s *Store) hydrate(c context.Context) {
	loaded := cartmodel.EmptyState()
	if s.loader != nil {
		loaded = s.loader.Load(c)
	}

	s.mu.Lock()
	state := Apply(loaded, hydrate{State: loaded})
	for _, cmd := range s.backlog {
		state = Apply(state, cmd)
	}
	replayed := len(s.backlog)
	s.backlog = nil
	s.state = state
	s.hydrating = false
	s.hydrated = true
	if replayed > 0 {
		s.persist(state)
	}
	state = state.Clone()
	listeners := s.listeners()
	close(s.hydratedChan)
	s.mu.Unlock()

	s.logger.Log(c, s.key, mylog.SeverityInfo, "Hydrated cart with %d items, replayed %d commands", len(state.Items), replayed)
	notify(listeners, state)
}

func (s *Store) Hydrated() bool {
	s.mustBeConstructed()
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hydrated
}

// WaitHydrated starts hydration when needed and blocks until it completed
func (s *Store) WaitHydrated(c context.Context) error {
	s.Hydrate(c)

	select {
	case <-s.hydratedChan:
		return nil
	default:
	}

	select {
	case <-s.hydratedChan:
		return nil
	case <-c.Done():
		return fmt.Errorf("waiting for cart %s to hydrate: %w", s.key, c.Err())
	}
}

// persist must be called with the lock held so snapshots are submitted in commit order
func (s *Store) persist(state cartmodel.CartState) {
	if s.persister != nil {
		s.persister.Submit(state.Clone())
	}
}

func (s *Store) listeners() []func(cartmodel.CartState) {
	listeners := make([]func(cartmodel.CartState), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		listeners = append(listeners, sub.listener)
	}
	return listeners
}

func notify(listeners []func(cartmodel.CartState), state cartmodel.CartState) {
	for _, listener := range listeners {
		listener(state.Clone())
	}
}

func commandName(cmd Command) string {
	name := fmt.Sprintf("%T", cmd)
	return name[strings.LastIndex(name, ".")+1:]
}
