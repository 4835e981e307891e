package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/lib/mystore"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
	"github.com/MarcGrol/tripcart/services/cart/cartpersist"
)

type gatedLoader struct {
	release chan struct{}
	state   cartmodel.CartState
}

func newGatedLoader(state cartmodel.CartState) *gatedLoader {
	return &gatedLoader{release: make(chan struct{}), state: state}
}

func (l *gatedLoader) Load(c context.Context) cartmodel.CartState {
	<-l.release
	return l.state
}

type recordingPersister struct {
	sync.Mutex
	submitted []cartmodel.CartState
}

func (p *recordingPersister) Submit(state cartmodel.CartState) {
	p.Lock()
	defer p.Unlock()
	p.submitted = append(p.submitted, state)
}

func (p *recordingPersister) Submitted() []cartmodel.CartState {
	p.Lock()
	defer p.Unlock()
	return append([]cartmodel.CartState{}, p.submitted...)
}

func hydratedStore(t *testing.T, persister Persister) *Store {
	store := New("123", nil, persister, mylog.NewRecorder())
	require.NoError(t, store.WaitHydrated(context.TODO()))
	return store
}

func TestStore(t *testing.T) {
	c := context.TODO()

	t.Run("Commands are persisted after hydration", func(t *testing.T) {
		// given
		persister := &recordingPersister{}
		store := hydratedStore(t, persister)

		// when
		store.AddItem(hotel1())
		store.AddItem(tour1())
		store.ApplyDiscount("WELCOME10", 150)

		// then
		submitted := persister.Submitted()
		require.Len(t, submitted, 3)
		assert.Equal(t, store.State(), submitted[2])
		assert.Equal(t, 3508.0, store.State().FinalTotal)
	})

	t.Run("State is a copy", func(t *testing.T) {
		store := hydratedStore(t, nil)
		store.AddItem(hotel1())

		state := store.State()
		state.Items[0].Quantity = 42
		state.Items[0].Details["checkIn"] = "never"

		assert.Equal(t, 1, store.State().Items[0].Quantity)
		assert.Equal(t, "2026-05-01", store.State().Items[0].Details["checkIn"])
	})

	t.Run("Empty state before hydration", func(t *testing.T) {
		// given
		loader := newGatedLoader(applyAll(AddItem{Item: hotel1()}))
		store := New("123", loader, nil, mylog.NewRecorder())

		// when
		store.Hydrate(c)

		// then
		assert.False(t, store.Hydrated())
		assert.Equal(t, cartmodel.EmptyState(), store.State())

		close(loader.release)
		require.NoError(t, store.WaitHydrated(c))
		assert.True(t, store.Hydrated())
		assert.Equal(t, 1770.0, store.State().FinalTotal)
	})

	t.Run("Commands before hydration are replayed on the stored state", func(t *testing.T) {
		// given
		loader := newGatedLoader(applyAll(AddItem{Item: hotel1()}))
		persister := &recordingPersister{}
		store := New("123", loader, persister, mylog.NewRecorder())
		store.Hydrate(c)

		// when
		store.AddItem(tour1())
		store.AddItem(hotel1())

		// then nothing is persisted over the stored snapshot yet
		assert.Empty(t, persister.Submitted())
		assert.Equal(t, 3, store.State().TotalItems)

		// when
		close(loader.release)
		require.NoError(t, store.WaitHydrated(c))

		// then
		state := store.State()
		require.Len(t, state.Items, 2)
		assert.Equal(t, 2, state.Items[0].Quantity)
		assert.Equal(t, "hotel-1", state.Items[0].ID)
		assert.Equal(t, 4, state.TotalItems)
		submitted := persister.Submitted()
		require.Len(t, submitted, 1)
		assert.Equal(t, state, submitted[0])
	})

	t.Run("Hydration without commands does not persist", func(t *testing.T) {
		persister := &recordingPersister{}
		store := New("123", nil, persister, mylog.NewRecorder())

		require.NoError(t, store.WaitHydrated(c))

		assert.Empty(t, persister.Submitted())
	})

	t.Run("Wait for hydration honours context", func(t *testing.T) {
		loader := newGatedLoader(cartmodel.EmptyState())
		defer close(loader.release)
		store := New("123", loader, nil, mylog.NewRecorder())

		timeout, cancel := context.WithTimeout(c, 10*time.Millisecond)
		defer cancel()

		err := store.WaitHydrated(timeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Corrupt storage hydrates empty", func(t *testing.T) {
		// given
		records, cleanup, err := mystore.NewInMemoryStore[cartpersist.SlotRecord](c)
		require.NoError(t, err)
		defer cleanup()
		slot := cartpersist.NewStoreSlot(records)
		require.NoError(t, slot.Write(c, "cart-123", []byte("invalid json{{{")))

		store := New("123", cartpersist.New(slot, "cart-123", mylog.NewRecorder()), nil, mylog.NewRecorder())

		// when
		require.NoError(t, store.WaitHydrated(c))

		// then
		assert.Equal(t, []cartmodel.CartItem{}, store.State().Items)
	})
}

func TestStoreSubscriptions(t *testing.T) {
	t.Run("Subscribers are notified in order", func(t *testing.T) {
		// given
		store := hydratedStore(t, nil)
		calls := []string{}
		store.Subscribe(func(state cartmodel.CartState) { calls = append(calls, "badge") })
		store.Subscribe(func(state cartmodel.CartState) { calls = append(calls, "page") })

		// when
		store.AddItem(hotel1())

		// then
		assert.Equal(t, []string{"badge", "page"}, calls)
	})

	t.Run("Subscriber sees the committed state", func(t *testing.T) {
		store := hydratedStore(t, nil)
		var seen cartmodel.CartState
		store.Subscribe(func(state cartmodel.CartState) { seen = state })

		store.AddItem(hotel1())

		assert.Equal(t, store.State(), seen)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		// given
		store := hydratedStore(t, nil)
		count := 0
		unsubscribe := store.Subscribe(func(state cartmodel.CartState) { count++ })
		store.AddItem(hotel1())

		// when
		unsubscribe()
		unsubscribe()
		store.AddItem(hotel1())

		// then
		assert.Equal(t, 1, count)
	})

	t.Run("Subscriber may dispatch", func(t *testing.T) {
		store := hydratedStore(t, nil)
		store.Subscribe(func(state cartmodel.CartState) {
			if state.DiscountCode == "" && len(state.Items) > 0 {
				store.ApplyDiscount("AUTO", 10)
			}
		})

		store.AddItem(hotel1())

		assert.Equal(t, 1760.0, store.State().FinalTotal)
	})

	t.Run("Hydration notifies", func(t *testing.T) {
		loader := newGatedLoader(applyAll(AddItem{Item: hotel1()}))
		store := New("123", loader, nil, mylog.NewRecorder())
		notified := make(chan cartmodel.CartState, 1)
		store.Subscribe(func(state cartmodel.CartState) { notified <- state })

		store.Hydrate(context.TODO())
		close(loader.release)

		state := <-notified
		assert.Equal(t, 1, state.TotalItems)
	})
}

func TestMisuse(t *testing.T) {
	t.Run("Zero value store", func(t *testing.T) {
		assert.Panics(t, func() { (&Store{}).State() })
		assert.Panics(t, func() { (&Store{}).AddItem(hotel1()) })
	})

	t.Run("Nil store", func(t *testing.T) {
		var store *Store
		assert.Panics(t, func() { store.Dispatch(ClearCart{}) })
	})

	t.Run("Queries without store", func(t *testing.T) {
		assert.Panics(t, func() { NewQueries(nil) })
		assert.Panics(t, func() { (&Queries{}).ItemCount() })
	})
}

func TestQueries(t *testing.T) {
	// given
	store := hydratedStore(t, nil)
	queries := NewQueries(store)
	assert.Equal(t, 0, queries.ItemCount())
	assert.Equal(t, 0.0, queries.TotalPrice())

	// when
	store.AddItem(hotel1())
	store.AddItem(tour1())
	store.ApplyDiscount("WELCOME10", 150)

	// then
	assert.Equal(t, 3, queries.ItemCount())
	assert.Equal(t, 3508.0, queries.TotalPrice())
	assert.True(t, queries.IsInCart("tour-1"))
	assert.False(t, queries.IsInCart("flight-1"))
	assert.Equal(t, cartmodel.DefaultCurrency, queries.Currency())
}
