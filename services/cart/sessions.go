package cart

import (
	"context"
	"sync"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart/cartpersist"
)

type AdapterFactory func(key string) *cartpersist.Adapter

// SlotAdapters stores every cart session in the same slot
func SlotAdapters(slot cartpersist.Slot, logger mylog.Logger) AdapterFactory {
	return func(key string) *cartpersist.Adapter {
		return cartpersist.New(slot, key, logger)
	}
}

func SessionKey(sessionUID string) string {
	return "cart-" + sessionUID
}

type session struct {
	store  *Store
	writer *cartpersist.Writer
}

// Sessions keeps one hydrated Store per cart session
type Sessions struct {
	factory AdapterFactory
	logger  mylog.Logger

	mu       sync.Mutex
	sessions map[string]session
}

func NewSessions(factory AdapterFactory, logger mylog.Logger) *Sessions {
	return &Sessions{
		factory:  factory,
		logger:   logger,
		sessions: map[string]session{},
	}
}

// Get returns the store of the session, creating and hydrating it on first use
func (s *Sessions) Get(c context.Context, sessionUID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found := s.sessions[sessionUID]
	if found {
		return existing.store
	}
	return s.open(c, sessionUID, s.factory(SessionKey(sessionUID)))
}

// Lookup only returns sessions that are open or have been persisted before,
// so reading an unknown uid allocates nothing
func (s *Sessions) Lookup(c context.Context, sessionUID string) (*Store, bool, error) {
	s.mu.Lock()
	existing, found := s.sessions[sessionUID]
	s.mu.Unlock()
	if found {
		return existing.store, true, nil
	}

	adapter := s.factory(SessionKey(sessionUID))
	exists, err := adapter.Exists(c)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// opened concurrently while the slot was read
	existing, found = s.sessions[sessionUID]
	if found {
		return existing.store, true, nil
	}
	return s.open(c, sessionUID, adapter), true, nil
}

// open must be called with mu held
func (s *Sessions) open(c context.Context, sessionUID string, adapter *cartpersist.Adapter) *Store {
	writer := cartpersist.NewWriter(adapter, s.logger)
	store := New(sessionUID, adapter, writer, s.logger)
	store.Hydrate(c)

	s.sessions[sessionUID] = session{store: store, writer: writer}
	s.logger.Log(c, sessionUID, mylog.SeverityDebug, "Opened cart session %s", sessionUID)

	return store
}

// Flush waits until all sessions have been hydrated and written
func (s *Sessions) Flush(c context.Context) error {
	for _, sess := range s.all() {
		err := sess.store.WaitHydrated(c)
		if err != nil {
			return err
		}
		err = sess.writer.Flush(c)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close persists what is pending and forgets all sessions
func (s *Sessions) Close() {
	s.Shutdown(context.Background())
}

// Shutdown is Close bounded by c, a session still hydrating when c ends is
// closed with whatever it has dispatched so far
func (s *Sessions) Shutdown(c context.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]session{}
	s.mu.Unlock()

	for uid, sess := range sessions {
		// a replayed backlog is submitted when hydration completes
		err := sess.store.WaitHydrated(c)
		if err != nil {
			s.logger.Log(c, uid, mylog.SeverityError, "Error waiting for hydration of cart session %s: %s", uid, err)
		}
		err = sess.writer.Close()
		if err != nil {
			s.logger.Log(c, uid, mylog.SeverityError, "Error closing writer of cart session %s: %s", uid, err)
		}
		s.logger.Log(c, uid, mylog.SeverityDebug, "Closed cart session %s", uid)
	}
}

func (s *Sessions) all() []session {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		result = append(result, sess)
	}
	return result
}
