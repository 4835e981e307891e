package cartpersist

import (
	"context"
	"fmt"

	"github.com/MarcGrol/tripcart/lib/mystore"
)

// Slot is a durable key-value location holding one serialized snapshot per key
type Slot interface {
	Read(c context.Context, key string) ([]byte, bool, error)
	Write(c context.Context, key string, data []byte) error
	Close() error
}

type SlotRecord struct {
	Key     string
	Payload string `datastore:",noindex"`
}

type storeSlot struct {
	store mystore.Store[SlotRecord]
}

// NewStoreSlot keeps snapshots in a mystore, in-memory or datastore depending on the environment
func NewStoreSlot(store mystore.Store[SlotRecord]) Slot {
	return &storeSlot{
		store: store,
	}
}

func (s *storeSlot) Read(c context.Context, key string) ([]byte, bool, error) {
	record, found, err := s.store.Get(c, key)
	if err != nil {
		return nil, false, fmt.Errorf("error reading snapshot %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return []byte(record.Payload), true, nil
}

func (s *storeSlot) Write(c context.Context, key string, data []byte) error {
	err := s.store.Put(c, key, SlotRecord{Key: key, Payload: string(data)})
	if err != nil {
		return fmt.Errorf("error writing snapshot %s: %w", key, err)
	}
	return nil
}

func (s *storeSlot) Close() error {
	return nil
}
