package mystore

import (
	"context"
	"reflect"
	"sync"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()
	defer s.Unlock()

	// Within this block everything is transactional
	return f(context.WithValue(c, ctxTransactionKey{}, true))
}

func (s *InMemoryStore[T]) lock(c context.Context) func() {
	if c.Value(ctxTransactionKey{}) != nil {
		// lock already held by RunInTransaction
		return func() {}
	}
	s.Lock()
	return s.Unlock
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	unlock := s.lock(c)
	defer unlock()

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	unlock := s.lock(c)
	defer unlock()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	unlock := s.lock(c)
	defer unlock()

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

// Query only supports equality filters on struct fields, ordering is ignored
func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := []T{}
	for _, v := range all {
		if matches(v, filters) {
			result = append(result, v)
		}
	}
	return result, nil
}

func matches(value any, filters []Filter) bool {
	rv := reflect.Indirect(reflect.ValueOf(value))
	if rv.Kind() != reflect.Struct {
		return len(filters) == 0
	}

	for _, f := range filters {
		if f.Compare != "=" {
			continue
		}
		field := rv.FieldByName(f.Field)
		if !field.IsValid() || !reflect.DeepEqual(field.Interface(), f.Value) {
			return false
		}
	}
	return true
}
