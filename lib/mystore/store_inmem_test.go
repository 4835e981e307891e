package mystore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type record struct {
	UID       string
	Payload   string
	Published bool
}

var (
	record1 = record{UID: "123", Payload: `{"items":[]}`}
	record2 = record{UID: "456", Payload: `{"items":[]}`, Published: true}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	s, cleanup, err := NewInMemoryStore[record](c)
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := s.Get(c, record1.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		assert.NoError(t, s.Put(c, record1.UID, record1))
		assert.NoError(t, s.Put(c, record2.UID, record2))
	})

	t.Run("Get found", func(t *testing.T) {
		r, found, err := s.Get(c, record1.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, record1, r)
	})

	t.Run("List", func(t *testing.T) {
		all, err := s.List(c)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []record{record1, record2}, all)
	})

	t.Run("Query on field", func(t *testing.T) {
		unpublished, err := s.Query(c, []Filter{{Field: "Published", Compare: "=", Value: false}}, "UID")
		assert.NoError(t, err)
		assert.Equal(t, []record{record1}, unpublished)
	})

	t.Run("Transaction commits", func(t *testing.T) {
		err := s.RunInTransaction(c, func(c context.Context) error {
			r, found, err := s.Get(c, record1.UID)
			assert.NoError(t, err)
			assert.True(t, found)

			r.Published = true
			return s.Put(c, r.UID, r)
		})
		assert.NoError(t, err)

		r, _, _ := s.Get(c, record1.UID)
		assert.True(t, r.Published)
	})

	t.Run("Transaction returns error", func(t *testing.T) {
		err := s.RunInTransaction(c, func(c context.Context) error {
			return fmt.Errorf("boom")
		})
		assert.EqualError(t, err, "boom")

		// lock must have been released
		assert.NoError(t, s.Put(c, "789", record{UID: "789"}))
	})
}
