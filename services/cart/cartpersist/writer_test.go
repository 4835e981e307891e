package cartpersist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

func TestWriter(t *testing.T) {
	c := context.TODO()

	t.Run("Flush writes the latest snapshot", func(t *testing.T) {
		// given
		adapter := New(newStoreSlot(t), "cart-1", mylog.NewRecorder())
		writer := NewWriter(adapter, mylog.NewRecorder())
		defer writer.Close()

		// when
		for quantity := 1; quantity <= 10; quantity++ {
			state := exampleState()
			state.Items[0].Quantity = quantity
			writer.Submit(state)
		}
		require.NoError(t, writer.Flush(c))

		// then
		assert.Equal(t, 10, adapter.Load(c).Items[0].Quantity)
	})

	t.Run("Close writes pending snapshot", func(t *testing.T) {
		// given
		adapter := New(newStoreSlot(t), "cart-1", mylog.NewRecorder())
		writer := NewWriter(adapter, mylog.NewRecorder())

		// when
		writer.Submit(exampleState())
		require.NoError(t, writer.Close())

		// then
		assert.Equal(t, exampleState(), adapter.Load(c))
	})

	t.Run("Submit after close is dropped", func(t *testing.T) {
		// given
		adapter := New(newStoreSlot(t), "cart-1", mylog.NewRecorder())
		logger := mylog.NewRecorder()
		writer := NewWriter(adapter, logger)
		require.NoError(t, writer.Close())

		// when
		writer.Submit(exampleState())

		// then
		assert.NoError(t, writer.Flush(c))
		assert.Equal(t, cartmodel.EmptyState(), adapter.Load(c))
		assert.Len(t, logger.WithSeverity(mylog.SeverityWarn), 1)
	})

	t.Run("Write failure is logged only", func(t *testing.T) {
		// given
		logger := mylog.NewRecorder()
		writer := NewWriter(New(brokenSlot{}, "cart-1", mylog.NewRecorder()), logger)
		defer writer.Close()

		// when
		writer.Submit(exampleState())
		require.NoError(t, writer.Flush(c))

		// then
		assert.Len(t, logger.WithSeverity(mylog.SeverityError), 1)
	})

	t.Run("Flush honours cancelled context", func(t *testing.T) {
		writer := NewWriter(New(newStoreSlot(t), "cart-1", mylog.NewRecorder()), mylog.NewRecorder())
		defer writer.Close()

		cancelled, cancel := context.WithCancel(c)
		cancel()

		// either the flush was already picked up or the cancellation wins
		err := writer.Flush(cancelled)
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	})
}
