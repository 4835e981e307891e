package checkoutevents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/tripcart/lib/myerrors"
	"github.com/MarcGrol/tripcart/lib/myevents"
)

type recordingService struct {
	started   []CheckoutStarted
	completed []CheckoutCompleted
}

func (s *recordingService) Subscribe(c context.Context) error {
	return nil
}

func (s *recordingService) OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error {
	s.started = append(s.started, event)
	return nil
}

func (s *recordingService) OnCheckoutCompleted(c context.Context, topic string, event CheckoutCompleted) error {
	s.completed = append(s.completed, event)
	return nil
}

func pushRequest(t *testing.T, event myevents.Event) *bytes.Reader {
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	body, err := myevents.NewPushRequest(myevents.EventEnvelope{
		UID:           "1",
		Topic:         TopicName,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}, "checkout-cart")
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestDispatchEvent(t *testing.T) {
	c := context.TODO()

	t.Run("Checkout completed", func(t *testing.T) {
		// given
		service := &recordingService{}
		event := CheckoutCompleted{CheckoutUID: "123", ProviderName: "stripe", CheckoutStatus: CheckoutStatusSuccess}

		// when
		err := DispatchEvent(c, pushRequest(t, event), service)

		// then
		require.NoError(t, err)
		assert.Equal(t, []CheckoutCompleted{event}, service.completed)
		assert.True(t, service.completed[0].Success())
	})

	t.Run("Checkout started", func(t *testing.T) {
		service := &recordingService{}
		event := CheckoutStarted{CheckoutUID: "123", AmountInCents: 177000, Currency: "TRY"}

		err := DispatchEvent(c, pushRequest(t, event), service)

		require.NoError(t, err)
		assert.Equal(t, []CheckoutStarted{event}, service.started)
	})

	t.Run("Unknown event", func(t *testing.T) {
		body, err := myevents.NewPushRequest(myevents.EventEnvelope{EventTypeName: "checkout.refunded"}, "checkout-cart")
		require.NoError(t, err)

		err = DispatchEvent(c, bytes.NewReader(body), &recordingService{})

		assert.Equal(t, http.StatusNotImplemented, myerrors.GetHTTPStatus(err))
	})

	t.Run("Invalid body", func(t *testing.T) {
		err := DispatchEvent(c, strings.NewReader("invalid json{{{"), &recordingService{})

		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
	})
}
