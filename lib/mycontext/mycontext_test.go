package mycontext

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceContext(t *testing.T) {
	t.Run("Trace from cloud header", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "tripcart")

		request, err := http.NewRequest(http.MethodGet, "/api/cart/123", nil)
		assert.NoError(t, err)
		request.Header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b12000100000/1;o=1")

		c := ContextFromHTTPRequest(request)
		assert.Equal(t, "projects/tripcart/traces/105445aa7843bc8bf206b12000100000", TraceFrom(c))
	})

	t.Run("No trace header", func(t *testing.T) {
		request, err := http.NewRequest(http.MethodGet, "/api/cart/123", nil)
		assert.NoError(t, err)

		assert.Equal(t, "", TraceFrom(ContextFromHTTPRequest(request)))
	})

	t.Run("Background context", func(t *testing.T) {
		assert.Equal(t, "", TraceFrom(context.Background()))
		assert.Equal(t, "abc", TraceFrom(WithTrace(context.Background(), "abc")))
	})
}
