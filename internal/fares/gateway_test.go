package fares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skazar/farelock/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHTTPGateway_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quotes/q-1", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"origin": "AMS",
			"destination": "LIS",
			"carrier": "TP",
			"fare_class": "Y",
			"adults": 2,
			"price_cents": 100000,
			"currency": "USD"
		}`))
	}))
	defer server.Close()

	gateway := NewHTTPGateway(server.URL, 2*time.Second)
	quote, err := gateway.Quote(context.Background(), "q-1")

	assert.NoError(t, err)
	assert.Equal(t, "q-1", quote.Ref)
	assert.Equal(t, "AMS", quote.Origin)
	assert.Equal(t, int64(100000), quote.PriceCents)
	assert.Equal(t, 2, quote.Adults)
}

func TestHTTPGateway_Quote_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	gateway := NewHTTPGateway(server.URL, 2*time.Second)
	quote, err := gateway.Quote(context.Background(), "gone")

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHTTPGateway_Quote_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gateway := NewHTTPGateway(server.URL, 2*time.Second)
	quote, err := gateway.Quote(context.Background(), "q-1")

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestHTTPGateway_Quote_ProviderDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	gateway := NewHTTPGateway(server.URL, 2*time.Second)
	quote, err := gateway.Quote(context.Background(), "q-1")

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestHTTPGateway_Quote_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"price_cents": "not a number"`))
	}))
	defer server.Close()

	gateway := NewHTTPGateway(server.URL, 2*time.Second)
	quote, err := gateway.Quote(context.Background(), "q-1")

	assert.Nil(t, quote)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
