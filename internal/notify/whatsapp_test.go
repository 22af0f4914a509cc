package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *WhatsAppClient {
	logger := zerolog.Nop()
	c := NewWhatsAppClient(baseURL, "secret-token", &logger)
	c.delays = []time.Duration{time.Millisecond, time.Millisecond}
	return c
}

func TestSend(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/messages", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.Send(context.Background(), "11999990000", "olá")
	require.NoError(t, err)
	assert.Equal(t, "11999990000", got.Phone)
	assert.Equal(t, "olá", got.Message)
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestSendRetriesTransientFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.Send(context.Background(), "11999990000", "olá")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.Send(context.Background(), "11999990000", "olá")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway returned 500")
	assert.Equal(t, 3, calls) // initial attempt + two retries
}

func TestSendHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.delays = []time.Duration{time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Send(ctx, "11999990000", "olá")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNoopLogsOnly(t *testing.T) {
	logger := zerolog.Nop()
	n := &Noop{Logger: &logger}
	assert.NoError(t, n.Send(context.Background(), "11999990000", "olá"))
}
