package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "propadmin/pkg/domain-errors"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := newBreaker(3, time.Minute)

	assert.False(t, b.recordFailure())
	assert.False(t, b.recordFailure())
	assert.True(t, b.recordFailure(), "third failure should open")
	assert.True(t, b.isOpen())
	assert.False(t, b.recordFailure(), "already open, no transition")
}

func TestBreakerResponseResetsStreak(t *testing.T) {
	b := newBreaker(3, time.Minute)

	b.recordFailure()
	b.recordFailure()
	b.recordSuccess()
	assert.False(t, b.recordFailure())
	assert.False(t, b.recordFailure())
	assert.False(t, b.isOpen())
}

func TestBreakerProbesOncePerCooldown(t *testing.T) {
	now := time.Now()
	b := newBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.recordFailure()
	require.True(t, b.isOpen())

	assert.False(t, b.allow(), "cooldown has not elapsed")

	now = now.Add(time.Minute)
	assert.True(t, b.allow(), "probe after cooldown")
	assert.False(t, b.allow(), "only one probe per window")

	assert.True(t, b.recordSuccess())
	assert.False(t, b.isOpen())
	assert.True(t, b.allow())
}

type failingTransport struct {
	calls atomic.Int64
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func TestClientFailsFastWhenCircuitOpen(t *testing.T) {
	rt := &failingTransport{}
	client, err := New("http://backend.invalid",
		WithHTTPTransport(rt),
		WithCircuitBreaker(2, time.Minute),
	)
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		_, err := client.Profile(ctx)
		require.Error(t, err)
	}
	require.EqualValues(t, 2, rt.calls.Load())

	// Circuit is open now; requests fail without touching the transport.
	_, err = client.Profile(ctx)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.EqualValues(t, 2, rt.calls.Load())
}

func TestClientClosesCircuitOnProbeResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, handler, WithCircuitBreaker(1, time.Minute))

	client.breaker.recordFailure()
	require.True(t, client.breaker.isOpen())

	// Force the probe window open and let one request through. Even a 401
	// proves the backend is reachable.
	client.breaker.nextProbe = time.Now().Add(-time.Second)
	_, err := client.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.False(t, client.breaker.isOpen())
}
