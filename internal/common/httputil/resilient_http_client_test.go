package httputil_test

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matthew11K/group-watcher/internal/common/httputil"
	"github.com/Matthew11K/group-watcher/internal/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// lenientConfig retries but practically never opens the breaker.
func lenientConfig() *config.Config {
	return &config.Config{
		ExternalRequestTimeout:     time.Second,
		RetryCount:                 3,
		RetryBackoff:               10 * time.Millisecond,
		RetryableStatusCodes:       []int{408, 429, 500, 502, 503, 504},
		CBSlidingWindowSize:        60,
		CBMinimumRequiredCalls:     100,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 1,
		CBWaitDurationInOpenState:  time.Second,
	}
}

// strictConfig opens the breaker on the first failed call.
func strictConfig() *config.Config {
	return &config.Config{
		ExternalRequestTimeout:     time.Second,
		RetryCount:                 0,
		RetryBackoff:               10 * time.Millisecond,
		RetryableStatusCodes:       []int{500, 502, 503, 504},
		CBSlidingWindowSize:        60,
		CBMinimumRequiredCalls:     1,
		CBFailureRateThreshold:     100,
		CBPermittedCallsInHalfOpen: 1,
		CBWaitDurationInOpenState:  100 * time.Millisecond,
	}
}

// flakyGateway answers with the given statuses in order and 200 afterwards.
func flakyGateway(t *testing.T, statuses ...int) (server *httptest.Server, calls *atomic.Int32) {
	t.Helper()

	calls = &atomic.Int32{}

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	return server, calls
}

func TestResilientClient_RetriesGatewayFailures(t *testing.T) {
	server, calls := flakyGateway(t, http.StatusServiceUnavailable, http.StatusBadGateway)

	client := httputil.CreateResilientHTTPClient(lenientConfig(), newTestLogger(), "platform_gateway")

	resp, err := client.R().Get(server.URL + "/v1/dialogs")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilientClient_RetriesTooManyRequests(t *testing.T) {
	server, calls := flakyGateway(t, http.StatusTooManyRequests)

	client := httputil.CreateResilientHTTPClient(lenientConfig(), newTestLogger(), "platform_gateway")

	resp, err := client.R().Get(server.URL + "/v1/dialogs")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(2), calls.Load())
}

func TestResilientClient_ClientErrorsAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server, calls := flakyGateway(t, status)

			client := httputil.CreateResilientHTTPClient(lenientConfig(), newTestLogger(), "platform_gateway_resolve")

			resp, err := client.R().Post(server.URL + "/v1/entities/resolve")
			require.NoError(t, err)

			assert.Equal(t, status, resp.StatusCode())
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestResilientClient_OpenBreakerFailsFast(t *testing.T) {
	server, calls := flakyGateway(t, http.StatusInternalServerError, http.StatusInternalServerError)

	client := httputil.CreateResilientHTTPClient(strictConfig(), newTestLogger(), "platform_gateway")

	_, err := client.R().Get(server.URL + "/v1/dialogs")
	require.Error(t, err)

	start := time.Now()
	_, err = client.R().Get(server.URL + "/v1/dialogs")

	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "ожидалась ошибка открытого circuit breaker, получено: %v", err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResilientClient_BreakerRecoversAfterWait(t *testing.T) {
	server, calls := flakyGateway(t, http.StatusInternalServerError)

	cfg := strictConfig()
	client := httputil.CreateResilientHTTPClient(cfg, newTestLogger(), "platform_gateway")

	_, err := client.R().Get(server.URL + "/v1/dialogs")
	require.Error(t, err)

	time.Sleep(cfg.CBWaitDurationInOpenState + 50*time.Millisecond)

	resp, err := client.R().Get(server.URL + "/v1/dialogs")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(2), calls.Load())
}

func TestResilientClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	server, calls := flakyGateway(t, http.StatusNotFound, http.StatusNotFound, http.StatusNotFound)

	client := httputil.CreateResilientHTTPClient(strictConfig(), newTestLogger(), "platform_gateway_resolve")

	for range 3 {
		resp, err := client.R().Post(server.URL + "/v1/entities/resolve")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	}

	resp, err := client.R().Post(server.URL + "/v1/entities/resolve")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(4), calls.Load())
}

func TestResilientClient_TimesOutSlowGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := lenientConfig()
	cfg.ExternalRequestTimeout = 50 * time.Millisecond
	cfg.RetryCount = 0

	client := httputil.CreateResilientHTTPClient(cfg, newTestLogger(), "platform_gateway_slow")

	start := time.Now()
	_, err := client.R().Get(server.URL + "/v1/events?timeout=1")

	require.Error(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}
