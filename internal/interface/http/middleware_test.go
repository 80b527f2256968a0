package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/safetravels/internal/infra/config"
	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

func TestClientLimiterRefillsPerKey(t *testing.T) {
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	limiter := newClientLimiter(60, 2, func() time.Time { return now })

	_, ok := limiter.take("sub:fleet-a")
	require.True(t, ok)
	_, ok = limiter.take("sub:fleet-a")
	require.True(t, ok)
	wait, ok := limiter.take("sub:fleet-a")
	require.False(t, ok)
	require.Equal(t, time.Second, wait)

	_, ok = limiter.take("sub:fleet-b")
	require.True(t, ok, "buckets are independent")

	now = now.Add(time.Second)
	_, ok = limiter.take("sub:fleet-a")
	require.True(t, ok)
}

func TestClientLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	limiter := newClientLimiter(60, 1, func() time.Time { return now })

	limiter.take("ip:10.0.0.1")
	now = now.Add(10 * time.Minute)
	limiter.take("ip:10.0.0.2")

	require.Len(t, limiter.buckets, 1)
	require.Contains(t, limiter.buckets, "ip:10.0.0.2")
}

func TestDomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Wrap(apperrors.CodeInvalidInput, "latitude out of range", nil), http.StatusBadRequest, "invalid_request"},
		{apperrors.Wrap(apperrors.CodeUpstream, "places down", nil), http.StatusBadGateway, apperrors.CodeUpstream},
		{apperrors.Wrap(apperrors.CodeCatalogUnavailable, "no catalog", nil), http.StatusServiceUnavailable, apperrors.CodeCatalogUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, "route_analysis_failed"},
	}
	for _, tc := range cases {
		got := domainError("route_analysis_failed", tc.err)
		require.Equal(t, tc.status, got.status, tc.err.Error())
		require.Equal(t, tc.code, got.code, tc.err.Error())
		require.NotEmpty(t, got.message)
	}
}

func TestRetryReplaysUpstreamFailures(t *testing.T) {
	var bodies []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("X-Attempt", "2")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	handler := retryUpstreamFailures(next, config.RetryConfig{Enabled: true, MaxAttempts: 3}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/stops/nearby", bytes.NewBufferString(`{"latitude":1}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"ok":true}`, rec.Body.String())
	require.Equal(t, "2", rec.Header().Get("X-Attempt"))
	require.Equal(t, []string{`{"latitude":1}`, `{"latitude":1}`}, bodies)
}

func TestRetryLeavesClientErrorsAlone(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})
	handler := retryUpstreamFailures(next, config.RetryConfig{Enabled: true, MaxAttempts: 3}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/risk/assess", bytes.NewBufferString(`{}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, calls)
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	handler := retryUpstreamFailures(next, config.RetryConfig{Enabled: true, MaxAttempts: 2}, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/stops/fuel", bytes.NewBufferString(`{}`)))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, 2, calls)
}

func TestAllowOrigin(t *testing.T) {
	origin, ok := allowOrigin("https://dispatch.example.com", nil)
	require.True(t, ok)
	require.Equal(t, "*", origin)

	allowed := []string{"https://dispatch.example.com"}
	origin, ok = allowOrigin("https://DISPATCH.example.com", allowed)
	require.True(t, ok)
	require.Equal(t, "https://DISPATCH.example.com", origin)

	_, ok = allowOrigin("https://evil.example.com", allowed)
	require.False(t, ok)
}
