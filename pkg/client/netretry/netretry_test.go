package netretry_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/devantler-tech/deployctl/pkg/client/netretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errGeneric         = errors.New("something went wrong")
	errNotFound        = errors.New("404 Not Found")
	errUnauthorized    = errors.New("unauthorized: admin token rejected")
	errConnectPort5000 = errors.New("connect to registry:5000")
	errUpstream502     = errors.New("kong returned 502")
	errBadGateway      = errors.New("response: Bad Gateway error occurred")
	errConnReset       = errors.New(
		"read tcp 10.1.0.115:37414->98.84.224.111:443: read: connection reset by peer",
	)
	errIOTimeout = errors.New(
		"net/http: request canceled (Client.Timeout exceeded): i/o timeout",
	)
	errAwaitingHeaders = errors.New(
		"context deadline exceeded (Client.Timeout exceeded while awaiting headers)",
	)
	errUnexpectedEOF = errors.New("unexpected EOF")
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errGeneric, expected: false},
		{name: "404 not found", err: errNotFound, expected: false},
		{name: "auth error", err: errUnauthorized, expected: false},
		{name: "port 5000 not matched", err: errConnectPort5000, expected: false},
		{name: "502 code", err: errUpstream502, expected: true},
		{name: "502 text", err: errBadGateway, expected: true},
		{name: "connection reset text", err: errConnReset, expected: true},
		{name: "connection refused errno", err: fmt.Errorf("dial: %w", syscall.ECONNREFUSED), expected: true},
		{name: "i/o timeout", err: errIOTimeout, expected: true},
		{name: "client timeout", err: errAwaitingHeaders, expected: true},
		{name: "unexpected EOF", err: errUnexpectedEOF, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, netretry.IsRetryable(tt.err))
		})
	}
}

func TestCheckRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   *http.Response
		err    error
		expect bool
	}{
		{name: "ok", resp: &http.Response{StatusCode: http.StatusOK}, expect: false},
		{name: "not found", resp: &http.Response{StatusCode: http.StatusNotFound}, expect: false},
		{name: "service unavailable", resp: &http.Response{StatusCode: http.StatusServiceUnavailable}, expect: true},
		{name: "too many requests", resp: &http.Response{StatusCode: http.StatusTooManyRequests}, expect: true},
		{name: "transient error", err: errConnReset, expect: true},
		{name: "permanent error", err: errUnauthorized, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			retry, err := netretry.CheckRetry(context.Background(), tt.resp, tt.err)

			require.NoError(t, err)
			assert.Equal(t, tt.expect, retry)
		})
	}
}

func TestCheckRetry_OnlyRetriesIdempotentMethods(t *testing.T) {
	t.Parallel()

	unavailable := &http.Response{StatusCode: http.StatusServiceUnavailable}

	tests := []struct {
		method string
		expect bool
	}{
		{method: http.MethodGet, expect: true},
		{method: http.MethodPut, expect: true},
		{method: http.MethodPatch, expect: true},
		{method: http.MethodPost, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			ctx := netretry.WithMethod(context.Background(), tt.method)

			retry, err := netretry.CheckRetry(ctx, nil, errConnReset)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, retry, "connection reset")

			retry, err = netretry.CheckRetry(ctx, unavailable, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, retry, "503")
		})
	}
}

func TestCheckRetry_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retry, err := netretry.CheckRetry(ctx, nil, errConnReset)

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, retry)
}

func TestExponentialDelay(t *testing.T) {
	t.Parallel()

	baseWait := 2 * time.Second
	maxWait := 15 * time.Second

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "zero attempt treated as first", attempt: 0, expected: 2 * time.Second},
		{name: "first attempt", attempt: 1, expected: 2 * time.Second},
		{name: "third attempt", attempt: 3, expected: 8 * time.Second},
		{name: "capped", attempt: 10, expected: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, netretry.ExponentialDelay(tt.attempt, baseWait, maxWait))
		})
	}
}

func TestBackoff_StartsAtMinimum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, netretry.Backoff(time.Second, 10*time.Second, 0, nil))
	assert.Equal(t, 4*time.Second, netretry.Backoff(time.Second, 10*time.Second, 2, nil))
}
