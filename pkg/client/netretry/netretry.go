// Package netretry classifies transient network failures for the HTTP clients that
// talk to Kong, Watchtower and GitHub.
package netretry

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"syscall"
	"time"
)

// httpStatusCodePattern matches 5xx gateway codes at word boundaries so ports like ":5000" do not match.
var httpStatusCodePattern = regexp.MustCompile(`\b50[0-4]\b`)

//nolint:gochecknoglobals // immutable lookup table
var transientMessages = []string{
	"Internal Server Error", "Bad Gateway",
	"Service Unavailable", "Gateway Timeout",
	"connection reset by peer", "connection refused",
	"i/o timeout", "TLS handshake timeout",
	"unexpected EOF", "no such host",
	"Client.Timeout exceeded",
}

// IsRetryable reports whether err looks like a transient network failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	errMsg := err.Error()

	for _, pattern := range transientMessages {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return httpStatusCodePattern.MatchString(errMsg)
}

// IsRetryableStatus reports whether an HTTP status is worth another attempt.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

type methodKey struct{}

// WithMethod records the HTTP method of the request carried by ctx for CheckRetry.
func WithMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey{}, method)
}

// IsIdempotent reports whether a request with method may be sent twice without a second effect.
// PATCH counts because every PATCH deployctl sends replaces fields with fixed values.
func IsIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions,
		http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// CheckRetry has the signature of retryablehttp.CheckRetry.
// Context cancellation always stops retrying, and requests whose method WithMethod
// recorded as non-idempotent are never retried: the server may already have acted on them.
func CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if method, ok := ctx.Value(methodKey{}).(string); ok && !IsIdempotent(method) {
		return false, nil
	}

	if err != nil {
		return IsRetryable(err), nil
	}

	if resp == nil {
		return false, nil
	}

	return IsRetryableStatus(resp.StatusCode), nil
}

// ExponentialDelay returns min(baseWait * 2^(attempt-1), maxWait).
func ExponentialDelay(
	attempt int,
	baseWait, maxWait time.Duration,
) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	return min(baseWait*time.Duration(1<<(attempt-1)), maxWait)
}

// Backoff has the signature of retryablehttp.Backoff. The attempt number it receives starts at zero.
func Backoff(minWait, maxWait time.Duration, attemptNum int, _ *http.Response) time.Duration {
	return ExponentialDelay(attemptNum+1, minWait, maxWait)
}
