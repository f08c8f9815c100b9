// Package httpclient builds the retrying HTTP client shared by the Kong, Watchtower and
// GitHub integrations.
package httpclient

import (
	"net/http"
	"time"

	"github.com/devantler-tech/deployctl/pkg/client/netretry"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRetryMax is the number of retries after the first attempt.
	DefaultRetryMax = 3
	// DefaultRetryWaitMin is the first backoff delay.
	DefaultRetryWaitMin = 500 * time.Millisecond
	// DefaultRetryWaitMax caps the backoff delay.
	DefaultRetryWaitMax = 5 * time.Second
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 30 * time.Second
)

// Options configures a client. Zero values select the defaults; RetryMax below zero disables retries.
type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	Logger       logrus.FieldLogger
}

// Factory builds HTTP clients.
type Factory func(opts Options) *http.Client

// New returns an *http.Client that retries transient failures of idempotent requests with
// exponential backoff. POST requests are sent once.
// After the last retry the final response is returned as-is so callers can report its status.
func New(opts Options) *http.Client {
	client := retryablehttp.NewClient()

	client.RetryMax = DefaultRetryMax

	switch {
	case opts.RetryMax < 0:
		client.RetryMax = 0
	case opts.RetryMax > 0:
		client.RetryMax = opts.RetryMax
	}

	client.RetryWaitMin = orDefault(opts.RetryWaitMin, DefaultRetryWaitMin)
	client.RetryWaitMax = orDefault(opts.RetryWaitMax, DefaultRetryWaitMax)
	client.HTTPClient.Timeout = orDefault(opts.Timeout, DefaultTimeout)
	client.CheckRetry = netretry.CheckRetry
	client.Backoff = netretry.Backoff
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if opts.Logger != nil {
		client.Logger = NewLeveledLogger(opts.Logger)
	} else {
		client.Logger = nil
	}

	standard := client.StandardClient()
	standard.Transport = methodRecorder{next: standard.Transport}

	return standard
}

// methodRecorder stores the request method in the request context, which is the only
// request data retryablehttp hands to CheckRetry when the transport fails.
type methodRecorder struct {
	next http.RoundTripper
}

func (m methodRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.next.RoundTrip(req.WithContext(netretry.WithMethod(req.Context(), req.Method)))
}

// NewFactory returns a Factory whose clients log through logger unless the options name another.
func NewFactory(logger logrus.FieldLogger) Factory {
	return func(opts Options) *http.Client {
		if opts.Logger == nil {
			opts.Logger = logger
		}

		return New(opts)
	}
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}

	return value
}
