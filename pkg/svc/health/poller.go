package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
)

// ErrUnhealthy is returned when no attempt reported healthy.
var ErrUnhealthy = errors.New("health check failed")

// ErrUnexpectedStatus reports a response that does not count as healthy.
var ErrUnexpectedStatus = errors.New("unexpected status")

// ErrInvalidPoller is returned for a poller without attempts or interval.
var ErrInvalidPoller = errors.New("invalid health poller")

const (
	minRequestTimeout = time.Second
	maxBodyExcerpt    = 200
)

// Doer sends HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Poller probes a URL until it answers with the expected status.
type Poller struct {
	Attempts int
	Interval time.Duration
	// ExpectedStatus is the required status code; zero accepts any 2xx.
	ExpectedStatus int
	// Client defaults to http.DefaultClient. Retries belong to the poll loop, not the client.
	Client Doer
	// OnFailure is called after every failed attempt.
	OnFailure func(attempt, attempts int, reason error)

	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller returns a poller configured from the project health section.
func NewPoller(cfg v1alpha1.Health) *Poller {
	return &Poller{
		Attempts:       cfg.Attempts,
		Interval:       cfg.Interval,
		ExpectedStatus: cfg.ExpectedStatus,
	}
}

// Wait probes url until it is healthy, the attempts run out, or ctx is done.
func (p *Poller) Wait(ctx context.Context, url string) error {
	if p.Attempts < 1 || p.Interval <= 0 {
		return fmt.Errorf("%w: attempts=%d interval=%s", ErrInvalidPoller, p.Attempts, p.Interval)
	}

	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		lastErr = p.probe(ctx, url)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnhealthy, url, ctx.Err())
		}

		if p.OnFailure != nil {
			p.OnFailure(attempt, p.Attempts, lastErr)
		}

		if attempt == p.Attempts {
			break
		}

		err := sleep(ctx, p.Interval)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnhealthy, url, err)
		}
	}

	return fmt.Errorf(
		"%w: %s after %d attempts (last: %w)",
		ErrUnhealthy, url, p.Attempts, lastErr,
	)
}

func (p *Poller) probe(ctx context.Context, url string) error {
	reqCtx, cancel := context.WithTimeout(ctx, max(p.Interval, minRequestTimeout))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	if p.healthy(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))

	body := strings.TrimSpace(string(excerpt))
	if body == "" {
		return fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, body)
}

func (p *Poller) healthy(code int) bool {
	if p.ExpectedStatus != 0 {
		return code == p.ExpectedStatus
	}

	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
