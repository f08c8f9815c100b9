package health_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devantler-tech/deployctl/pkg/apis/project/v1alpha1"
	"github.com/devantler-tech/deployctl/pkg/svc/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)

	return nil
}

func newServer(t *testing.T, healthyAfter int32, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < healthyAfter || healthyAfter == 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("warming up"))

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestWait_SucceedsWhenEndpointRecovers(t *testing.T) {
	t.Parallel()

	server, calls := newServer(t, 3, http.StatusServiceUnavailable)
	recorder := &sleepRecorder{}

	var failures []int

	poller := health.NewPoller(v1alpha1.Health{Attempts: 5, Interval: 2 * time.Second})
	poller.SetSleep(recorder.sleep)
	poller.OnFailure = func(attempt, _ int, _ error) { failures = append(failures, attempt) }

	require.NoError(t, poller.Wait(context.Background(), server.URL))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []int{1, 2}, failures)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, recorder.calls)
}

func TestWait_GivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	server, calls := newServer(t, 0, http.StatusServiceUnavailable)
	recorder := &sleepRecorder{}

	poller := health.NewPoller(v1alpha1.Health{Attempts: 4, Interval: time.Second})
	poller.SetSleep(recorder.sleep)

	err := poller.Wait(context.Background(), server.URL)

	require.ErrorIs(t, err, health.ErrUnhealthy)
	require.ErrorIs(t, err, health.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Contains(t, err.Error(), "503: warming up")
	assert.Equal(t, int32(4), calls.Load())
	assert.Len(t, recorder.calls, 3)
}

func TestWait_ExpectedStatus(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, 0, http.StatusNoContent)

	poller := health.NewPoller(v1alpha1.Health{Attempts: 1, Interval: time.Second, ExpectedStatus: http.StatusNoContent})

	require.NoError(t, poller.Wait(context.Background(), server.URL))
}

func TestWait_ConnectionErrorsCountAsFailures(t *testing.T) {
	t.Parallel()

	server, _ := newServer(t, 0, http.StatusOK)
	url := server.URL
	server.Close()

	poller := health.NewPoller(v1alpha1.Health{Attempts: 2, Interval: time.Millisecond})
	poller.SetSleep((&sleepRecorder{}).sleep)

	err := poller.Wait(context.Background(), url)

	require.ErrorIs(t, err, health.ErrUnhealthy)
}

func TestWait_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	server, calls := newServer(t, 0, http.StatusServiceUnavailable)

	ctx, cancel := context.WithCancel(context.Background())

	poller := health.NewPoller(v1alpha1.Health{Attempts: 10, Interval: time.Second})
	poller.SetSleep(func(context.Context, time.Duration) error {
		cancel()

		return context.Canceled
	})

	err := poller.Wait(ctx, server.URL)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWait_RejectsInvalidPoller(t *testing.T) {
	t.Parallel()

	poller := &health.Poller{Attempts: 0, Interval: time.Second}

	require.ErrorIs(t, poller.Wait(context.Background(), "http://127.0.0.1"), health.ErrInvalidPoller)
}
