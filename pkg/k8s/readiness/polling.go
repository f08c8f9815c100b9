package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// DefaultPollInterval is the fixed interval between readiness checks.
const DefaultPollInterval = 2 * time.Second

// PollForReadiness calls check every interval until it reports done, returns an error,
// or deadline elapses. The first check runs immediately.
func PollForReadiness(
	ctx context.Context,
	interval time.Duration,
	deadline time.Duration,
	check func(ctx context.Context) (bool, error),
) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	err := wait.PollUntilContextTimeout(ctx, interval, deadline, true, check)
	if err == nil {
		return nil
	}

	if wait.Interrupted(err) && ctx.Err() == nil {
		return fmt.Errorf("%w after %s", ErrTimeoutExceeded, deadline)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("poll cancelled: %w", err)
	}

	return err
}
