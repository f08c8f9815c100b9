package health

import (
	"context"
	"time"
)

// SetSleep replaces the pause between attempts.
func (p *Poller) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	p.sleep = sleep
}
