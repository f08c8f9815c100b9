package rollout

import "time"

// SetClock replaces the time source used for restart annotations.
func (u *Updater) SetClock(now func() time.Time) {
	u.now = now
}
