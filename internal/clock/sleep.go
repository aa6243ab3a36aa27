// Package clock contains small time helpers shared by the long-running loops.
package clock

import (
	"context"
	"time"
)

// SleepWithContext blocks for d, or until ctx ends, whichever comes first.
// It returns ctx.Err() when the wait was cut short.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
