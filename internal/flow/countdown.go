package flow

import (
	"context"
	"time"
)

// RunCountdown drives the machine's advisory countdown at one tick per
// second, invoking onTick with the time left after each tick. It
// returns when the context is cancelled or the machine leaves the
// locked/checked-out states (committed, expired or reset).
func (m *Machine) RunCountdown(ctx context.Context, onTick func(remaining time.Duration)) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			left := m.Tick(now)
			if onTick != nil {
				onTick(left)
			}
			if m.state != StateLocked && m.state != StateCheckedOut {
				return
			}
		}
	}
}
