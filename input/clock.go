package input

import (
	"context"
	"time"
)

// GateWidth is the high time of internally generated clock pulses
const GateWidth = 10 * time.Millisecond

// InternalClock generates clock edges at a fixed tempo, for running
// without an external clock source
type InternalClock struct {
	BPM int
}

// Interval returns the time between rising edges (one per quarter note)
func (c InternalClock) Interval() time.Duration {
	if c.BPM <= 0 {
		return 0
	}
	return time.Minute / time.Duration(c.BPM)
}

// Run feeds rising and falling clock edges to sink until ctx is done
// (blocking - run in goroutine)
func (c InternalClock) Run(ctx context.Context, sink func(Edge)) {
	interval := c.Interval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	width := min(GateWidth, interval/2)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sink(Edge{Line: LineClock, High: true, At: now})

			select {
			case <-ctx.Done():
				return
			case <-time.After(width):
				sink(Edge{Line: LineClock, High: false, At: time.Now()})
			}
		}
	}
}
