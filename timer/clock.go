package timer

import (
	"context"
	"time"
)

const (
	DEFAULT_PERIOD     = 500 * time.Nanosecond // 2 MHz fMASTER.
	DEFAULT_RESOLUTION = time.Millisecond      // Host wakeup granularity.
)

// Clock feeds a timer with input ticks from the host wall clock.
type Clock struct {
	Period     time.Duration // Duration of one input tick.
	Resolution time.Duration // Interval between host wakeups.
}

// Run steps tim with elapsed wall clock time until ctx is done.
func (clk *Clock) Run(ctx context.Context, tim *Timer) (err error) {
	period := clk.Period
	if period <= 0 {
		period = DEFAULT_PERIOD
	}
	resolution := clk.Resolution
	if resolution <= 0 {
		resolution = DEFAULT_RESOLUTION
	}

	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	last := time.Now()
	var carry time.Duration
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last) + carry
			last = now
			ticks := elapsed / period
			carry = elapsed % period
			for ticks > 0 {
				step := min(ticks, time.Duration(^uint32(0)))
				tim.Step(uint32(step))
				ticks -= step
			}
		}
	}
}
