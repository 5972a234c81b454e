package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Run(t *testing.T) {
	assert := assert.New(t)

	tim := NewTimer(2)

	fired := make(chan struct{}, 1)
	tim.Interrupt = func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	// 1000 ticks of 1us: about a millisecond.
	arm(tim, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := &Clock{Period: time.Microsecond, Resolution: time.Millisecond}
	done := make(chan error)
	go func() {
		done <- clk.Run(ctx, tim)
	}()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("compare interrupt never requested")
	}

	cancel()
	assert.ErrorIs(<-done, context.Canceled)
	assert.Equal(1, tim.Matches())
}

func TestClock_Defaults(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	clk := &Clock{}
	err := clk.Run(ctx, NewTimer(3))
	assert.ErrorIs(err, context.DeadlineExceeded)
}
