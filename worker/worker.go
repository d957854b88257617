package worker

import (
	"context"
	"time"
)

// Worker a long-running background worker
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker drives a work function on a short tick, backing off while
// the function reports errors (including "nothing to do").
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

// StartTick run fn until ctx is done
func (w *TickWorker) StartTick(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := w.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	errDelay := w.ErrDelay
	if errDelay <= 0 {
		errDelay = 500 * time.Millisecond
	}

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := fn(ctx); err == nil {
				dur = delay
			} else {
				dur = errDelay
			}
		}
	}
}
