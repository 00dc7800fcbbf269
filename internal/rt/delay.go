package rt

import (
	"context"
	"time"
)

// Delay resolves once, no earlier than its duration after creation.
type Delay struct {
	timer *time.Timer
}

// NewDelay returns a Delay that resolves after d. A zero or negative d
// resolves as soon as the scheduler gets to it.
func NewDelay(d time.Duration) *Delay {
	return &Delay{timer: time.NewTimer(d)}
}

// C returns the channel the resolution instant is delivered on.
func (d *Delay) C() <-chan time.Time {
	return d.timer.C
}

// Wait blocks until the delay resolves or ctx is done. On ctx cancellation
// the timer is stopped.
func (d *Delay) Wait(ctx context.Context) (time.Time, error) {
	select {
	case t := <-d.timer.C:
		return t, nil
	case <-ctx.Done():
		d.Stop()
		return time.Time{}, ctx.Err()
	}
}

// Reset re-arms the delay to resolve dur from now, discarding any pending
// resolution.
func (d *Delay) Reset(dur time.Duration) {
	d.timer.Reset(dur)
}

// Stop releases the timer. Calling Stop more than once is harmless.
func (d *Delay) Stop() {
	d.timer.Stop()
}

// Sleep pauses the calling goroutine for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	delay := NewDelay(d)
	defer delay.Stop()

	_, err := delay.Wait(ctx)
	return err
}
