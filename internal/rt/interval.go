package rt

import (
	"context"
	"iter"
	"time"
)

// MissedTickBehavior controls how an Interval catches up after the consumer
// fell behind by one or more whole periods.
type MissedTickBehavior int

const (
	// MissedTickSkip drops the missed ticks and resumes on the next period
	// boundary, keeping ticks aligned to the original schedule.
	MissedTickSkip MissedTickBehavior = iota
	// MissedTickBurst fires every missed tick back-to-back until caught up.
	MissedTickBurst
	// MissedTickDelay schedules the next tick one period after the late one.
	MissedTickDelay
)

func (b MissedTickBehavior) String() string {
	switch b {
	case MissedTickSkip:
		return "skip"
	case MissedTickBurst:
		return "burst"
	case MissedTickDelay:
		return "delay"
	default:
		return "unknown"
	}
}

// Interval produces an unbounded sequence of ticks. The sequence is lazy: a
// tick is only scheduled while a caller is waiting in Tick, and it ends when
// the caller stops asking.
//
// An Interval is not safe for concurrent use.
type Interval struct {
	period   time.Duration
	next     time.Time
	behavior MissedTickBehavior
	timer    *time.Timer
}

// NewInterval returns an Interval whose first tick is due one period from
// now. It panics if period is not positive.
func NewInterval(period time.Duration) *Interval {
	return NewIntervalAt(period, period)
}

// NewIntervalAt returns an Interval whose first tick is due startSinceNow
// from now, with later ticks every period. It panics if period is not
// positive.
func NewIntervalAt(startSinceNow, period time.Duration) *Interval {
	if period <= 0 {
		panic("rt: interval period must be positive")
	}

	return &Interval{
		period: period,
		next:   time.Now().Add(startSinceNow),
		timer:  time.NewTimer(startSinceNow),
	}
}

// Period returns the configured tick period.
func (i *Interval) Period() time.Duration {
	return i.period
}

// SetMissedTickBehavior changes the catch-up policy. The default is
// MissedTickSkip.
func (i *Interval) SetMissedTickBehavior(b MissedTickBehavior) {
	i.behavior = b
}

// Tick waits for the next tick and returns the instant it was scheduled for.
// Scheduled instants of consecutive ticks are always at least one period
// apart.
func (i *Interval) Tick(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	if wait := time.Until(i.next); wait > 0 {
		i.timer.Reset(wait)
		select {
		case <-i.timer.C:
		case <-ctx.Done():
			i.timer.Stop()
			return time.Time{}, ctx.Err()
		}
	}

	deadline := i.next
	i.next = i.nextDeadline(deadline, time.Now())
	return deadline, nil
}

// Ticks adapts the interval to a range-over-func sequence which ends when
// ctx is done or the loop body breaks.
func (i *Interval) Ticks(ctx context.Context) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for {
			t, err := i.Tick(ctx)
			if err != nil {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Reset restarts the schedule so the next tick is due one period from now.
func (i *Interval) Reset() {
	i.next = time.Now().Add(i.period)
}

// Stop releases the underlying timer.
func (i *Interval) Stop() {
	i.timer.Stop()
}

func (i *Interval) nextDeadline(deadline, now time.Time) time.Time {
	late := now.Sub(deadline)
	if late < i.period {
		return deadline.Add(i.period)
	}

	switch i.behavior {
	case MissedTickBurst:
		return deadline.Add(i.period)
	case MissedTickDelay:
		return now.Add(i.period)
	default:
		missed := late / i.period
		return deadline.Add((missed + 1) * i.period)
	}
}
