// Package watch runs caller-owned repeat-until-terminal polling loops.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when the deadline passes before a terminal value.
var ErrTimeout = errors.New("watch: timed out before reaching a terminal state")

const defaultInterval = 5 * time.Second

// Poller describes one polling loop. Poll and Done are required.
type Poller[T any] struct {
	// Interval is the wait between polls; zero uses five seconds.
	Interval time.Duration
	// Timeout bounds the whole loop; zero means no deadline.
	Timeout time.Duration
	Poll    func(ctx context.Context) (T, error)
	Done    func(T) bool
	// Retry reports whether a poll error should be tolerated. The loop
	// stops on any error Retry rejects or when Retry is nil.
	Retry func(error) bool
	// OnResult observes every successful poll, including the terminal one.
	OnResult func(attempt int, value T)
	// OnError observes tolerated errors.
	OnError func(attempt int, err error)
}

// Run polls immediately and then once per interval until Done reports true,
// a poll error is not retried, the context ends, or the timeout passes.
func (p Poller[T]) Run(ctx context.Context) (T, error) {
	var last T
	if p.Poll == nil || p.Done == nil {
		return last, errors.New("watch: poll and done functions are required")
	}
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	var deadline <-chan time.Time
	if p.Timeout > 0 {
		timer := time.NewTimer(p.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		value, err := p.Poll(ctx)
		switch {
		case err == nil:
			last = value
			if p.OnResult != nil {
				p.OnResult(attempt, value)
			}
			if p.Done(value) {
				return value, nil
			}
		case p.Retry != nil && p.Retry(err) && ctx.Err() == nil:
			if p.OnError != nil {
				p.OnError(attempt, err)
			}
		default:
			return last, err
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-deadline:
			return last, fmt.Errorf("%w after %s (%d polls)", ErrTimeout, p.Timeout, attempt)
		case <-ticker.C:
		}
	}
}

// Until is shorthand for a Poller without retries or observers.
func Until[T any](ctx context.Context, interval, timeout time.Duration, poll func(context.Context) (T, error), done func(T) bool) (T, error) {
	return Poller[T]{Interval: interval, Timeout: timeout, Poll: poll, Done: done}.Run(ctx)
}
