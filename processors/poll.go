package processors

import (
	"context"
	"errors"
	"time"
)

// errPollDeadline distinguishes the helper's own deadline from check
// errors; callers wrap it into a domain error.
var errPollDeadline = errors.New("poll deadline exceeded")

// pollUntil calls check every interval until it reports done, returns an
// error, the deadline maxWait elapses, or ctx is cancelled. check runs once
// immediately so an already-satisfied condition never waits.
func pollUntil(ctx context.Context, interval, maxWait time.Duration, check func(context.Context) (bool, error)) error {
	deadline := time.Now().Add(maxWait)
	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			return errPollDeadline
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
