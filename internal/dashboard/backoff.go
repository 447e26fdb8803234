package dashboard

import (
	"context"
	"math/rand"
	"time"
)

// backoff retries an operation with exponential delays. Delays double
// from base up to max, with up to 25% jitter so concurrent callers
// don't retry in lockstep.
type backoff struct {
	base       time.Duration
	max        time.Duration
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

func newBackoff(base, max time.Duration, maxRetries int) backoff {
	return backoff{base: base, max: max, maxRetries: maxRetries, sleep: sleepCtx}
}

// Do runs fn until it succeeds or the retry budget is spent. The
// context cancels the wait between attempts.
func (b backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		if i == b.maxRetries {
			break
		}
		d := b.base << uint(i)
		if b.max > 0 && d > b.max {
			d = b.max
		}
		d += time.Duration(rand.Int63n(int64(d)/4 + 1))
		if serr := b.sleep(ctx, d); serr != nil {
			return err
		}
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
