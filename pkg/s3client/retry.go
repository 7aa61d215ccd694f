package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/aws/smithy-go"
)

// retryPolicy spaces attempts out exponentially with ±25% jitter
type retryPolicy struct {
	attempts int // total tries, including the first
	base     time.Duration
	ceiling  time.Duration
}

var defaultRetryPolicy = retryPolicy{
	attempts: 6,
	base:     100 * time.Millisecond,
	ceiling:  30 * time.Second,
}

var transientCodes = map[string]bool{
	"SlowDown":                true,
	"ServiceUnavailable":      true,
	"RequestTimeout":          true,
	"RequestTimeoutException": true,
	"InternalError":           true,
}

// do runs op until it succeeds, fails with a permanent error or runs out of
// attempts. Waiting between attempts stops early when ctx is done.
func (p retryPolicy) do(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(p.backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		if err = op(ctx); err == nil || !transient(err) {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", p.attempts, err)
}

// backoff is the wait before retry n (0 based), never above the ceiling
func (p retryPolicy) backoff(n int) time.Duration {
	if n >= 30 {
		return p.ceiling
	}
	d := p.base << n
	if spread := int64(d) / 2; spread > 0 {
		d += time.Duration(rand.Int64N(spread) - spread/2)
	}
	return min(d, p.ceiling)
}

// transient reports whether another attempt may succeed: throttling,
// server side failures and cut off transfers.
func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if transientCodes[apiErr.ErrorCode()] {
		return true
	}

	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) {
		return status.HTTPStatusCode() >= 500
	}
	return false
}
