package poller

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultCeiling caps the backoff delay at this multiple of the base interval.
const DefaultCeiling = 8

// retryPolicy picks the delay before the next automatic cycle: the base
// interval after a good cycle, otherwise 2x, 4x, 8x... the base up to the
// ceiling.
type retryPolicy struct {
	base    time.Duration
	ceiling int
	exp     *backoff.ExponentialBackOff
}

func newRetryPolicy(base time.Duration, ceiling int) *retryPolicy {
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}
	maxDelay := time.Duration(math.MaxInt64)
	if base <= maxDelay/time.Duration(ceiling) {
		maxDelay = time.Duration(ceiling) * base
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = min(2*base, maxDelay)
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = maxDelay
	exp.Reset()
	return &retryPolicy{base: base, ceiling: ceiling, exp: exp}
}

// next records the outcome of a cycle and returns the delay until the next one.
func (r *retryPolicy) next(failed bool) time.Duration {
	if !failed {
		r.exp.Reset()
		return r.base
	}
	return r.exp.NextBackOff()
}
