// Package hashpool bounds the number of key derivations running at once.
//
// PBKDF2 and bcrypt are pure CPU work. Without a bound a login burst schedules more
// derivations than there are cores and every request's latency grows together.
package hashpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool runs functions under a weighted semaphore. A nil *Pool runs them inline.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// New returns a Pool admitting size concurrent derivations. size <= 0 uses GOMAXPROCS.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Size returns the configured concurrency bound.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return int(p.size)
}

// Do waits for a slot and runs fn. It returns ctx.Err() without running fn when ctx is
// done before a slot frees up.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if p == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
		return nil
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	fn()
	return nil
}
