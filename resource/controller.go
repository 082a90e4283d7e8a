// Package resource bounds the work done by concurrent searches.
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrHypothesesExhausted is returned when the hypothesis budget is spent.
var ErrHypothesesExhausted = errors.New("resource: hypothesis budget exhausted")

// Config holds resource limits.
type Config struct {
	// MaxHypotheses is the number of hypotheses all live searches may hold
	// together. If 0, no limit is enforced (only tracking).
	MaxHypotheses int64

	// MaxConcurrentSearches bounds the searches running at once.
	// If 0, unlimited.
	MaxConcurrentSearches int64

	// SentencesPerSecond throttles how fast sentences are admitted.
	// If 0, unlimited.
	SentencesPerSecond float64

	// Burst is the number of sentences admitted at once. If 0, defaults to 1.
	Burst int

	// IOLimitBytesPerSec is the maximum read throughput when loading models.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages process-wide decoding resources.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	// Hypotheses
	hypoSem  *semaphore.Weighted // nil if unlimited
	hypoUsed atomic.Int64

	// Concurrency
	searchSem *semaphore.Weighted // nil if unlimited

	// Admission
	sentenceLimiter *rate.Limiter

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	c := &Controller{cfg: cfg}

	if cfg.MaxHypotheses > 0 {
		c.hypoSem = semaphore.NewWeighted(cfg.MaxHypotheses)
	}

	if cfg.MaxConcurrentSearches > 0 {
		c.searchSem = semaphore.NewWeighted(cfg.MaxConcurrentSearches)
	}

	if cfg.SentencesPerSecond > 0 {
		c.sentenceLimiter = rate.NewLimiter(rate.Limit(cfg.SentencesPerSecond), cfg.Burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireHypotheses reserves room for n hypotheses without blocking.
// A search that cannot grow fails instead of waiting for other searches.
func (c *Controller) AcquireHypotheses(n int64) error {
	if c == nil || n <= 0 {
		return nil
	}

	if c.hypoSem != nil {
		if !c.hypoSem.TryAcquire(n) {
			return ErrHypothesesExhausted
		}
	}

	c.hypoUsed.Add(n)
	return nil
}

// ReleaseHypotheses returns reserved room.
func (c *Controller) ReleaseHypotheses(n int64) {
	if c == nil || n <= 0 {
		return
	}

	if c.hypoSem != nil {
		c.hypoSem.Release(n)
	}
	c.hypoUsed.Add(-n)
}

// HypothesesInUse returns the number of reserved hypothesis slots.
func (c *Controller) HypothesesInUse() int64 {
	if c == nil {
		return 0
	}
	return c.hypoUsed.Load()
}

// AcquireSearch reserves a search slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil || c.searchSem == nil {
		return nil
	}
	return c.searchSem.Acquire(ctx, 1)
}

// ReleaseSearch releases a search slot.
func (c *Controller) ReleaseSearch() {
	if c == nil || c.searchSem == nil {
		return
	}
	c.searchSem.Release(1)
}

// WaitSentence blocks until the admission rate allows another sentence.
func (c *Controller) WaitSentence(ctx context.Context) error {
	if c == nil || c.sentenceLimiter == nil {
		return nil
	}
	return c.sentenceLimiter.Wait(ctx)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// WaitN fails for requests above the burst; split them.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
