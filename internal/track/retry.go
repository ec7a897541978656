package track

import (
	"context"
	"time"

	"github.com/atg25/ProductHunt-Scraper/internal/domain"
)

// RetryConfig bounds the retry driver. MaxAttempts is clamped to at least 1,
// Backoff to at least 0.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Attempt runs one full orchestration: the caller constructs a fresh
// provider and tracker inside it, since a provider is not reusable after
// Close.
type Attempt func(ctx context.Context) (domain.TrackerResult, error)

// Runner retries transient failures with a fixed backoff. Non-transient
// failures return immediately even when attempts remain: retrying a bad
// credential cannot succeed.
type Runner struct {
	cfg   RetryConfig
	sleep func(time.Duration)
}

// NewRunner builds a retry runner. sleep is injectable for tests; nil means
// time.Sleep.
func NewRunner(cfg RetryConfig, sleep func(time.Duration)) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Runner{cfg: cfg, sleep: sleep}
}

// Run invokes attempt up to MaxAttempts times and returns the final result
// plus the number of attempts used. An unexpected error from attempt aborts
// the loop and propagates.
func (r *Runner) Run(ctx context.Context, attempt Attempt) (domain.TrackerResult, int, error) {
	var result domain.TrackerResult
	for n := 1; ; n++ {
		var err error
		result, err = attempt(ctx)
		if err != nil {
			return domain.TrackerResult{}, n, err
		}
		if result.OK() || !result.Transient || n >= r.cfg.MaxAttempts {
			return result, n, nil
		}
		r.sleep(r.cfg.Backoff)
	}
}
