package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/logger"
)

type expoConfig struct {
	sleep  time.Duration
	jitter time.Duration
	logger logger.Logger
	randFn func(n int64) int64
}

func defaultExpoConfig() expoConfig {
	return expoConfig{
		sleep:  50 * time.Millisecond,
		jitter: 50 * time.Millisecond,
		logger: &logger.Noop{},
		randFn: rand.Int63n,
	}
}

type ExpoConfigOption func(c *expoConfig)

func WithLogger(log logger.Logger) ExpoConfigOption {
	return func(c *expoConfig) {
		c.logger = log
	}
}

func WithInitialDuration(d time.Duration) ExpoConfigOption {
	return func(c *expoConfig) {
		c.sleep = d
	}
}

// WithJitterCeiling bounds the random addition to each backoff wait.
// Jitter keeps independent throttler instances from synchronizing
// their retries against the same backend. Zero disables it.
func WithJitterCeiling(d time.Duration) ExpoConfigOption {
	return func(c *expoConfig) {
		c.jitter = d
	}
}

// WithRand replaces the jitter source. Intended for tests.
func WithRand(fn func(n int64) int64) ExpoConfigOption {
	return func(c *expoConfig) {
		c.randFn = fn
	}
}

type expoRetry struct {
	config expoConfig
}

var _ Retry = &expoRetry{}

func NewExponentialRetry(opts ...ExpoConfigOption) Retry {
	var config = defaultExpoConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &expoRetry{config}
}

// Do runs the provided function repeatedly until:
// * the RetriableFn returns no error
// * or attempts is reached
// * or RetriableFn returns StopNow
// * or ctx is cancelled during a backoff wait
//
// The wait before retry i is sleep * 2^(i-1) plus a uniform random
// duration in [0, jitter).
//
// Examples:
// Do(ctx, 3, "my-func", func(attempt int) (error, retry.ExitStrategy) {})
// ^ will run the function up to 3 times, backing off 50ms, 100ms
// (plus jitter) between runs.
//
// Do(ctx, 0, "my-func", func(attempt int) (error, retry.ExitStrategy) {})
// ^ will NOT run
func (r *expoRetry) Do(
	ctx context.Context,
	attempts int,
	fnName string,
	fn RetriableFn,
) error {
	if attempts < 1 {
		return fmt.Errorf("attempts must be > 0")
	}

	var err error
	var i int

	sleep := r.config.sleep
	for i < attempts {
		var exitNow ExitStrategy
		if err, exitNow = fn(i); err == nil {
			return nil
		}
		if exitNow {
			return err
		}

		i++
		if i == attempts {
			break
		}

		wait := sleep
		if r.config.jitter > 0 {
			wait += time.Duration(r.config.randFn(int64(r.config.jitter)))
		}

		r.config.logger.Warnf(
			"Error during retry %s; retrying. attempt=%d, maxAttempt=%d, backoff=%v, error=%v",
			fnName, i, attempts, wait, err,
		)

		if waitErr := sleepCtx(ctx, wait); waitErr != nil {
			return waitErr
		}

		sleep = sleep * 2
	}

	r.config.logger.Warnf(
		"Exhausted all retry attempts for %s; giving up. attempt=%d, maxAttempt=%d, error=%v",
		fnName, i, attempts, err,
	)

	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
