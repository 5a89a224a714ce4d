package retry

import "context"

// Retry provides a standardized interface for implementing retry logic
// with different strategies. It allows operations to be retried with
// configurable policies such as exponential backoff, jitter, and
// maximum attempts.
//
// The interface is used by the dispatcher for handling transient
// failures: rate-limit statuses before exhaustion, 5xx responses, and
// network errors.
//
// Usage Example:
//
//	r := retry.NewExponentialRetry(
//	    retry.WithInitialDuration(100*time.Millisecond),
//	    retry.WithJitterCeiling(time.Second),
//	)
//
//	err := r.Do(ctx, 3, "api-call", func(attempt int) (error, retry.ExitStrategy) {
//	    res, err := perform()
//	    if err != nil {
//	        if isTransient(err) {
//	            return err, retry.Continue // retry this error
//	        }
//	        return err, retry.StopNow // don't retry this error
//	    }
//	    return nil, retry.StopNow // success, stop retrying
//	})
//
// The RetriableFn receives the current attempt number (0-based) and
// returns an error and an ExitStrategy. The ExitStrategy determines
// whether to continue retrying (Continue) or stop immediately
// (StopNow), regardless of remaining attempts. Cancelling ctx aborts
// any pending backoff wait.
//
// NOTE: if attempts is 0, the fn is never called.
type Retry interface {
	Do(ctx context.Context, attempts int, fnName string, fn RetriableFn) error
}

type RetriableFn func(attempt int) (error, ExitStrategy)

type ExitStrategy bool

var StopNow ExitStrategy = true
var Continue ExitStrategy = false
