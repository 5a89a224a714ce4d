package rate

import (
	"context"
	"time"
)

// Noop is a Limiter that admits everything immediately. Useful when
// the caller wants retries and credential rotation without pacing.
type Noop struct {
}

var _ Limiter = Noop{}

func (n Noop) Acquire(ctx context.Context) error {
	return ctx.Err()
}

func (n Noop) SetOverride(_ time.Duration) {
}

func (n Noop) Update(_ Config) error {
	return nil
}

func (n Noop) Utilization() float64 {
	return 0
}
