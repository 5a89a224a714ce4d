package rate

import (
	"fmt"
	"time"
)

const (
	DefaultMaxRequests   = 10
	DefaultWindow        = 1 * time.Second
	DefaultThrottleStart = 0.75
	DefaultFullThrottle  = 0.90
)

// Config describes one upstream rate limit and the thresholds at which
// the throttle curve starts ramping and saturates. It can be replaced
// at runtime when a service adapter derives live limits from responses.
type Config struct {
	// MaxRequests is the number of requests the upstream allows
	// within one Window.
	MaxRequests int

	// Window is the duration of the upstream accounting window.
	Window time.Duration

	// ThrottleStart is the utilization at which pacing delays begin.
	ThrottleStart float64

	// FullThrottle is the utilization at which pacing reaches its
	// fixed maximum delay.
	FullThrottle float64
}

func DefaultConfig() Config {
	return Config{
		MaxRequests:   DefaultMaxRequests,
		Window:        DefaultWindow,
		ThrottleStart: DefaultThrottleStart,
		FullThrottle:  DefaultFullThrottle,
	}
}

func (c Config) Validate() error {
	if c.MaxRequests <= 0 {
		return fmt.Errorf("rate: MaxRequests must be > 0, got %d", c.MaxRequests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate: Window must be > 0, got %v", c.Window)
	}
	if c.ThrottleStart < 0 || c.ThrottleStart >= c.FullThrottle || c.FullThrottle > 1.0 {
		return fmt.Errorf(
			"rate: thresholds must satisfy 0 <= start < full <= 1, got start=%v full=%v",
			c.ThrottleStart, c.FullThrottle,
		)
	}
	return nil
}
