package rate

import "time"

// Curve maps window utilization to a pacing delay:
//
//   - below Config.ThrottleStart the delay is zero
//   - between ThrottleStart and FullThrottle the delay ramps linearly
//     from zero to the pacing interval
//   - at or beyond FullThrottle the delay is the fixed MaxDelay
//
// The ramp keeps admissions smooth instead of oscillating between
// free-flow and a hard cutoff. WaitDuration is a pure function of
// (utilization, config, pace); the curve holds no state.
type Curve struct {
	// BaseDelay is the pacing interval the ramp scales toward when the
	// caller supplies no live one.
	BaseDelay time.Duration

	// MaxDelay is the fixed delay applied at or beyond FullThrottle.
	MaxDelay time.Duration
}

// DefaultCurve derives a curve from the limit configuration:
// BaseDelay is the even-pacing interval (window divided by the request
// budget) and MaxDelay is a full window, which near-serializes traffic
// once the budget is effectively spent.
func DefaultCurve(cfg Config) Curve {
	return Curve{
		BaseDelay: cfg.Window / time.Duration(cfg.MaxRequests),
		MaxDelay:  cfg.Window,
	}
}

// WaitDuration returns the pacing delay for the given utilization.
// It is monotonically non-decreasing in utilization for a fixed pace.
//
// pace is the live leaky-bucket interval — the remaining window spread
// across the remaining request budget — so the same utilization waits
// longer early in the window, when the budget must last, than late,
// when it is about to refresh. A non-positive pace falls back to
// BaseDelay. The ramp never exceeds MaxDelay.
func (c Curve) WaitDuration(utilization float64, cfg Config, pace time.Duration) time.Duration {
	switch {
	case utilization < cfg.ThrottleStart:
		return 0
	case utilization >= cfg.FullThrottle:
		return c.MaxDelay
	default:
		if pace <= 0 {
			pace = c.BaseDelay
		}
		span := cfg.FullThrottle - cfg.ThrottleStart
		frac := (utilization - cfg.ThrottleStart) / span
		wait := time.Duration(frac * float64(pace))
		if wait > c.MaxDelay {
			return c.MaxDelay
		}
		return wait
	}
}
