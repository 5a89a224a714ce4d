package rate

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter paces outbound requests against one logical upstream limit.
//
// A Limiter only controls admission rate; it does not bound in-flight
// concurrency. Implementations must make the admission decision and
// the window-slot reservation one atomic step, so two concurrent
// callers can never both act on the same stale utilization reading.
// The actual sleeping happens outside any exclusive section.
type Limiter interface {
	// Acquire blocks until the caller may proceed, reserving a window
	// slot at admission time (before the wait elapses). A cancelled
	// context aborts the wait and returns ctx.Err().
	Acquire(ctx context.Context) error

	// SetOverride arms a one-shot wait that pre-empts the computed
	// delay on the next Acquire, e.g. a server Retry-After instruction.
	SetOverride(d time.Duration)

	// Update replaces the active limit configuration. The new limits
	// are visible to the very next admission decision.
	Update(cfg Config) error

	// Utilization reports the current window utilization in [0, 1]
	// (transiently above 1 under concurrent over-admission).
	Utilization() float64
}

// Stats is a point-in-time snapshot of a windowed limiter.
type Stats struct {
	TotalRequests int64
	InWindow      int
	Utilization   float64
}

// Windowed is the sliding-window Limiter. It owns a Tracker and a
// Config behind a single mutex and paces admissions along a Curve.
type Windowed struct {
	mu       sync.Mutex
	cfg      Config
	curve    Curve
	tracker  Tracker
	override time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Limiter = &Windowed{}

type WindowedOption func(w *Windowed)

// WithCurve replaces the default curve derived from the configuration.
func WithCurve(c Curve) WindowedOption {
	return func(w *Windowed) {
		w.curve = c
	}
}

// WithClock replaces the time source. Intended for tests.
func WithClock(now func() time.Time) WindowedOption {
	return func(w *Windowed) {
		w.now = now
	}
}

// WithSleeper replaces the cancellable sleep. Intended for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) WindowedOption {
	return func(w *Windowed) {
		w.sleep = sleep
	}
}

func NewWindowed(cfg Config, opts ...WindowedOption) (*Windowed, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &Windowed{
		cfg:   cfg,
		curve: DefaultCurve(cfg),
		now:   time.Now,
		sleep: sleepCtx,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.curve.MaxDelay < w.curve.BaseDelay {
		return nil, fmt.Errorf(
			"rate: curve MaxDelay %v must be >= BaseDelay %v to stay monotonic",
			w.curve.MaxDelay, w.curve.BaseDelay,
		)
	}
	return w, nil
}

// Acquire reserves a slot and then waits out the computed delay.
//
// The reservation counts the request being admitted, so the decision
// for request N+1 always sees the previous N reservations even while
// their waits are still elapsing. An armed override is consumed here
// and takes precedence over the curve.
func (w *Windowed) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	now := w.now()
	w.tracker.Record(now)
	var wait time.Duration
	if w.override > 0 {
		wait = w.override
		w.override = 0
	} else {
		u := w.tracker.Utilization(now, w.cfg)
		wait = w.curve.WaitDuration(u, w.cfg, w.pace(now))
	}
	w.mu.Unlock()

	return w.sleep(ctx, wait)
}

// pace spreads the remaining request budget across the remaining
// window: the leaky-bucket interval the ramp scales toward. Must be
// called with the mutex held, after the tracker has been pruned.
func (w *Windowed) pace(now time.Time) time.Duration {
	oldest, ok := w.tracker.Oldest()
	if !ok {
		return 0
	}
	timeRemaining := oldest.Add(w.cfg.Window).Sub(now)
	if timeRemaining <= 0 {
		return 0
	}
	remaining := w.cfg.MaxRequests - w.tracker.Len()
	if remaining < 1 {
		remaining = 1
	}
	return timeRemaining / time.Duration(remaining)
}

func (w *Windowed) SetOverride(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if d > w.override {
		w.override = d
	}
}

func (w *Windowed) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	recalc := w.curve == DefaultCurve(w.cfg)
	w.cfg = cfg
	if recalc {
		// the curve was derived from the old limits, keep it in step
		w.curve = DefaultCurve(cfg)
	}
	return nil
}

func (w *Windowed) Utilization() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.tracker.Utilization(w.now(), w.cfg)
}

// Stats returns a snapshot of the limiter's accounting.
func (w *Windowed) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	u := w.tracker.Utilization(w.now(), w.cfg)
	return Stats{
		TotalRequests: w.tracker.Total(),
		InWindow:      w.tracker.Len(),
		Utilization:   u,
	}
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
