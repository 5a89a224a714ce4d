package rate

import (
	"context"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// Bucket is a token-bucket Limiter backed by golang.org/x/time/rate,
// for callers who prefer steady-rate pacing over the windowed curve.
// It honors overrides and live limit updates like Windowed does, but
// has no utilization ramp: requests flow at the bucket rate until
// tokens run out, then block.
type Bucket struct {
	mu       sync.Mutex
	lim      *xrate.Limiter
	burst    int
	override time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

var _ Limiter = &Bucket{}

// NewBucket allows perSecond sustained requests with the given burst.
func NewBucket(perSecond float64, burst int) *Bucket {
	if burst < 1 {
		burst = 1
	}
	return &Bucket{
		lim:   xrate.NewLimiter(xrate.Limit(perSecond), burst),
		burst: burst,
		sleep: sleepCtx,
	}
}

func (b *Bucket) Acquire(ctx context.Context) error {
	b.mu.Lock()
	override := b.override
	b.override = 0
	b.mu.Unlock()

	if override > 0 {
		return b.sleep(ctx, override)
	}
	return b.lim.Wait(ctx)
}

func (b *Bucket) SetOverride(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d > b.override {
		b.override = d
	}
}

// Update re-derives the bucket rate from a window configuration.
func (b *Bucket) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.burst = cfg.MaxRequests
	b.lim.SetLimit(xrate.Limit(float64(cfg.MaxRequests) / cfg.Window.Seconds()))
	b.lim.SetBurst(cfg.MaxRequests)
	return nil
}

func (b *Bucket) Utilization() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := 1 - b.lim.Tokens()/float64(b.burst)
	if u < 0 {
		return 0
	}
	return u
}
