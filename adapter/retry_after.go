package adapter

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

const (
	// DefaultRotateAfter is how many consecutive rate-limited
	// responses (each already honoring the server's wait) are
	// tolerated before rotating credentials.
	DefaultRotateAfter = 3

	retryAfterHeader = "Retry-After"
)

// RetryAfterDerived trusts the service's Retry-After instruction: on a
// rate-limit status the header value (delta-seconds) becomes a wait
// override that pre-empts the curve-computed delay for the next
// admission. Rotation is signalled only when the override keeps being
// hit without recovery, since a service that says "wait 5s" usually
// means the same limit applies to every credential.
type RetryAfterDerived struct {
	rotateAfter int

	mu          sync.Mutex
	consecutive int
}

var _ Adapter = &RetryAfterDerived{}

type RetryAfterOption func(r *RetryAfterDerived)

// WithRotateAfter sets the consecutive-override threshold for
// signalling rotation. Values < 1 mean never rotate.
func WithRotateAfter(n int) RetryAfterOption {
	return func(r *RetryAfterDerived) {
		r.rotateAfter = n
	}
}

func NewRetryAfterDerived(opts ...RetryAfterOption) *RetryAfterDerived {
	r := &RetryAfterDerived{
		rotateAfter: DefaultRotateAfter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RetryAfterDerived) DeriveLimits(_ *transport.Response) (rate.Config, bool) {
	return rate.Config{}, false
}

func (r *RetryAfterDerived) Interpret(res *transport.Response) Signal {
	wait, limited := retryAfterWait(res)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !limited {
		r.consecutive = 0
		return Signal{}
	}

	r.consecutive++
	return Signal{
		RotateCredential: r.rotateAfter > 0 && r.consecutive >= r.rotateAfter,
		WaitOverride:     wait,
	}
}

func retryAfterWait(res *transport.Response) (time.Duration, bool) {
	v := res.Header.Get(retryAfterHeader)
	switch res.StatusCode {
	case http.StatusTooManyRequests:
	case http.StatusForbidden:
		// 403 is a quota signal only when Retry-After is present
		if v == "" {
			return 0, false
		}
	default:
		return 0, false
	}

	if v == "" {
		return 0, true
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, true
	}
	return time.Duration(secs) * time.Second, true
}
