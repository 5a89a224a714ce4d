package adapter

import (
	"context"
	"net/http"
	"sync"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/auth"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

// LoginDerived exchanges the rotator's credential for a short-lived
// token before first use and supplies that token as the effective
// credential on every attempt. A 401 from the service invalidates the
// cached token so the next attempt logs in again.
//
// Limit and rotation interpretation is delegated to a wrapped adapter
// (Fixed by default), so login-derived auth composes with header- or
// Retry-After-derived limits.
type LoginDerived struct {
	limits Adapter
	cache  *auth.TokenCache

	mu       sync.Mutex
	lastBase string
}

var _ Adapter = &LoginDerived{}
var _ CredentialSource = &LoginDerived{}

type LoginOption func(l *LoginDerived)

// WithLimitsAdapter delegates DeriveLimits/Interpret to another
// adapter variant.
func WithLimitsAdapter(a Adapter) LoginOption {
	return func(l *LoginDerived) {
		l.limits = a
	}
}

func NewLoginDerived(a auth.Authenticator, opts ...LoginOption) *LoginDerived {
	l := &LoginDerived{
		limits: Fixed{},
		cache:  auth.NewTokenCache(a),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Credential returns the cached token for the base credential,
// logging in on a miss. Login failures surface as auth-kind errors
// and are never retried.
func (l *LoginDerived) Credential(ctx context.Context, base string) (string, error) {
	l.mu.Lock()
	l.lastBase = base
	l.mu.Unlock()

	return l.cache.Token(ctx, base)
}

func (l *LoginDerived) DeriveLimits(res *transport.Response) (rate.Config, bool) {
	return l.limits.DeriveLimits(res)
}

func (l *LoginDerived) Interpret(res *transport.Response) Signal {
	if res.StatusCode == http.StatusUnauthorized {
		l.mu.Lock()
		base := l.lastBase
		l.mu.Unlock()
		l.cache.Invalidate(base)
	}
	return l.limits.Interpret(res)
}
