package adapter

import (
	"context"
	"time"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

// Signal is the outcome of interpreting one upstream response.
type Signal struct {
	// RotateCredential asks the dispatcher to advance to the next
	// credential: the active one has exhausted its limit.
	RotateCredential bool

	// WaitOverride, when positive, is a server-provided wait that
	// takes precedence over the curve-computed delay for the next
	// admission (e.g. a Retry-After instruction).
	WaitOverride time.Duration
}

// Adapter interprets one service's rate-limit signals. The dispatcher
// is generic over any Adapter, which is how per-service throttling
// strategies are plugged in without a type hierarchy.
//
// Adapter methods must never block; waiting is the dispatcher's job.
type Adapter interface {
	// DeriveLimits extracts a live limit configuration from the
	// response. ok is false when the response carries no limit info.
	DeriveLimits(res *transport.Response) (rate.Config, bool)

	// Interpret decides whether to rotate credentials and whether the
	// server dictated a wait.
	Interpret(res *transport.Response) Signal
}

// CredentialSource is implemented by adapters that exchange the
// rotator's credential for a derived secret (e.g. a login token)
// before each attempt.
type CredentialSource interface {
	Credential(ctx context.Context, base string) (string, error)
}
