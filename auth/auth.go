package auth

import "context"

// Authenticator exchanges a long-lived credential (e.g. an email and
// password pair, or a refresh secret) for a short-lived API token.
// Used only by login-derived adapters; the rest of the throttler
// treats credentials as opaque strings.
//
// Login failures must surface as auth-kind errors; they are never
// retried by the retry policy.
type Authenticator interface {
	Login(ctx context.Context, credential string) (string, error)
}
