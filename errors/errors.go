package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	KIND_TRANSIENT            = "transient"
	KIND_PERMANENT            = "permanent"
	KIND_RATE_LIMIT_EXHAUSTED = "rate-limit-exhausted"
	KIND_RETRY_EXHAUSTED      = "retry-exhausted"
	KIND_AUTH                 = "auth"
	KIND_TRANSPORT            = "transport"
	KIND_CANCELLED            = "cancelled"
)

// ThrottleError is the single error type surfaced by the throttler.
// Kind is one of the KIND_* constants and tells the caller how the
// failure was classified. HttpStatusCode and Body are populated only
// when an upstream response was received.
type ThrottleError struct {
	Kind           string
	HttpStatusCode int
	SourceErr      error
	Body           []byte
}

var _ error = &ThrottleError{}

func (e *ThrottleError) Error() string {
	var err string
	if e.SourceErr != nil {
		err = e.SourceErr.Error()
	} else {
		err = string(e.Body)
	}
	return fmt.Sprintf(
		"throttled request failed with kind '%s', httpStatus: '%d'; original err: %v",
		e.Kind, e.HttpStatusCode, err,
	)
}

// Is method is required by errors.Is() to properly distinguish between
// different types -vs- same pointer to the same type.
// Without it, errors.Is(err, &ThrottleError{}) returns false:
// ok := errors.Is(errors.Join(&errors.ThrottleError{}), &errors.ThrottleError{})
// ^ would be false
func (e *ThrottleError) Is(other error) bool {
	var err *ThrottleError
	return errors.As(other, &err) && err != nil
}

func (e *ThrottleError) Unwrap() error {
	return e.SourceErr
}

// IsKind reports whether err is a ThrottleError of the given kind.
func IsKind(err error, kind string) bool {
	var te *ThrottleError
	return errors.As(err, &te) && te.Kind == kind
}

func IsTransient(err error) bool {
	return IsKind(err, KIND_TRANSIENT)
}

func IsRetryExhausted(err error) bool {
	return IsKind(err, KIND_RETRY_EXHAUSTED)
}

func IsRateLimitExhausted(err error) bool {
	return IsKind(err, KIND_RATE_LIMIT_EXHAUSTED)
}

func IsAuth(err error) bool {
	return IsKind(err, KIND_AUTH)
}

func IsCancelled(err error) bool {
	return IsKind(err, KIND_CANCELLED)
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
// 408, 429 and all 5xx are transient. 403 counts only when the server
// also sent a Retry-After instruction, since some services use 403 for
// quota exhaustion.
func IsTransientStatus(status int, hasRetryAfter bool) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return true
	}
	if status >= 500 && status < 600 {
		return true
	}
	if status == http.StatusForbidden && hasRetryAfter {
		return true
	}
	return false
}
