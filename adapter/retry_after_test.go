package adapter

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_RetryAfterDerived_Interpret_override(t *testing.T) {
	a := NewRetryAfterDerived()

	sig := a.Interpret(responseWithHeaders(http.StatusTooManyRequests, map[string]string{
		"Retry-After": "5",
	}))
	assert.Equal(t, 5*time.Second, sig.WaitOverride)
	assert.False(t, sig.RotateCredential)
}

func Test_RetryAfterDerived_Interpret_403_with_header(t *testing.T) {
	a := NewRetryAfterDerived()

	sig := a.Interpret(responseWithHeaders(http.StatusForbidden, map[string]string{
		"Retry-After": "7",
	}))
	assert.Equal(t, 7*time.Second, sig.WaitOverride)
}

func Test_RetryAfterDerived_Interpret_403_without_header(t *testing.T) {
	a := NewRetryAfterDerived()

	sig := a.Interpret(responseWithHeaders(http.StatusForbidden, nil))
	assert.Equal(t, Signal{}, sig)
}

func Test_RetryAfterDerived_Interpret_rotates_after_threshold(t *testing.T) {
	a := NewRetryAfterDerived(WithRotateAfter(3))

	limited := func() Signal {
		return a.Interpret(responseWithHeaders(http.StatusTooManyRequests, map[string]string{
			"Retry-After": "1",
		}))
	}

	assert.False(t, limited().RotateCredential)
	assert.False(t, limited().RotateCredential)
	assert.True(t, limited().RotateCredential)
}

func Test_RetryAfterDerived_Interpret_success_resets_streak(t *testing.T) {
	a := NewRetryAfterDerived(WithRotateAfter(2))

	limited := responseWithHeaders(http.StatusTooManyRequests, map[string]string{"Retry-After": "1"})
	assert.False(t, a.Interpret(limited).RotateCredential)
	a.Interpret(responseWithHeaders(http.StatusOK, nil))
	assert.False(t, a.Interpret(limited).RotateCredential)
}

func Test_RetryAfterDerived_Interpret_never_rotates_when_disabled(t *testing.T) {
	a := NewRetryAfterDerived(WithRotateAfter(0))

	limited := responseWithHeaders(http.StatusTooManyRequests, map[string]string{"Retry-After": "1"})
	for i := 0; i < 10; i++ {
		assert.False(t, a.Interpret(limited).RotateCredential)
	}
}

func Test_RetryAfterDerived_Interpret_bad_header_value(t *testing.T) {
	a := NewRetryAfterDerived()

	sig := a.Interpret(responseWithHeaders(http.StatusTooManyRequests, map[string]string{
		"Retry-After": "soon",
	}))
	assert.Equal(t, time.Duration(0), sig.WaitOverride)
}
