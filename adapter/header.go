package adapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

const (
	DefaultLimitHeader     = "X-RateLimit-Limit"
	DefaultWindowHeader    = "X-RateLimit-Window"
	DefaultRemainingHeader = "X-RateLimit-Remaining"
)

type headerConfig struct {
	limitHeader     string
	windowHeader    string
	remainingHeader string
}

func defaultHeaderConfig() headerConfig {
	return headerConfig{
		limitHeader:     DefaultLimitHeader,
		windowHeader:    DefaultWindowHeader,
		remainingHeader: DefaultRemainingHeader,
	}
}

type HeaderOption func(c *headerConfig)

// WithHeaderNames overrides the header names parsed for limit, window
// (seconds) and remaining. Empty strings keep the defaults.
func WithHeaderNames(limit, window, remaining string) HeaderOption {
	return func(c *headerConfig) {
		if limit != "" {
			c.limitHeader = limit
		}
		if window != "" {
			c.windowHeader = window
		}
		if remaining != "" {
			c.remainingHeader = remaining
		}
	}
}

// HeaderDerived reads the service's rate-limit headers on every
// response and keeps the throttle configuration in step with the live
// limits. Credential rotation is signalled when the remaining budget
// reaches zero or the service answers 429.
type HeaderDerived struct {
	base   rate.Config
	config headerConfig
}

var _ Adapter = &HeaderDerived{}

// NewHeaderDerived builds the adapter. base supplies the throttle
// thresholds and the limits used until the first header is seen.
func NewHeaderDerived(base rate.Config, opts ...HeaderOption) *HeaderDerived {
	config := defaultHeaderConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &HeaderDerived{
		base:   base,
		config: config,
	}
}

func (h *HeaderDerived) DeriveLimits(res *transport.Response) (rate.Config, bool) {
	limit, ok := headerInt(res.Header, h.config.limitHeader)
	if !ok || limit <= 0 {
		return rate.Config{}, false
	}

	cfg := h.base
	cfg.MaxRequests = limit
	if secs, ok := headerInt(res.Header, h.config.windowHeader); ok && secs > 0 {
		cfg.Window = time.Duration(secs) * time.Second
	}
	return cfg, true
}

func (h *HeaderDerived) Interpret(res *transport.Response) Signal {
	if res.StatusCode == http.StatusTooManyRequests {
		return Signal{RotateCredential: true}
	}
	if remaining, ok := headerInt(res.Header, h.config.remainingHeader); ok && remaining == 0 {
		return Signal{RotateCredential: true}
	}
	return Signal{}
}

func headerInt(h http.Header, name string) (int, bool) {
	v := h.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
