package throttler

import (
	"time"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/adapter"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/logger"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/retry"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

type config struct {
	// transport performs the actual network exchange.
	// It's useful for mocking or if customers want to route
	// requests through their own HTTP stack.
	// default: transport.NewHTTP with a 10s-timeout client
	transport transport.Transport

	// timeout sets the maximum duration for HTTP requests made by
	// the default transport; ignored when a custom transport is set
	// default: 10 seconds
	timeout time.Duration

	// logger provides logging functionality for all internal
	// throttler operations
	// default: logger.Noop
	logger logger.Logger

	// limiter paces admissions; overrides rateConfig when set
	// default: rate.NewWindowed(rateConfig)
	limiter rate.Limiter

	// rateConfig describes the upstream limit for the default
	// windowed limiter
	// default: rate.DefaultConfig (10 req / 1s, start 0.75, full 0.90)
	rateConfig rate.Config

	// adapter interprets the service's rate-limit signals
	// default: adapter.Fixed
	adapter adapter.Adapter

	// retrier drives backoff between transient failures; overrides
	// initialBackoff/jitterCeiling when set
	// default: retry.NewExponentialRetry
	retrier retry.Retry

	// maxRetries is the total number of attempts per credential
	// default: 3
	maxRetries int

	// initialBackoff is the first backoff wait; doubles per retry
	// default: 50ms
	initialBackoff time.Duration

	// jitterCeiling bounds the random addition to each backoff wait
	// default: 1 second
	jitterCeiling time.Duration

	// backups are tried in order once the active credential is
	// rate-limit exhausted
	// default: none
	backups []string

	// credentialHeader is the request header carrying the credential
	// default: "Api-Key"
	credentialHeader string

	// credentialParam, when set, carries the credential as a query
	// parameter instead of a header (some services expect ?token=...)
	// default: unset
	credentialParam string
}

func defaultConfig() *config {
	return &config{
		timeout:          10 * time.Second,
		logger:           logger.Noop{},
		rateConfig:       rate.DefaultConfig(),
		adapter:          adapter.Fixed{},
		maxRetries:       3,
		initialBackoff:   50 * time.Millisecond,
		jitterCeiling:    1 * time.Second,
		credentialHeader: "Api-Key",
	}
}

type ConfigOption func(c *config)

func WithTransport(t transport.Transport) ConfigOption {
	return func(c *config) {
		c.transport = t
	}
}

func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *config) {
		c.timeout = timeout
	}
}

func WithLogger(logger logger.Logger) ConfigOption {
	return func(c *config) {
		c.logger = logger
	}
}

func WithLimiter(l rate.Limiter) ConfigOption {
	return func(c *config) {
		c.limiter = l
	}
}

func WithRateConfig(cfg rate.Config) ConfigOption {
	return func(c *config) {
		c.rateConfig = cfg
	}
}

func WithAdapter(a adapter.Adapter) ConfigOption {
	return func(c *config) {
		c.adapter = a
	}
}

func WithRetry(r retry.Retry) ConfigOption {
	return func(c *config) {
		c.retrier = r
	}
}

func WithMaxRetries(n int) ConfigOption {
	return func(c *config) {
		c.maxRetries = n
	}
}

func WithInitialBackoff(d time.Duration) ConfigOption {
	return func(c *config) {
		c.initialBackoff = d
	}
}

func WithJitterCeiling(d time.Duration) ConfigOption {
	return func(c *config) {
		c.jitterCeiling = d
	}
}

func WithBackupCredentials(backups ...string) ConfigOption {
	return func(c *config) {
		c.backups = backups
	}
}

func WithCredentialHeader(name string) ConfigOption {
	return func(c *config) {
		c.credentialHeader = name
	}
}

// WithCredentialParam sends the credential as a query parameter
// instead of a header.
func WithCredentialParam(name string) ConfigOption {
	return func(c *config) {
		c.credentialParam = name
	}
}
