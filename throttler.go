package throttler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/adapter"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/credentials"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/errors"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/logger"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/rate"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/retry"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

// Throttler paces, retries and fails over outbound calls to one
// rate-limited upstream service. One instance serializes admission
// decisions for any number of concurrent callers against one logical
// upstream limit; it bounds admission rate, not in-flight concurrency.
type Throttler struct {
	transport  transport.Transport
	limiter    rate.Limiter
	rotator    *credentials.Rotator
	adapter    adapter.Adapter
	credSource adapter.CredentialSource
	retrier    retry.Retry
	maxRetries int
	logger     logger.Logger

	credentialHeader string
	credentialParam  string
}

// New builds a Throttler around a primary credential.
func New(primary string, opts ...ConfigOption) (*Throttler, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.maxRetries < 1 {
		return nil, fmt.Errorf("throttler: maxRetries must be > 0, got %d", cfg.maxRetries)
	}

	rotator, err := credentials.NewRotator(primary, cfg.backups...)
	if err != nil {
		return nil, err
	}

	limiter := cfg.limiter
	if limiter == nil {
		limiter, err = rate.NewWindowed(cfg.rateConfig)
		if err != nil {
			return nil, err
		}
	}

	retrier := cfg.retrier
	if retrier == nil {
		retrier = retry.NewExponentialRetry(
			retry.WithInitialDuration(cfg.initialBackoff),
			retry.WithJitterCeiling(cfg.jitterCeiling),
			retry.WithLogger(cfg.logger),
		)
	}

	tr := cfg.transport
	if tr == nil {
		tr = transport.NewHTTP(&http.Client{Timeout: cfg.timeout})
	}

	t := &Throttler{
		transport:        tr,
		limiter:          limiter,
		rotator:          rotator,
		adapter:          cfg.adapter,
		retrier:          retrier,
		maxRetries:       cfg.maxRetries,
		logger:           cfg.logger,
		credentialHeader: cfg.credentialHeader,
		credentialParam:  cfg.credentialParam,
	}
	t.credSource, _ = cfg.adapter.(adapter.CredentialSource)
	return t, nil
}

func (t *Throttler) Get(ctx context.Context, url string, headers http.Header, params url.Values) (*transport.Response, error) {
	return t.Do(ctx, transport.Request{Method: http.MethodGet, URL: url, Header: headers, Params: params})
}

func (t *Throttler) Post(ctx context.Context, url string, headers http.Header, params url.Values, body []byte) (*transport.Response, error) {
	return t.Do(ctx, transport.Request{Method: http.MethodPost, URL: url, Header: headers, Params: params, Body: body})
}

func (t *Throttler) Put(ctx context.Context, url string, headers http.Header, params url.Values, body []byte) (*transport.Response, error) {
	return t.Do(ctx, transport.Request{Method: http.MethodPut, URL: url, Header: headers, Params: params, Body: body})
}

func (t *Throttler) Patch(ctx context.Context, url string, headers http.Header, params url.Values, body []byte) (*transport.Response, error) {
	return t.Do(ctx, transport.Request{Method: http.MethodPatch, URL: url, Header: headers, Params: params, Body: body})
}

func (t *Throttler) Delete(ctx context.Context, url string, headers http.Header, params url.Values) (*transport.Response, error) {
	return t.Do(ctx, transport.Request{Method: http.MethodDelete, URL: url, Header: headers, Params: params})
}

// Utilization reports the limiter's current window utilization.
func (t *Throttler) Utilization() float64 {
	return t.limiter.Utilization()
}

// Stats returns the windowed limiter's accounting snapshot; ok is
// false when a custom limiter without stats is in use.
func (t *Throttler) Stats() (rate.Stats, bool) {
	w, ok := t.limiter.(*rate.Windowed)
	if !ok {
		return rate.Stats{}, false
	}
	return w.Stats(), true
}

// Do runs one end-to-end dispatch: admission, credential attachment,
// the attempt with retries, adapter feedback, and credential failover.
// Each credential gets its own retry budget; an explicit exhaustion
// signal from the adapter rotates immediately instead of burning the
// remaining retries on a spent credential. A full rotation sweep that
// stays limited surfaces a rate-limit-exhausted error.
func (t *Throttler) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	if err := validateMethod(req.Method); err != nil {
		return nil, err
	}

	reqId := uuid.NewString()
	t.logger.Debugf("throttler: dispatch %s %s id=%s", req.Method, req.URL, reqId)

	var rotations int
	for {
		res, rotate, err := t.attemptWithRetries(ctx, reqId, req)
		if err == nil {
			if rotate {
				// e.g. remaining budget hit zero on a success:
				// switch credentials before the next dispatch
				t.rotator.OnRateLimited()
				t.logger.Infof("throttler: rotated credential to index %d id=%s", t.rotator.Index(), reqId)
			}
			return res, nil
		}

		if !errors.IsTransient(err) {
			return nil, err
		}
		if !rotate {
			return nil, wrapKind(err, errors.KIND_RETRY_EXHAUSTED)
		}

		rotations++
		if rotations >= t.rotator.Len() {
			t.logger.Errorf("throttler: all %d credentials exhausted id=%s", t.rotator.Len(), reqId)
			return nil, wrapKind(err, errors.KIND_RATE_LIMIT_EXHAUSTED)
		}
		t.rotator.OnRateLimited()
		t.logger.Infof("throttler: credential exhausted, rotating to index %d (%d/%d) id=%s",
			t.rotator.Index(), rotations, t.rotator.Len(), reqId)
	}
}

// attemptWithRetries runs the retry loop for the active credential.
// Every attempt re-enters admission and is recorded in the window.
// rotate reports whether the adapter signalled credential exhaustion.
func (t *Throttler) attemptWithRetries(ctx context.Context, reqId string, req transport.Request) (*transport.Response, bool, error) {
	var lastRes *transport.Response
	var rotate bool

	err := t.retrier.Do(ctx, t.maxRetries, req.Method+" "+req.URL, func(attempt int) (error, retry.ExitStrategy) {
		if err := t.limiter.Acquire(ctx); err != nil {
			return cancelled(err), retry.StopNow
		}

		cred, err := t.credential(ctx)
		if err != nil {
			// login failures are a distinct error kind, never retried
			return err, retry.StopNow
		}

		res, err := t.transport.Perform(ctx, t.withCredential(req, cred))
		if err != nil {
			lastRes = nil
			if errors.IsCancelled(err) || errors.IsKind(err, errors.KIND_PERMANENT) {
				return err, retry.StopNow
			}
			return err, retry.Continue
		}
		lastRes = res

		if cfg, ok := t.adapter.DeriveLimits(res); ok {
			if uerr := t.limiter.Update(cfg); uerr != nil {
				t.logger.Warnf("throttler: rejected derived limits: %v id=%s", uerr, reqId)
			} else {
				t.logger.Debugf("throttler: live limit update max=%d window=%v id=%s",
					cfg.MaxRequests, cfg.Window, reqId)
			}
		}

		sig := t.adapter.Interpret(res)
		if sig.WaitOverride > 0 {
			t.limiter.SetOverride(sig.WaitOverride)
			t.logger.Debugf("throttler: server wait override %v id=%s", sig.WaitOverride, reqId)
		}
		if sig.RotateCredential {
			rotate = true
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return nil, retry.StopNow
		}

		hasRetryAfter := res.Header.Get("Retry-After") != ""
		attemptErr := &errors.ThrottleError{
			Kind:           errors.KIND_PERMANENT,
			HttpStatusCode: res.StatusCode,
			Body:           res.Body,
		}

		if res.StatusCode == http.StatusUnauthorized && t.credSource != nil {
			// the cached token was just invalidated; one more attempt
			// re-logs in with the same base credential
			attemptErr.Kind = errors.KIND_TRANSIENT
			return attemptErr, retry.Continue
		}

		if errors.IsTransientStatus(res.StatusCode, hasRetryAfter) {
			attemptErr.Kind = errors.KIND_TRANSIENT
			if sig.RotateCredential && t.rotator.Len() > 1 {
				// no point retrying a credential the service just
				// declared exhausted
				return attemptErr, retry.StopNow
			}
			return attemptErr, retry.Continue
		}

		return attemptErr, retry.StopNow
	})

	return lastRes, rotate, cancelled(err)
}

func (t *Throttler) credential(ctx context.Context) (string, error) {
	base := t.rotator.Current()
	if t.credSource != nil {
		return t.credSource.Credential(ctx, base)
	}
	return base, nil
}

func (t *Throttler) withCredential(req transport.Request, cred string) transport.Request {
	out := req.Clone()
	if t.credentialParam != "" {
		if out.Params == nil {
			out.Params = url.Values{}
		}
		out.Params.Set(t.credentialParam, cred)
		return out
	}
	if out.Header == nil {
		out.Header = http.Header{}
	}
	out.Header.Set(t.credentialHeader, cred)
	return out
}

func validateMethod(method string) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return nil
	}
	return &errors.ThrottleError{
		Kind:      errors.KIND_PERMANENT,
		SourceErr: fmt.Errorf("unsupported HTTP method %q", method),
	}
}

// cancelled wraps raw context errors from admission or backoff waits.
// Errors that are already typed pass through unchanged.
func cancelled(err error) error {
	if err == nil {
		return nil
	}
	var te *errors.ThrottleError
	if stderrors.As(err, &te) {
		return err
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return &errors.ThrottleError{
			Kind:      errors.KIND_CANCELLED,
			SourceErr: err,
		}
	}
	return err
}

func wrapKind(err error, kind string) error {
	var te *errors.ThrottleError
	status := 0
	var body []byte
	if stderrors.As(err, &te) {
		status = te.HttpStatusCode
		body = te.Body
	}
	return &errors.ThrottleError{
		Kind:           kind,
		HttpStatusCode: status,
		SourceErr:      err,
		Body:           body,
	}
}
