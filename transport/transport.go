package transport

import (
	"context"
	"net/http"
	"net/url"
)

// Request is a provider-agnostic description of one outbound call.
// Header and Params are optional; Body is sent as-is.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Params url.Values
	Body   []byte
}

// Response carries the raw upstream reply. Non-2xx statuses are not
// errors at this layer; classification belongs to the dispatcher.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a single network exchange. The throttler core is
// transport-agnostic; any conforming implementation can be substituted
// via throttler.WithTransport. Implementations must honor ctx for
// in-flight cancellation.
type Transport interface {
	Perform(ctx context.Context, req Request) (*Response, error)
}

// Clone returns a deep copy of the request so per-attempt mutation
// (credential attachment) never leaks into the caller's value.
func (r Request) Clone() Request {
	out := r
	if r.Header != nil {
		out.Header = r.Header.Clone()
	}
	if r.Params != nil {
		out.Params = url.Values{}
		for k, vs := range r.Params {
			out.Params[k] = append([]string(nil), vs...)
		}
	}
	if r.Body != nil {
		out.Body = append([]byte(nil), r.Body...)
	}
	return out
}
