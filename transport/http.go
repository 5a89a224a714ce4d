package transport

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/errors"
)

type httpTransport struct {
	client *http.Client
}

var _ Transport = &httpTransport{}

// NewHTTP wraps an *http.Client as a Transport. A nil client gets a
// 10 second timeout default.
func NewHTTP(client *http.Client) Transport {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpTransport{client: client}
}

func (t *httpTransport) Perform(ctx context.Context, req Request) (*Response, error) {
	endpoint, err := buildURL(req.URL, req.Params)
	if err != nil {
		return nil, &errors.ThrottleError{
			Kind:      errors.KIND_PERMANENT,
			SourceErr: err,
		}
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, &errors.ThrottleError{
			Kind:      errors.KIND_PERMANENT,
			SourceErr: err,
		}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := t.client.Do(httpReq)
	if err != nil {
		kind := errors.KIND_TRANSPORT
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			kind = errors.KIND_CANCELLED
		}
		return nil, &errors.ThrottleError{
			Kind:      kind,
			SourceErr: err,
		}
	}
	defer func() { _ = res.Body.Close() }()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &errors.ThrottleError{
			Kind:           errors.KIND_TRANSPORT,
			HttpStatusCode: res.StatusCode,
			SourceErr:      err,
		}
	}

	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       resBody,
	}, nil
}

func buildURL(raw string, params url.Values) (string, error) {
	if len(params) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
