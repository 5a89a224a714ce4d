package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/errors"
	"github.com/danlabrador/myamazonguy-api-request-throttlers/transport"
)

// PayloadFn builds the JSON login body for a credential.
type PayloadFn func(credential string) any

type jsonLoginConfig struct {
	payload   PayloadFn
	tokenPath []string
	transport transport.Transport
}

func defaultJSONLoginConfig() jsonLoginConfig {
	return jsonLoginConfig{
		payload: func(credential string) any {
			return map[string]string{"apiKey": credential}
		},
		// services commonly nest the token, e.g. {"data": {"token": "..."}}
		tokenPath: []string{"data", "token"},
		transport: transport.NewHTTP(nil),
	}
}

type JSONLoginOption func(c *jsonLoginConfig)

// WithPayload replaces the login body builder.
func WithPayload(fn PayloadFn) JSONLoginOption {
	return func(c *jsonLoginConfig) {
		c.payload = fn
	}
}

// WithTokenPath sets the JSON path of the token in the login response.
func WithTokenPath(path ...string) JSONLoginOption {
	return func(c *jsonLoginConfig) {
		c.tokenPath = path
	}
}

// WithTransport replaces the transport used for the login call.
func WithTransport(t transport.Transport) JSONLoginOption {
	return func(c *jsonLoginConfig) {
		c.transport = t
	}
}

type jsonLogin struct {
	url    string
	config jsonLoginConfig
}

var _ Authenticator = &jsonLogin{}

// NewJSONLogin returns an Authenticator that POSTs a JSON payload to
// the given URL and extracts the token from the JSON response.
func NewJSONLogin(url string, opts ...JSONLoginOption) Authenticator {
	config := defaultJSONLoginConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &jsonLogin{
		url:    url,
		config: config,
	}
}

func (j *jsonLogin) Login(ctx context.Context, credential string) (string, error) {
	body, err := json.Marshal(j.config.payload(credential))
	if err != nil {
		return "", authErr(0, fmt.Errorf("encode login payload: %w", err))
	}

	res, err := j.config.transport.Perform(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    j.url,
		Body:   body,
	})
	if err != nil {
		return "", authErr(0, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &errors.ThrottleError{
			Kind:           errors.KIND_AUTH,
			HttpStatusCode: res.StatusCode,
			Body:           res.Body,
		}
	}

	token, err := extractToken(res.Body, j.config.tokenPath)
	if err != nil {
		return "", authErr(res.StatusCode, err)
	}
	return token, nil
}

func authErr(status int, err error) *errors.ThrottleError {
	return &errors.ThrottleError{
		Kind:           errors.KIND_AUTH,
		HttpStatusCode: status,
		SourceErr:      err,
	}
}

func extractToken(body []byte, path []string) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}

	for _, key := range path {
		obj, ok := doc.(map[string]any)
		if !ok {
			return "", fmt.Errorf("login response has no object at %q", key)
		}
		doc, ok = obj[key]
		if !ok {
			return "", fmt.Errorf("login response is missing %q", key)
		}
	}

	token, ok := doc.(string)
	if !ok || token == "" {
		return "", fmt.Errorf("login response token is not a string")
	}
	return token, nil
}
