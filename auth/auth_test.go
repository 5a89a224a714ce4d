package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/errors"
)

func Test_JSONLogin_default_token_path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "key-1", body["apiKey"])

		_, _ = w.Write([]byte(`{"data": {"token": "tok-1"}}`))
	}))
	defer srv.Close()

	a := NewJSONLogin(srv.URL)
	token, err := a.Login(context.Background(), "key-1")
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func Test_JSONLogin_custom_payload_and_path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])
		assert.Equal(t, "hunter2", body["password"])

		_, _ = w.Write([]byte(`{"token": "tok-2"}`))
	}))
	defer srv.Close()

	a := NewJSONLogin(srv.URL,
		WithPayload(func(credential string) any {
			return map[string]string{
				"email":    "user@example.com",
				"password": credential,
			}
		}),
		WithTokenPath("token"),
	)
	token, err := a.Login(context.Background(), "hunter2")
	assert.NoError(t, err)
	assert.Equal(t, "tok-2", token)
}

func Test_JSONLogin_rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "bad credentials"}`))
	}))
	defer srv.Close()

	a := NewJSONLogin(srv.URL)
	_, err := a.Login(context.Background(), "key-1")
	assert.True(t, errors.IsAuth(err))
}

func Test_JSONLogin_malformed_response(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": {}}`))
	}))
	defer srv.Close()

	a := NewJSONLogin(srv.URL)
	_, err := a.Login(context.Background(), "key-1")
	assert.True(t, errors.IsAuth(err))
}

func Test_TokenCache_memoizes(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok-1"}
	c := NewTokenCache(fake)

	ctx := context.Background()
	tok, err := c.Token(ctx, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = c.Token(ctx, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, fake.logins)
}

func Test_TokenCache_per_credential(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok"}
	c := NewTokenCache(fake)

	ctx := context.Background()
	_, err := c.Token(ctx, "key-1")
	assert.NoError(t, err)
	_, err = c.Token(ctx, "key-2")
	assert.NoError(t, err)
	assert.Equal(t, 2, fake.logins)
}

func Test_TokenCache_Invalidate(t *testing.T) {
	fake := &fakeAuthenticator{token: "tok"}
	c := NewTokenCache(fake)

	ctx := context.Background()
	_, err := c.Token(ctx, "key-1")
	assert.NoError(t, err)

	c.Invalidate("key-1")
	_, err = c.Token(ctx, "key-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, fake.logins)
}

func Test_TokenCache_login_failure(t *testing.T) {
	fake := &fakeAuthenticator{err: fmt.Errorf("nope")}
	c := NewTokenCache(fake)

	_, err := c.Token(context.Background(), "key-1")
	assert.Error(t, err)
	// failures are not cached
	_, err = c.Token(context.Background(), "key-1")
	assert.Error(t, err)
	assert.Equal(t, 2, fake.logins)
}

type fakeAuthenticator struct {
	token  string
	err    error
	logins int
}

var _ Authenticator = &fakeAuthenticator{}

func (f *fakeAuthenticator) Login(_ context.Context, _ string) (string, error) {
	f.logins++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}
