package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danlabrador/myamazonguy-api-request-throttlers/errors"
)

func Test_HTTP_Perform_get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "value", r.URL.Query().Get("param"))
		assert.Equal(t, "header-value", r.Header.Get("X-Custom"))

		w.Header().Set("X-RateLimit-Remaining", "9")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr := NewHTTP(nil)
	res, err := tr.Perform(context.Background(), Request{
		Method: http.MethodGet,
		URL:    srv.URL,
		Header: http.Header{"X-Custom": {"header-value"}},
		Params: url.Values{"param": {"value"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "9", res.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, `{"ok":true}`, string(res.Body))
}

func Test_HTTP_Perform_post_body(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"name":"test"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr := NewHTTP(nil)
	res, err := tr.Perform(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   []byte(`{"name":"test"}`),
	})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
}

func Test_HTTP_Perform_non_2xx_is_not_an_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	tr := NewHTTP(nil)
	res, err := tr.Perform(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "slow down", string(res.Body))
}

func Test_HTTP_Perform_network_error(t *testing.T) {
	tr := NewHTTP(&http.Client{Timeout: 100 * time.Millisecond})
	_, err := tr.Perform(context.Background(), Request{
		Method: http.MethodGet,
		URL:    "http://127.0.0.1:1", // nothing listens here
	})

	assert.True(t, errors.IsKind(err, errors.KIND_TRANSPORT))
}

func Test_HTTP_Perform_cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	tr := NewHTTP(nil)
	_, err := tr.Perform(ctx, Request{Method: http.MethodGet, URL: srv.URL})

	assert.True(t, errors.IsCancelled(err))
}

func Test_HTTP_Perform_bad_url(t *testing.T) {
	tr := NewHTTP(nil)
	_, err := tr.Perform(context.Background(), Request{
		Method: http.MethodGet,
		URL:    "://not-a-url",
		Params: url.Values{"a": {"b"}},
	})

	assert.True(t, errors.IsKind(err, errors.KIND_PERMANENT))
}

func Test_Request_Clone_is_deep(t *testing.T) {
	orig := Request{
		Method: http.MethodPost,
		URL:    "https://api.example.com",
		Header: http.Header{"X-A": {"1"}},
		Params: url.Values{"p": {"1"}},
		Body:   []byte("body"),
	}

	c := orig.Clone()
	c.Header.Set("X-A", "2")
	c.Params.Set("p", "2")
	c.Body[0] = 'x'

	assert.Equal(t, "1", orig.Header.Get("X-A"))
	assert.Equal(t, "1", orig.Params.Get("p"))
	assert.Equal(t, "body", string(orig.Body))
}
