package protocol

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "bar", r.Header.Get("X-Foo"))
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	c := NewHTTPClient(ClientConfig{MaxIdleConns: 10, IdleConnTimeout: 10 * time.Second})
	defer c.Close()

	resp := c.Do(context.Background(), &Request{
		URL:     srv.URL + "/ping",
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Foo": "bar"},
		Body:    []byte(`{"n":1}`),
		Timeout: time.Second,
	})

	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.OK())
	assert.Equal(t, int64(4), resp.BytesRead)
	assert.Equal(t, int64(7), resp.BytesWritten)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestHTTPClientDoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/elsewhere" {
			t.Error("redirect was followed")
		}
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(ClientConfig{})
	defer c.Close()

	resp := c.Do(context.Background(), &Request{URL: srv.URL, Method: http.MethodGet})
	require.NoError(t, resp.Error)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, resp.OK())
}

func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	c := NewHTTPClient(ClientConfig{})
	defer c.Close()

	resp := c.Do(context.Background(), &Request{
		URL:     srv.URL,
		Method:  http.MethodGet,
		Timeout: 20 * time.Millisecond,
	})
	assert.Error(t, resp.Error)
	assert.False(t, resp.OK())
}

func TestHTTPClientConnectionError(t *testing.T) {
	c := NewHTTPClient(ClientConfig{})
	defer c.Close()

	resp := c.Do(context.Background(), &Request{
		URL:     "http://127.0.0.1:1",
		Method:  http.MethodGet,
		Timeout: time.Second,
	})
	assert.Error(t, resp.Error)
	assert.Equal(t, 0, resp.StatusCode)
	assert.False(t, resp.OK())
}

func TestResponseOK(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want bool
	}{
		{"200", Response{StatusCode: 200}, true},
		{"302", Response{StatusCode: 302}, true},
		{"404", Response{StatusCode: 404}, false},
		{"500", Response{StatusCode: 500}, false},
		{"transport error", Response{StatusCode: 200, Error: context.DeadlineExceeded}, false},
		{"no status", Response{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.OK())
		})
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		host string
		path string
		want string
	}{
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com/", "/", "https://example.com/"},
		{"https://example.com", "api/v1", "https://example.com/api/v1"},
		{"https://example.com/", "/api/v1", "https://example.com/api/v1"},
		{"https://example.com", "", "https://example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinURL(tt.host, tt.path), "%s + %s", tt.host, tt.path)
	}
}
