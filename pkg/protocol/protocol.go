package protocol

import (
	"context"
	"strings"
	"time"
)

// Request represents a single request issued by a virtual user.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Response represents the result of a request.
type Response struct {
	StatusCode   int
	Duration     time.Duration
	BytesRead    int64
	BytesWritten int64
	Error        error
}

// OK reports whether the request completed without transport error and with
// a non-error status.
func (r *Response) OK() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 400
}

// Client is the interface for protocol implementations.
type Client interface {
	// Do executes a request and returns the response.
	Do(ctx context.Context, req *Request) *Response

	// Close releases any resources held by the client.
	Close() error
}

// ClientConfig contains common configuration for all clients.
type ClientConfig struct {
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	TLSInsecure     bool
}

// JoinURL joins a base host URL and a request path.
func JoinURL(host, path string) string {
	if path == "" {
		return host
	}
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/")
}
