// Package transport is the HTTP layer shared by the manifest fetch and
// the verified file downloads. Redirects are never followed: a redirect
// could silently retarget a trusted download, so any 3xx response is a
// hard error.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const userAgent = "mappacksync"

// StatusError reports a non-success HTTP status, including redirects.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 300 && e.Code < 400 {
		return fmt.Sprintf("GET %s: redirect (HTTP %d) refused", e.URL, e.Code)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// Config controls connection behavior for a Client.
type Config struct {
	// ConnectTimeout bounds DNS + TCP + TLS setup.
	ConnectTimeout time.Duration
	// TotalTimeout bounds the whole request including the body read.
	// Zero means no overall limit (large file downloads).
	TotalTimeout time.Duration
}

// Client performs GET requests with redirects disabled.
type Client struct {
	http         *http.Client
	totalTimeout time.Duration
}

// NewClient builds a client with the given timeouts.
func NewClient(cfg Config) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		Proxy:               http.ProxyFromEnvironment,
	}
	return &Client{
		http: &http.Client{
			Transport: transport,
			// Surface the redirect response itself instead of following
			// it; Get maps it to a StatusError.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		totalTimeout: cfg.TotalTimeout,
	}
}

// Get issues a GET and returns the response for a 2xx status. Any other
// status, including 3xx, closes the body and returns a StatusError.
// When the client has a total timeout it is applied to ctx; the returned
// cancel func must be called once the body has been consumed.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, context.CancelFunc, error) {
	cancelCtx := func() {}
	if c.totalTimeout > 0 {
		ctx, cancelCtx = context.WithTimeout(ctx, c.totalTimeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancelCtx()
		return nil, nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		cancelCtx()
		return nil, nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancelCtx()
		return nil, nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	return resp, cancelCtx, nil
}

// JoinURL concatenates a base and a path, normalizing the single slash
// between them.
func JoinURL(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if len(path) == 0 || path[0] != '/' {
		return base + "/" + path
	}
	return base + path
}
