// Package upstream fetches JSON documents over HTTP for SWR keys.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/usekit/internal/errors"
	"github.com/vango-dev/usekit/pkg/use/swr"
)

// maxBody bounds response bodies read by the client.
const maxBody = 4 << 20

// Client issues GET requests against an upstream service.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	header http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(cl *Client) {
		cl.header.Add(key, value)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default().With("component", "upstream"),
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of url. Non-2xx responses fail with U021.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New("U021").WithDetailf("GET %s", url).Wrap(err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.New("U021").WithDetailf("GET %s", url).Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.New("U021").WithDetailf("GET %s", url).Wrap(err)
	}
	c.logger.Debug("upstream response",
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("U021").
			WithDetailf("GET %s returned %d", url, resp.StatusCode).
			Wrap(fmt.Errorf("%s", http.StatusText(resp.StatusCode)))
	}
	return body, nil
}

// JSON returns a fetcher that decodes url into D.
func JSON[D any](c *Client, url string) swr.Fetcher[D] {
	return func(ctx context.Context) (D, error) {
		var out D
		body, err := c.Get(ctx, url)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return out, errors.New("U021").WithDetailf("decode %s", url).Wrap(err)
		}
		return out, nil
	}
}
