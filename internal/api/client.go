package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to the remote user API. It is safe for concurrent use; use
// WithJar to get a copy that carries one browser's upstream cookies.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *Metrics
}

type Option func(*Client)

// WithTimeout bounds every request
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithTransport replaces the HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = rt
	}
}

// WithMetrics records every call
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithJar returns a copy of the client that sends and collects cookies through jar
func (c *Client) WithJar(jar http.CookieJar) *Client {
	hc := *c.http
	hc.Jar = jar
	cp := *c
	cp.http = &hc
	return &cp
}

type request struct {
	endpoint    string
	method      string
	path        string
	body        io.Reader
	contentType string
}

// send performs the request and returns the status and raw body.
// A non-nil error means no usable response arrived.
func (c *Client) send(ctx context.Context, r request) (int, []byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build %s request: %w", r.endpoint, err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(r.endpoint, 0, time.Since(start))
		return 0, nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observe(r.endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read %s response: %w", r.endpoint, err)
	}

	slog.Debug("api call",
		"endpoint", r.endpoint,
		"method", r.method,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp.StatusCode, body, nil
}

// call performs the request and decodes a 2xx body into out. Non-2xx
// responses become ErrUnauthorized or *ResponseError.
func (c *Client) call(ctx context.Context, r request, out any) error {
	status, body, err := c.send(ctx, r)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		var payload struct {
			Message string `json:"message"`
		}
		// an unreadable error body just means there is no message to show
		_ = decodeBody(body, &payload)
		return statusError(status, payload.Message)
	}

	if out == nil {
		var discard any
		out = &discard
	}
	if err := decodeBody(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.endpoint, err)
	}
	return nil
}

func jsonRequest(endpoint, method, path string, payload any) (request, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}
	return request{
		endpoint:    endpoint,
		method:      method,
		path:        path,
		body:        bytes.NewReader(buf),
		contentType: "application/json",
	}, nil
}

// decodeBody decodes a JSON body; an empty body decodes as {}
func decodeBody(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
