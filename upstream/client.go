package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-token-gateway/internal/config"
	"github.com/jrsteele09/go-token-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// Upstream endpoints the gateway brokers
const (
	PathRefresh        = "/auth/refresh"
	PathLogout         = "/auth/logout"
	PathCartToken      = "/cart/token/generate"
	HeaderCartToken    = "X-Cart-Token"
	contentTypeJSON    = "application/json"
	maxResponseBodyLen = 1 << 20
)

// Sender performs a single upstream call. Non-2xx statuses are not errors.
type Sender interface {
	Send(ctx context.Context, path, method string, body any, headers Headers) (*Response, error)
}

// Response is the upstream's raw answer. Coordinated callers share the same value, so it must be treated as read-only.
type Response struct {
	Status int         `json:"status"`
	Body   []byte      `json:"body,omitempty"`
	Header http.Header `json:"header,omitempty"`
}

func (r *Response) IsSuccess() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// ContentType returns the upstream content type, defaulting to JSON.
func (r *Response) ContentType() string {
	if r == nil || r.Header.Get("Content-Type") == "" {
		return contentTypeJSON
	}
	return r.Header.Get("Content-Type")
}

// Client talks to the backend API. It holds no per-user state.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

var _ Sender = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (e.g. for custom transports in tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.GetUpstreamBaseURL(),
		timeout:    cfg.GetUpstreamTimeout(),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send calls the upstream and always returns {status, body} when a response was received.
// An error is returned only when the upstream could not be reached or its body could not be read in full.
func (c *Client) Send(ctx context.Context, path, method string, body any, headers Headers) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[upstream Send] failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("[upstream Send] failed to build request: %w", err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	headers.apply(req.Header)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Str("method", method).Str("path", path).Dur("duration", time.Since(start)).Err(err).Msg("upstream call failed")
		return nil, errors.Wrapf(errors.ErrUpstreamUnreachable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyLen+1))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUpstreamUnreachable, "%s %s: reading body: %v", method, path, err)
	}
	if len(respBody) > maxResponseBodyLen {
		return nil, errors.Wrapf(errors.ErrMalformedUpstreamResponse, "%s %s: body exceeds %d bytes", method, path, maxResponseBodyLen)
	}

	log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("upstream call")

	return &Response{
		Status: resp.StatusCode,
		Body:   respBody,
		Header: resp.Header.Clone(),
	}, nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// MessageBody builds the {"message": ...} body used for failures raised by the gateway itself.
func MessageBody(message string) []byte {
	b, _ := json.Marshal(map[string]string{"message": message})
	return b
}
