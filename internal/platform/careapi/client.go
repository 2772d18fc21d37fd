// Package careapi is the HTTP client for the care-record backend that owns
// the canonical visit state. The gateway never persists visits itself: every
// read is a window fetch and every write is an optimistic-concurrency request
// that the backend is free to reject. Mutations run through a circuit breaker
// so a dead backend fails fast instead of piling up timeouts.
package careapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const maxErrorBody = 4096

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the structured logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBreakerMaxFailures sets how many consecutive mutation failures trip
// the circuit breaker.
func WithBreakerMaxFailures(n uint32) Option {
	return func(c *Client) { c.breakerMaxFailures = n }
}

// Client talks JSON over HTTP to the care-record API.
type Client struct {
	baseURL            string
	token              string
	httpClient         *http.Client
	breaker            *gobreaker.CircuitBreaker
	breakerMaxFailures uint32
	logger             zerolog.Logger
}

// NewClient creates a Client with sensible defaults.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		httpClient:         &http.Client{Timeout: 10 * time.Second},
		breakerMaxFailures: 5,
		logger:             zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "care-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			// Business rejections (conflicts, validation) are expected
			// outcomes and must not count against the breaker.
			if err == nil {
				return true
			}
			return Classify(err) != KindNetwork
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})
	return c
}

// Get performs a read. Reads bypass the circuit breaker: a stale board is
// better than no board, and reads carry no write-amplification risk.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a mutating POST through the circuit breaker.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.mutate(ctx, http.MethodPost, path, body, out)
}

// Patch performs a mutating PATCH through the circuit breaker.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.mutate(ctx, http.MethodPatch, path, body, out)
}

// Delete performs a mutating DELETE through the circuit breaker.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.mutate(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) mutate(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, method, path, nil, body, out)
	})
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("care api transport failure")
		return &APIError{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("care api call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *APIError, preserving the
// conflict markers the scheduling engine classifies on.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var wire struct {
		Error       string `json:"error"`
		Code        string `json:"code"`
		Message     string `json:"message"`
		LockVersion *int   `json:"lock_version"`
	}
	if err := json.Unmarshal(raw, &wire); err == nil {
		apiErr.Code = wire.Code
		apiErr.Message = wire.Message
		apiErr.LockVersion = wire.LockVersion
		if apiErr.Message == "" {
			apiErr.Message = wire.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
