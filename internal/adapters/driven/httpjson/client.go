// Package httpjson is the JSON-over-HTTP client shared by the hosted model
// adapters: status handling, error envelopes and rate-limit detection live here
// so each adapter only describes its request and response shapes.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// maxErrorBody caps the raw response text quoted in errors.
const maxErrorBody = 512

// StatusError is a non-2xx response other than 429.
type StatusError struct {
	Provider string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Status, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithBearer sends token as a bearer Authorization header. Empty tokens are ignored.
func WithBearer(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// Client talks to one provider's JSON API.
type Client struct {
	provider string
	baseURL  string
	http     *http.Client
	header   http.Header
}

// New creates a client for provider rooted at baseURL.
func New(provider, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends in as JSON to path and decodes a 2xx response into out.
// A nil out discards the body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

// Check issues a GET to path and succeeds on any 2xx response.
func (c *Client) Check(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("%s: ping failed: %w", c.provider, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", c.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", c.provider, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s: %w (status 429)", c.provider, domain.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Provider: c.provider, Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage extracts the message from the common error envelopes:
// {"error":{"message":...}}, {"error":"..."} and {"message":"..."}.
func errorMessage(body []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if len(envelope.Error) > 0 {
			var nested struct {
				Message string `json:"message"`
			}
			var flat string
			switch {
			case json.Unmarshal(envelope.Error, &flat) == nil && flat != "":
				return flat
			case json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "":
				return nested.Message
			}
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}
