// Package gateway issues CRUD calls against the homebase REST API and
// normalises its response envelope.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"homebase/internal/apperr"
)

// Kind classifies how a remote call failed.
type Kind string

const (
	// KindTransport means no HTTP response was received at all.
	KindTransport Kind = "transport"
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP Kind = "http"
	// KindProtocol means a 2xx response could not be read or decoded.
	KindProtocol Kind = "protocol"
)

// RemoteError is every failure returned by the Client.
type RemoteError struct {
	StatusCode int
	Message    string
	Kind       Kind
	// Details holds the envelope's "errors" list, if any.
	Details []apperr.FieldError
	Err     error
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote %s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("remote %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// envelope is the response shape of the homebase API.
type envelope struct {
	Success *bool               `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors"`
}

// Client is a JSON HTTP client bound to a base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL (for example "http://localhost:3001/api").
// A zero timeout leaves requests unbounded.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient is New with a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Get fetches path and decodes the payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body to path and decodes the payload into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put sends body to path and decodes the payload into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// WithQuery appends encoded query parameters to path.
func WithQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{
			Kind:    KindTransport,
			Message: fmt.Sprintf("cannot connect to API at %s", c.baseURL),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError(resp.StatusCode, raw)
	}
	// The server has already answered with success, so a truncated body is a
	// protocol failure rather than an unreachable remote.
	if err != nil {
		return &RemoteError{
			StatusCode: resp.StatusCode,
			Kind:       KindProtocol,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	payload := unwrap(raw)
	if payload == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &RemoteError{
			StatusCode: resp.StatusCode,
			Kind:       KindProtocol,
			Message:    "failed to decode response body",
			Err:        err,
		}
	}
	return nil
}

// unwrap returns the envelope's data when the body has the {success, data, message}
// shape, and the raw body otherwise. A nil result means there is nothing to decode.
func unwrap(raw []byte) []byte {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Success == nil {
		return raw
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return env.Data
}

func httpError(status int, raw []byte) error {
	e := &RemoteError{
		StatusCode: status,
		Kind:       KindHTTP,
		Message:    fmt.Sprintf("HTTP error! status: %d", status),
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			e.Message = env.Message
		}
		e.Details = env.Errors
	}
	return e
}

// AsRemoteError extracts a *RemoteError from err.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
