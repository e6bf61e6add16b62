// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apiclient talks to the PrepDeck REST backend. Every response body
// may carry an "error" field; a populated one turns the call into an
// *APIError regardless of the HTTP status.
package apiclient

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
)

// DefaultTimeout bounds a single backend call when none is configured.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Client is a thin wrapper around the backend REST API. It is safe for
// concurrent use; WithToken returns a copy bound to one user's token.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a client for the backend rooted at baseURL
// (for example "http://localhost:5000/api").
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of the client that authenticates as the holder
// of token. An empty token yields an anonymous client.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// envelope captures the error sibling present on every backend response.
type envelope struct {
	Error json.RawMessage `json:"error"`
}

// dataEnvelope is used for entity responses that may be wrapped in "data".
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// do performs one request and decodes the response body into out.
// out may be nil when the caller only cares about success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api %s marshal: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("api %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api %s read body: %w", op, err)
	}

	var env envelope
	decoded := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &env) == nil
	if decoded {
		if msg, ok := errorMessage(env.Error); ok {
			return &APIError{Op: op, Status: resp.StatusCode, Message: msg}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if !decoded {
		return fmt.Errorf("api %s: response is not a JSON object", op)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api %s unmarshal: %w", op, err)
	}
	return nil
}

// doEntity decodes an entity response that is either the bare entity or
// wrapped as {"data": entity}.
func (c *Client) doEntity(ctx context.Context, method, path string, body, out any) error {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, nil, body, &raw); err != nil {
		return err
	}

	var wrapped dataEnvelope
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if trimmed := bytes.TrimSpace(wrapped.Data); len(trimmed) > 0 && trimmed[0] == '{' {
			raw = wrapped.Data
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api %s %s unmarshal: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts a human-readable message from the "error" field.
// It accepts a string, an object with "message", or any other non-empty
// JSON value. null, false, and "" mean no error.
func errorMessage(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &obj); err == nil && obj.Message != "" {
		return obj.Message, true
	}

	return string(trimmed), true
}

// segment escapes a value used as a single path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
