// Package client talks to ErgoPay and ErgoAuth request endpoints and to the
// explorer and node services backing box lookup and broadcast.
package client

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

	"go.uber.org/zap"
)

const (
	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 1 << 20
	maxErrorSnippet = 256
)

// HTTPStatusError is returned when an endpoint answers with a non-success status
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request to %s failed: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// IsHTTPStatusError checks if error is HTTPStatusError
func IsHTTPStatusError(err error) bool {
	var target *HTTPStatusError
	return errors.As(err, &target)
}

// Client fetches authorization requests and posts replies
type Client struct {
	client *http.Client
	log    *zap.Logger
}

// New creates a client. A nil httpClient gets a client with a 10 second timeout.
func New(httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(defaultTimeout)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		client: httpClient,
		log:    log,
	}
}

// NewHTTPClient creates an http.Client bounding connect, write and read by timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// getJSON issues one GET and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("fetched authorization request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postJSON posts payload as JSON and expects a 2xx status.
// A non-nil out receives the decoded response body.
func (c *Client) postJSON(ctx context.Context, url string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPStatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	c.log.Debug("post delivered", zap.String("url", url), zap.Int("status", resp.StatusCode))

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet]
	}
	return s
}
