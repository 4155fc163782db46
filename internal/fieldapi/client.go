// Package fieldapi submits custom field definitions to the field-creation
// endpoint.
//
// Requests are paced by a fixed delay before every submission rather than a
// shared token bucket. At the default 500ms the client stays at or below 120
// requests a minute, comfortably under the API's 700 requests per 5 minutes.
// The pacing assumes a single sender; the client must not be used to submit
// in parallel.
package fieldapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/JonMunkholm/halofields/internal/customfield"
)

// DefaultDelay is the pause before every submission.
const DefaultDelay = 500 * time.Millisecond

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// CredentialSource supplies the Authorization header value for a request.
// It is satisfied by *auth.Manager.
type CredentialSource interface {
	HeaderValue(ctx context.Context) (string, error)
}

// invalidator is implemented by credential sources that can drop a cached
// credential after the API rejects it.
type invalidator interface {
	Invalidate()
}

// SubmissionError is a non-2xx answer from the field-creation endpoint.
// Body holds the response body as sent, up to the first 64 KiB; Truncated
// reports whether anything past that was dropped.
type SubmissionError struct {
	Label      string
	StatusCode int
	Status     string
	Body       string
	Truncated  bool
}

func (e *SubmissionError) Error() string {
	body := e.Body
	if e.Truncated {
		body += " [truncated]"
	}
	return fmt.Sprintf("field creation failed for '%s': status %s, error: %s", e.Label, e.Status, body)
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Label string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to send request for '%s': %v", e.Label, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CredentialError is a failure to obtain the Authorization header for a
// submission.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return "credential: " + e.Err.Error()
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// Client submits custom fields one at a time.
type Client struct {
	endpoint   string
	creds      CredentialSource
	httpClient *http.Client
	delay      time.Duration
	wait       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client posting to {apiURL}/fieldinfo. A nil httpClient
// uses http.DefaultClient; a negative delay uses DefaultDelay and zero
// disables pacing.
func NewClient(apiURL string, creds CredentialSource, httpClient *http.Client, delay time.Duration) (*Client, error) {
	endpoint, err := url.JoinPath(apiURL, "fieldinfo")
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", apiURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if delay < 0 {
		delay = DefaultDelay
	}

	return &Client{
		endpoint:   endpoint,
		creds:      creds,
		httpClient: httpClient,
		delay:      delay,
		wait:       sleep,
	}, nil
}

// Endpoint returns the field-creation URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit waits out the pacing delay and creates one field. Any 2xx status is
// success.
func (c *Client) Submit(ctx context.Context, cf customfield.CustomField) error {
	label := cf.Label().String()

	if err := c.wait(ctx, c.delay); err != nil {
		return err
	}

	body, err := json.Marshal(NewFieldPayload(cf))
	if err != nil {
		return fmt.Errorf("encode field %q: %w", label, err)
	}

	header, err := c.creds.HeaderValue(ctx)
	if err != nil {
		return &CredentialError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %q: %w", label, err)
	}
	req.Header.Set("Authorization", header)
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("sending field creation request", "label", label, "endpoint", c.endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Label: label, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	errBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
	if err != nil {
		errBody = []byte("failed to get error response")
	}
	truncated := len(errBody) > maxErrorBody
	if truncated {
		errBody = errBody[:maxErrorBody]
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := c.creds.(invalidator); ok {
			inv.Invalidate()
		}
	}

	return &SubmissionError{
		Label:      label,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(errBody),
		Truncated:  truncated,
	}
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
