// Package upload sends Alpha Progression exports to a running LoadProgress
// server instead of writing the store directly.
package upload

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

	"github.com/claude/loadprogress/internal/ingest"
	"github.com/claude/loadprogress/internal/ingest/alpha"
)

const maxAttempts = 3

// Client posts CSV exports to the server's import endpoint.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a client for the server at serverURL. apiKey is sent as
// X-API-Key.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("import failed (status %d): %s", e.Code, e.Body)
}

// ImportAlpha uploads csv to /api/v1/import/alpha. Connection errors and 5xx
// responses are retried up to 3 times with exponential backoff; 4xx responses
// are returned at once.
func (c *Client) ImportAlpha(ctx context.Context, csv []byte, opts alpha.Options) (*ingest.Result, error) {
	q := url.Values{}
	if opts.IncludeWarmups {
		q.Set("warmups", "true")
	}
	if opts.DryRun {
		q.Set("dry_run", "true")
	}
	endpoint := c.serverURL + "/api/v1/import/alpha"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, retry, err := c.post(ctx, endpoint, csv)
		if err == nil {
			return result, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, csv []byte) (*ingest.Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(csv))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("posting export: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result ingest.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, fmt.Errorf("decoding result: %w", err)
	}
	return &result, false, nil
}
