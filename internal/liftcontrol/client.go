package liftcontrol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the production LiftControl endpoint.
const DefaultBaseURL = "https://liftcontrol.fr"

// The platform rejects requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"

const maxErrorBodyBytes = 512

// SourceUnavailableError reports a transport failure or non-success HTTP
// status from the platform. The client never retries; retry policy, if
// any, belongs to the caller.
type SourceUnavailableError struct {
	URL        string
	StatusCode int // zero on transport failure
	Body       string
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source unavailable: GET %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("source unavailable: GET %s: %v", e.URL, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// MalformedResponseError reports a 2xx body that does not decode into the
// expected session payload shape.
type MalformedResponseError struct {
	URL string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.URL, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Client fetches raw per-session results from the LiftControl platform.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a LiftControl API client. Pass DefaultBaseURL outside
// of tests.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SessionURL returns the live general-table endpoint for a session slug.
func (c *Client) SessionURL(sessionSlug string) string {
	return fmt.Sprintf("%s/evenements-liftcontrol/get-live-data/tableau-general/%s", c.baseURL, sessionSlug)
}

// FetchSession issues one GET for the session's general table and decodes
// the body. Returns *SourceUnavailableError on transport/status failure
// and *MalformedResponseError when the body cannot be decoded.
func (c *Client) FetchSession(ctx context.Context, sessionSlug string) (*Response, error) {
	url := c.SessionURL(sessionSlug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("session fetch failed", "slug", sessionSlug, "error", err,
			"duration_ms", duration.Milliseconds())
		return nil, &SourceUnavailableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Info("session fetched", "slug", sessionSlug, "status", resp.StatusCode,
		"duration_ms", duration.Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &SourceUnavailableError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &MalformedResponseError{URL: url, Err: err}
	}

	return &payload, nil
}
