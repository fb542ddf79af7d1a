package storyjobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// maxBodyBytes caps how much of any response body we read. Status payloads
// are small; a megabyte is already generous for a completed story.
const maxBodyBytes = 1 << 20

// Client talks to the book service's generation endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, e.g. for a custom
// transport or test doubles.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Client for the book service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start submits a generation request and returns the server-assigned job
// ID. Any failure to obtain one is reported as a *StartError.
func (c *Client) Start(ctx context.Context, req GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &StartError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/books/generate", bytes.NewReader(body))
	if err != nil {
		return "", &StartError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("story.start.http_error", "error", err)
		return "", &StartError{Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("response body close error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &StartError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("story.start.rejected", "status", resp.StatusCode, "body", string(raw))
		return "", &StartError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &StartError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.JobID == "" {
		return "", &StartError{StatusCode: resp.StatusCode, Err: fmt.Errorf("response missing job_id")}
	}

	c.logger.Info("story.start.ok", "job_id", out.JobID)
	return out.JobID, nil
}

// GetStatus issues a single status query for jobID. Every failure mode is
// a *TransportError; interpreting the returned status is the caller's job.
func (c *Client) GetStatus(ctx context.Context, jobID string) (StatusResponse, error) {
	url := fmt.Sprintf("%s/api/books/%s/status", c.baseURL, jobID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusResponse{}, &TransportError{JobID: jobID, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return StatusResponse{}, &TransportError{JobID: jobID, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("response body close error", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return StatusResponse{}, &TransportError{JobID: jobID, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusResponse{}, &TransportError{JobID: jobID, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(raw)))}
	}

	var out StatusResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return StatusResponse{}, &TransportError{JobID: jobID, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}
