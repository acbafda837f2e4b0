// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeranaias/specsmith-cli/internal/config"
	"github.com/jeranaias/specsmith-cli/internal/logging"
)

const (
	// DefaultTimeout bounds an entire exchange, streamed body included.
	DefaultTimeout = 5 * time.Minute

	// DefaultUserAgent is sent when WithUserAgent is not used.
	DefaultUserAgent = "specsmith-cli"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4 << 10
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Specsmith Agent API.
//
// The Client is safe for concurrent use.
type Client struct {
	baseURL    string
	authHeader string
	authErr    error
	userAgent  string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request and stream diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a client for cfg. Credential problems are not reported
// here; they surface as an ErrTypeAuth error from the first authenticated
// call, before anything is sent.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.APIURL, "/"),
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.Discard(),
	}
	c.authHeader, c.authErr = cfg.AuthHeader()

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// =============================================================================
// PROBES
// =============================================================================

// Health checks that the API is alive.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/agent/health", nil, false)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Status:  resp.StatusCode,
			Message: "health check failed",
		}
	}
	return nil
}

// CheckAuth verifies the credentials against the API.
func (c *Client) CheckAuth(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/agent/auth", nil, true)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, "authentication check failed")
	}
	return nil
}

// TestConnection runs Health then CheckAuth and returns the first failure.
func (c *Client) TestConnection(ctx context.Context) error {
	if err := c.Health(ctx); err != nil {
		return err
	}
	return c.CheckAuth(ctx)
}

// =============================================================================
// SESSIONS
// =============================================================================

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type messageRequest struct {
	Content string `json:"content"`
}

// CreateSession opens a new chat session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/agent/session", struct{}{}, true)
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			return "", &ClientError{
				Type:    ErrTypeNotFound,
				Status:  resp.StatusCode,
				Message: "API endpoint not found, check the API URL",
			}
		}
		return "", statusError(resp, "failed to create session")
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode session response", Cause: err}
	}
	if sr.SessionID == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "session response has no session_id"}
	}

	c.logger.Debug("session created", "session", sr.SessionID)
	return sr.SessionID, nil
}

// SendMessage posts text to a session and returns the streamed reply.
// The caller must drain or Close the Stream. Cancelling ctx aborts the
// exchange and unblocks a pending Stream.Next.
func (c *Client) SendMessage(ctx context.Context, sessionID, text string) (*Stream, error) {
	path := "/agent/session/" + url.PathEscape(sessionID) + "/message"
	resp, err := c.do(ctx, http.MethodPost, path, messageRequest{Content: text}, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer drainAndClose(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return nil, &ClientError{
				Type:    ErrTypeNotFound,
				Status:  resp.StatusCode,
				Message: "session not found: " + sessionID,
			}
		}
		return nil, statusError(resp, "failed to send message")
	}

	stream := NewStream(resp.Body, c.logger)
	stream.ctx = ctx
	return stream, nil
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool) (*http.Response, error) {
	if auth && c.authErr != nil {
		return nil, &ClientError{Type: ErrTypeAuth, Message: "invalid credentials", Cause: c.authErr}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", c.authHeader)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, transportError(method+" "+path, err)
	}
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// overloadTerms mark a non-429 error body as an overload signal.
var overloadTerms = []string{"overloaded", "high demand", "busy", "rate limit"}

// statusError converts a non-2xx response into a ClientError. It reads a
// bounded prefix of the body; the caller still owns closing it.
func statusError(resp *http.Response, msg string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	body := strings.TrimSpace(string(raw))

	errType := ErrTypeAPI
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		errType = ErrTypeAuth
	case resp.StatusCode == http.StatusNotFound:
		errType = ErrTypeNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		errType = ErrTypeOverloaded
	case containsAny(strings.ToLower(body), overloadTerms):
		errType = ErrTypeOverloaded
	}

	return &ClientError{
		Type:    errType,
		Status:  resp.StatusCode,
		Message: msg,
		Body:    body,
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// drainAndClose lets the connection be reused.
func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
	r.Close()
}
