// Package client provides a client for the InsightIQ data-source API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
	"github.com/Preyash-NEU/InsightIQ/pkg/auth"
	"github.com/Preyash-NEU/InsightIQ/pkg/jsonutil"
	"github.com/Preyash-NEU/InsightIQ/pkg/logging"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method    string
	Path      string
	Status    int
	Detail    string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.Status)
}

// Is makes a 404 match apperrors.ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == apperrors.ErrNotFound && e.Status == http.StatusNotFound
}

// DetailOf returns the backend's message for err when it is an APIError.
func DetailOf(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

// Client provides access to the InsightIQ API for one session.
type Client struct {
	httpClient *http.Client
	session    *auth.Session
	logger     *zap.Logger
}

// New creates a client bound to session. timeout is the transport-level
// limit for a whole request; zero means none.
func New(session *auth.Session, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		session: session,
		logger:  logger.Named("client"),
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *auth.Session {
	return c.session
}

// request describes one API call.
type request struct {
	method      string
	segments    []string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method string, payload any, segments ...string) (request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("failed to encode request: %w", err)
	}
	return request{
		method:      method,
		segments:    segments,
		body:        bytes.NewReader(data),
		contentType: "application/json",
	}, nil
}

// do executes r and decodes a successful response body into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	endpoint, err := buildURL(c.session.BaseURL, r.query, r.segments...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	c.session.Authorize(req)

	c.logger.Debug("Calling InsightIQ API",
		zap.String("method", r.method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", r.method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:    r.method,
			Path:      req.URL.Path,
			Status:    resp.StatusCode,
			Detail:    errorDetail(body),
			RequestID: requestID,
		}
		c.logger.Warn("InsightIQ API returned error",
			zap.String("method", r.method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
			zap.String("body", logging.BodyPreview(body)))
		return apiErr
	}

	c.logger.Debug("InsightIQ API call completed",
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// errorDetail extracts the message from an error body. Bodies that are not
// JSON are returned trimmed and redacted.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return logging.BodyPreview(body)
	}
	if msg := jsonutil.DetailMessage(envelope.Detail); msg != "" {
		return msg
	}
	return envelope.Message
}

// buildURL constructs a URL by parsing the base and joining path segments.
// Segments are escaped individually so ids and table names cannot alter the path.
// Empty, "." and ".." segments are rejected since joining would drop or climb them.
func buildURL(baseURL string, query url.Values, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	escaped := u.EscapedPath()
	for _, seg := range pathSegments {
		switch seg {
		case "", ".", "..":
			return "", apperrors.NewValidationError("path", "invalid path segment %q", seg)
		}
		escaped = path.Join(escaped, url.PathEscape(seg))
	}
	raw, err := url.PathUnescape(escaped)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	u.Path = raw
	u.RawPath = escaped
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
