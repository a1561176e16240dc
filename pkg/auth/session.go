package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Preyash-NEU/InsightIQ/pkg/apperrors"
)

// Session identifies the caller to the backend. It is created once per
// invocation and passed explicitly to everything that talks to the API.
type Session struct {
	BaseURL string
	Token   string
	Claims  *Claims // nil when the token is opaque
}

// NewSession validates baseURL and decodes the token claims when the token is a JWT.
// An empty token yields an anonymous session.
func NewSession(baseURL, token string) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	s := &Session{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
	}
	if token != "" && strings.Count(token, ".") == 2 {
		claims, err := parseClaims(token)
		if err != nil {
			return nil, err
		}
		s.Claims = claims
	}
	return s, nil
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Expired reports whether the token's exp claim is before now.
// Tokens without an exp claim never expire client side.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Claims == nil || s.Claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(s.Claims.ExpiresAt.Time)
}

// Check returns ErrSessionExpired for an expired token.
func (s *Session) Check(now time.Time) error {
	if s.Expired(now) {
		return fmt.Errorf("token expired at %s: %w",
			s.Claims.ExpiresAt.Time.Format(time.RFC3339), apperrors.ErrSessionExpired)
	}
	return nil
}

// Authorize sets the bearer header on req.
func (s *Session) Authorize(req *http.Request) {
	if s.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
}

// Subject returns a human readable identity for the session.
func (s *Session) Subject() string {
	switch {
	case s == nil || !s.Authenticated():
		return "anonymous"
	case s.Claims == nil:
		return "token"
	case s.Claims.Email != "":
		return s.Claims.Email
	default:
		return s.Claims.Subject
	}
}
