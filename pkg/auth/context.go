package auth

import "context"

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying s. Commands attach the session
// once at startup so subcommands receive it through their context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext retrieves the session attached by WithSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
