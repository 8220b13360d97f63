package service

import "context"

type sessionContextKey struct{}

// ContextWithSessionID binds the browser session ID to a request context
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}

// SessionIDFromContext returns the session ID bound to ctx, or "" when none is
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey{}).(string)
	return id
}
