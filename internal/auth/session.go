// Package auth resolves the acting user for store operations.
package auth

import (
	"context"
	"errors"
)

// ErrAuthRequired is returned when no session can be resolved.
var ErrAuthRequired = errors.New("authentication required")

// SessionSource yields the current user ID. An empty ID with a nil error
// means no active session.
type SessionSource interface {
	CurrentUser(ctx context.Context) (string, error)
}

type ctxKey struct{}

// WithUser stores the authenticated user ID on the context.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the user ID stored by WithUser, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}

// ContextSource resolves the user from the request context, falling back
// to a fixed default when one is configured. The HTTP layer populates the
// context after validating the bearer token.
type ContextSource struct {
	Default string
}

func (s ContextSource) CurrentUser(ctx context.Context) (string, error) {
	if userID, ok := UserFromContext(ctx); ok {
		return userID, nil
	}
	return s.Default, nil
}

// Static always resolves to the same user. Useful in tests and single
// operator deployments.
type Static string

func (s Static) CurrentUser(context.Context) (string, error) {
	return string(s), nil
}
